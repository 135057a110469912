package normalize

import (
	"strings"

	"github.com/tidwall/gjson"

	"agentforce/pkg/message"
)

const (
	richContentFallbackText  = "Rich content response"
	quickRepliesFallbackText = "Choose an option"
)

// contentRule pairs a shape predicate with its parser. Rules are evaluated in
// slice order and the first match wins.
type contentRule struct {
	kind  Kind
	match func(gjson.Result) bool
	parse func(gjson.Result) Output
}

var contentRules = []contentRule{
	{kind: KindCards, match: isCardShape, parse: parseCards},
	{kind: KindQuickReplies, match: isQuickRepliesShape, parse: parseQuickReplies},
	{kind: KindMedia, match: isMediaShape, parse: parseMedia},
	{kind: KindList, match: isListShape, parse: parseList},
}

// Classify decodes one content object and returns the Output variant it maps to.
func Classify(raw []byte) Output {
	return classify(gjson.ParseBytes(raw))
}

func classify(content gjson.Result) Output {
	if content.Type == gjson.String {
		return PlainText{Text: content.String()}
	}

	for _, rule := range contentRules {
		if rule.match(content) {
			return rule.parse(content)
		}
	}

	return PlainText{Text: firstString(content, "text", "content", "messageText", "message")}
}

// isStructured reports whether a payload describes its own rich shape and
// should go through content dispatch directly.
func isStructured(payload gjson.Result) bool {
	if !payload.IsObject() {
		return false
	}
	for _, rule := range contentRules {
		if rule.match(payload) {
			return true
		}
	}
	return false
}

func isCardShape(c gjson.Result) bool {
	return typeIs(c, "card") || isArray(c, "cards") || isArray(c, "elements")
}

func isQuickRepliesShape(c gjson.Result) bool {
	return typeIs(c, "quickReplies") || isArray(c, "buttons") || isArray(c, "quickReplies")
}

func isMediaShape(c gjson.Result) bool {
	return typeIs(c, "media") || isArray(c, "attachments")
}

func isListShape(c gjson.Result) bool {
	return typeIs(c, "list") || isArray(c, "items")
}

func parseCards(c gjson.Result) Output {
	text := firstString(c, "text", "messageText")

	if isArray(c, "cards") {
		return Cards{Text: text, Cards: parseElements(c.Get("cards"))}
	}
	if isArray(c, "elements") {
		return RichContent{Text: text, Elements: parseElements(c.Get("elements"))}
	}

	// A bare card object describes itself.
	return Cards{Cards: []Element{parseElement(c)}}
}

func parseQuickReplies(c gjson.Result) Output {
	options := c.Get("buttons")
	if !options.IsArray() {
		options = c.Get("quickReplies")
	}

	return QuickReplies{
		Text:    firstString(c, "text", "messageText"),
		Options: parseButtons(options),
	}
}

func parseMedia(c gjson.Result) Output {
	var items []message.Media
	if isArray(c, "attachments") {
		for _, attachment := range c.Get("attachments").Array() {
			items = append(items, parseAttachment(attachment))
		}
	} else {
		items = append(items, parseAttachment(c))
	}

	text := ""
	if isArray(c, "attachments") {
		text = firstString(c, "text", "messageText")
	}

	return MediaAttachments{Text: text, Items: items}
}

func parseList(c gjson.Result) Output {
	return List{
		Text:  firstString(c, "text", "messageText"),
		Items: parseElements(c.Get("items")),
	}
}

func parseElements(list gjson.Result) []Element {
	entries := list.Array()
	if len(entries) == 0 {
		return nil
	}

	elements := make([]Element, 0, len(entries))
	for _, entry := range entries {
		elements = append(elements, parseElement(entry))
	}
	return elements
}

func parseElement(e gjson.Result) Element {
	if e.Type == gjson.String {
		return Element{Title: e.String()}
	}

	element := Element{
		Title:    firstString(e, "title", "text", "name"),
		Subtitle: firstString(e, "subtitle", "description"),
		Content:  firstString(e, "content"),
		ImageURL: imageURL(e),
		Buttons:  parseButtons(e.Get("buttons")),
	}
	if element.Content == "" && e.Get("title").Exists() {
		element.Content = firstString(e, "text")
	}

	return element
}

func imageURL(e gjson.Result) string {
	if url := firstString(e, "imageUrl", "imageURL"); url != "" {
		return url
	}

	image := e.Get("image")
	switch {
	case image.Type == gjson.String:
		return image.String()
	case image.IsObject():
		return firstString(image, "url", "mediaUri", "src")
	default:
		return ""
	}
}

func parseButtons(list gjson.Result) []message.Button {
	entries := list.Array()
	if len(entries) == 0 {
		return nil
	}

	buttons := make([]message.Button, 0, len(entries))
	for _, entry := range entries {
		if entry.Type == gjson.String {
			buttons = append(buttons, message.Button{Text: entry.String(), Payload: entry.String()})
			continue
		}

		text := firstString(entry, "text", "title", "label")
		payload := firstString(entry, "payload", "value")
		if payload == "" {
			payload = text
		}
		buttons = append(buttons, message.Button{Text: text, Payload: payload})
	}
	return buttons
}

func parseAttachment(a gjson.Result) message.Media {
	mimeType := firstString(a, "contentType", "mimeType", "type")
	if strings.EqualFold(mimeType, string(KindMedia)) {
		mimeType = ""
	}

	return message.Media{
		MimeType: mimeType,
		MediaURI: firstString(a, "contentUrl", "url", "mediaUri"),
		AltText:  firstString(a, "name", "title", "altText"),
	}
}

func typeIs(c gjson.Result, want string) bool {
	return strings.EqualFold(strings.TrimSpace(c.Get("type").String()), want)
}

func isArray(c gjson.Result, key string) bool {
	return c.Get(key).IsArray()
}

// firstString returns the first non-empty scalar value among keys.
func firstString(r gjson.Result, keys ...string) string {
	if !r.IsObject() {
		return ""
	}
	for _, key := range keys {
		value := r.Get(key)
		if value.Type != gjson.String && value.Type != gjson.Number {
			continue
		}
		if text := strings.TrimSpace(value.String()); text != "" {
			return text
		}
	}
	return ""
}
