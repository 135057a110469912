package normalize

import "agentforce/pkg/message"

// Kind tags one variant of the Output union.
type Kind string

const (
	KindPlainText    Kind = "plainText"
	KindRichContent  Kind = "richContent"
	KindCards        Kind = "card"
	KindQuickReplies Kind = "quickReplies"
	KindMedia        Kind = "media"
	KindList         Kind = "list"
)

// Output is one recognized reply shape. Every variant maps deterministically
// onto a BotMessage.
type Output interface {
	Kind() Kind
	apply(msg *message.BotMessage)
}

// Element is a card-shaped entry shared by rich content, cards and lists.
type Element struct {
	Title    string
	Subtitle string
	Content  string
	ImageURL string
	Buttons  []message.Button
}

type PlainText struct {
	Text string
}

type RichContent struct {
	Text     string
	Elements []Element
}

type Cards struct {
	Text  string
	Cards []Element
}

type QuickReplies struct {
	Text    string
	Options []message.Button
}

type MediaAttachments struct {
	Text  string
	Items []message.Media
}

type List struct {
	Text  string
	Items []Element
}

func (PlainText) Kind() Kind        { return KindPlainText }
func (RichContent) Kind() Kind      { return KindRichContent }
func (Cards) Kind() Kind            { return KindCards }
func (QuickReplies) Kind() Kind     { return KindQuickReplies }
func (MediaAttachments) Kind() Kind { return KindMedia }
func (List) Kind() Kind             { return KindList }

func (o PlainText) apply(msg *message.BotMessage) {
	msg.MessageText = o.Text
}

func (o RichContent) apply(msg *message.BotMessage) {
	msg.MessageText = o.Text
	if msg.MessageText == "" {
		msg.MessageText = richContentFallbackText
	}
	msg.Cards = toCards(o.Elements)
}

func (o Cards) apply(msg *message.BotMessage) {
	msg.MessageText = o.Text
	msg.Cards = toCards(o.Cards)
}

func (o QuickReplies) apply(msg *message.BotMessage) {
	msg.MessageText = o.Text
	if msg.MessageText == "" {
		msg.MessageText = quickRepliesFallbackText
	}
	msg.Buttons = cloneButtons(o.Options)
}

func (o MediaAttachments) apply(msg *message.BotMessage) {
	msg.MessageText = o.Text
	if len(o.Items) > 0 {
		msg.Media = append([]message.Media(nil), o.Items...)
	}
}

func (o List) apply(msg *message.BotMessage) {
	msg.MessageText = o.Text
	msg.Cards = toCards(o.Items)
}

func toCards(elements []Element) []message.Card {
	if len(elements) == 0 {
		return nil
	}

	cards := make([]message.Card, 0, len(elements))
	for _, element := range elements {
		card := message.Card{
			Text:    element.Title,
			Subtext: element.Subtitle,
			Content: element.Content,
			Buttons: cloneButtons(element.Buttons),
		}
		if element.ImageURL != "" {
			card.Image = &message.Media{MediaURI: element.ImageURL}
		}
		cards = append(cards, card)
	}

	return cards
}

func cloneButtons(buttons []message.Button) []message.Button {
	if len(buttons) == 0 {
		return nil
	}
	return append([]message.Button(nil), buttons...)
}
