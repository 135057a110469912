// Package normalize maps loosely typed agent replies onto canonical BotMessages.
//
// Normalization is a pure function of the raw payload: the same bytes always
// produce structurally identical messages.
package normalize

import (
	"bytes"
	"encoding/json"

	"github.com/tidwall/gjson"

	"agentforce/pkg/message"
)

// Placeholder is emitted when a reply carries no recognizable content.
const Placeholder = "Agent response received"

var (
	messageArrayKeys = []string{"messages", "outputs"}
	contentKeys      = []string{"content", "richContent"}
)

// Normalize converts one raw turn response into BotMessages. The result is
// never empty. When the payload holds an explicit message array the first
// element corresponds to the first entry and the rest follow in array order.
func Normalize(raw []byte) []message.BotMessage {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return []message.BotMessage{placeholder(nil)}
	}

	if !gjson.ValidBytes(trimmed) {
		source, _ := json.Marshal(string(trimmed))
		return []message.BotMessage{{
			Sender:      message.SenderBot,
			MessageText: string(trimmed),
			SourceData:  source,
		}}
	}

	payload := gjson.ParseBytes(trimmed)

	if entries := messageEntries(payload); len(entries) > 0 {
		messages := make([]message.BotMessage, 0, len(entries))
		for i, entry := range entries {
			msg := parseEntry(entry)
			if i == 0 {
				// The first message stands for the whole reply, so it keeps the
				// full envelope and inherits envelope-level NLP.
				msg.SourceData = cloneRaw(trimmed)
				if msg.NLP == nil {
					msg.NLP = extractNLP(payload)
				}
			}
			messages = append(messages, msg)
		}
		return messages
	}

	msg := parseEntry(payload)
	msg.SourceData = cloneRaw(trimmed)
	return []message.BotMessage{msg}
}

func messageEntries(payload gjson.Result) []gjson.Result {
	if !payload.IsObject() {
		return nil
	}
	for _, key := range messageArrayKeys {
		if list := payload.Get(key); list.IsArray() {
			if entries := list.Array(); len(entries) > 0 {
				return entries
			}
		}
	}
	return nil
}

func parseEntry(entry gjson.Result) message.BotMessage {
	msg := message.BotMessage{
		Sender:     message.SenderBot,
		SourceData: cloneRaw([]byte(entry.Raw)),
	}

	detect(entry).apply(&msg)

	sources := []gjson.Result{entry}
	for _, key := range contentKeys {
		if nested := entry.Get(key); nested.IsObject() {
			sources = append(sources, nested)
		}
	}
	msg.NLP = extractNLP(sources...)

	if isEmpty(msg) {
		msg.MessageText = Placeholder
	}

	return msg
}

// detect applies the envelope-level rules in priority order.
func detect(entry gjson.Result) Output {
	if entry.Type == gjson.String {
		return PlainText{Text: entry.String()}
	}

	if isStructured(entry) {
		return classify(entry)
	}

	if text := firstString(entry, "text", "messageText", "message"); text != "" {
		return PlainText{Text: text}
	}

	for _, key := range contentKeys {
		nested := entry.Get(key)
		if nested.IsObject() || nested.Type == gjson.String {
			return classify(nested)
		}
	}

	return PlainText{Text: Placeholder}
}

func placeholder(source json.RawMessage) message.BotMessage {
	return message.BotMessage{
		Sender:      message.SenderBot,
		MessageText: Placeholder,
		SourceData:  source,
	}
}

func isEmpty(msg message.BotMessage) bool {
	return msg.MessageText == "" && len(msg.Cards) == 0 && len(msg.Media) == 0 && len(msg.Buttons) == 0
}

func cloneRaw(raw []byte) json.RawMessage {
	if len(raw) == 0 {
		return nil
	}
	return append(json.RawMessage(nil), raw...)
}
