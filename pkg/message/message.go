package message

import "encoding/json"

const SenderBot = "bot"

// UserMessage is one outbound utterance sent by the test harness.
type UserMessage struct {
	MessageText string   `json:"messageText"`
	Media       []Media  `json:"media,omitempty"`
	Buttons     []Button `json:"buttons,omitempty"`
	Forms       []Form   `json:"forms,omitempty"`
}

// Form is one named input value submitted alongside an utterance.
type Form struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// BotMessage is the canonical normalized representation of one agent reply.
type BotMessage struct {
	Sender      string          `json:"sender"`
	MessageText string          `json:"messageText,omitempty"`
	Cards       []Card          `json:"cards,omitempty"`
	Media       []Media         `json:"media,omitempty"`
	Buttons     []Button        `json:"buttons,omitempty"`
	NLP         *NLP            `json:"nlp,omitempty"`
	SourceData  json.RawMessage `json:"sourceData,omitempty"`
}

type Card struct {
	Text    string   `json:"text"`
	Subtext string   `json:"subtext,omitempty"`
	Content string   `json:"content,omitempty"`
	Image   *Media   `json:"image,omitempty"`
	Buttons []Button `json:"buttons,omitempty"`
}

type Button struct {
	Text    string `json:"text"`
	Payload string `json:"payload,omitempty"`
}

type Media struct {
	MimeType string `json:"mimeType,omitempty"`
	MediaURI string `json:"mediaUri"`
	AltText  string `json:"altText,omitempty"`
}

// NLP carries the best-effort intent and entity extraction of a reply.
type NLP struct {
	Intent   Intent   `json:"intent"`
	Entities []Entity `json:"entities"`
}

type Intent struct {
	Name            string  `json:"name"`
	Confidence      float64 `json:"confidence"`
	Incomprehension bool    `json:"incomprehension"`
}

type Entity struct {
	Name       string  `json:"name"`
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence,omitempty"`
}
