package types

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// OpenSessionRequest is the body posted to open a remote agent session.
type OpenSessionRequest struct {
	ExternalSessionKey    string                `json:"externalSessionKey"`
	InstanceConfig        InstanceConfig        `json:"instanceConfig"`
	StreamingCapabilities StreamingCapabilities `json:"streamingCapabilities"`
	BypassUser            bool                  `json:"bypassUser"`
}

type InstanceConfig struct {
	Endpoint string `json:"endpoint"`
}

type StreamingCapabilities struct {
	ChunkTypes []string `json:"chunkTypes"`
}

// OpenSessionResult carries the remote session id, empty when the platform
// acknowledged without echoing one.
type OpenSessionResult struct {
	SessionID string
	Raw       json.RawMessage
}

// TurnRequest is the body posted for one user turn.
type TurnRequest struct {
	Message          string            `json:"message"`
	SequenceID       int64             `json:"sequenceId"`
	Attachments      []Attachment      `json:"attachments,omitempty"`
	SuggestedActions []SuggestedAction `json:"suggestedActions,omitempty"`
	ChannelData      *ChannelData      `json:"channelData,omitempty"`
}

type Attachment struct {
	ContentType string `json:"contentType,omitempty"`
	ContentURL  string `json:"contentUrl"`
	Name        string `json:"name,omitempty"`
}

type SuggestedAction struct {
	Text    string `json:"text"`
	Payload string `json:"payload,omitempty"`
}

type ChannelData struct {
	Forms map[string]string `json:"forms,omitempty"`
}

// HTTPError is a non-2xx response from the agent platform.
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	if e == nil {
		return ""
	}
	if e.Message == "" {
		return fmt.Sprintf("http status %d", e.Status)
	}
	return fmt.Sprintf("http status %d: %s", e.Status, e.Message)
}

// NewHTTPError extracts the most specific message an error body offers.
func NewHTTPError(status int, body []byte) *HTTPError {
	return &HTTPError{Status: status, Message: ErrorMessage(body)}
}

// ErrorMessage reads error.message, message, error_description, error, or the
// raw body, in that order.
func ErrorMessage(body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return ""
	}
	if !gjson.Valid(trimmed) {
		return trimmed
	}

	parsed := gjson.Parse(trimmed)
	if parsed.IsArray() {
		parsed = parsed.Get("0")
	}
	for _, path := range []string{"error.message", "message", "error_description", "error", "errorCode"} {
		value := parsed.Get(path)
		if value.Type == gjson.String && strings.TrimSpace(value.String()) != "" {
			return strings.TrimSpace(value.String())
		}
	}

	return trimmed
}
