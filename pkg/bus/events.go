package bus

import (
	"time"

	"agentforce/pkg/message"
)

type EventType string

const (
	EventAuthenticated EventType = "authenticated"
	EventAuthFailed    EventType = "auth_failed"
	EventSessionOpened EventType = "session_opened"
	EventSessionFailed EventType = "session_failed"
	EventSessionClosed EventType = "session_closed"
	EventTurnSent      EventType = "turn_sent"
	EventTurnCompleted EventType = "turn_completed"
	EventTurnFailed    EventType = "turn_failed"
	EventBotMessage    EventType = "bot_message"
)

type Event struct {
	Type      EventType           `json:"type"`
	At        time.Time           `json:"at"`
	SessionID string              `json:"session_id,omitempty"`
	Sequence  int64               `json:"sequence,omitempty"`
	Duration  time.Duration       `json:"duration,omitempty"`
	Payload   map[string]string   `json:"payload,omitempty"`
	Message   *message.BotMessage `json:"message,omitempty"`
	Error     string              `json:"error,omitempty"`
}
