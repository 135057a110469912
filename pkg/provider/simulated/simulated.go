// Package simulated answers turns locally with rule-based replies, for orgs
// where the Agent API is unavailable (developer editions).
package simulated

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"

	providertypes "agentforce/pkg/provider/types"
)

const defaultConfidence = 0.9

// Reply is the payload shape the simulated agent answers with.
type Reply struct {
	Text       string  `json:"text"`
	Type       string  `json:"type"`
	Confidence float64 `json:"confidence"`
	Intent     string  `json:"intent"`
	Entities   []any   `json:"entities"`
	Cards      []Card  `json:"cards,omitempty"`
}

type Card struct {
	Title    string   `json:"title"`
	Subtitle string   `json:"subtitle,omitempty"`
	Image    string   `json:"image,omitempty"`
	Buttons  []Button `json:"buttons,omitempty"`
}

type Button struct {
	Text    string `json:"text"`
	Payload string `json:"payload"`
}

type rule struct {
	intent string
	match  func(text string, words map[string]bool) bool
	reply  func(original string) Reply
}

var rules = []rule{
	{
		intent: "greeting",
		match: func(text string, words map[string]bool) bool {
			return strings.Contains(text, "hello") || words["hi"]
		},
		reply: textReply("Hello! I'm your Agentforce assistant. How can I help you today?"),
	},
	{
		intent: "help_request",
		match:  containsAny("help"),
		reply:  textReply("I'm here to help! I can assist you with various tasks. What do you need help with?"),
	},
	{
		intent: "weather_inquiry",
		match:  containsAny("weather"),
		reply:  textReply("I'd be happy to help with weather information, but I don't have access to real-time weather data in this simulation."),
	},
	{
		intent: "product_inquiry",
		match:  containsAny("product", "service"),
		reply:  func(string) Reply { return productReply() },
	},
	{
		intent: "gratitude",
		match:  containsAny("thank"),
		reply:  textReply("You're welcome! Is there anything else I can help you with?"),
	},
}

// Client is a provider.Client that never leaves the process.
type Client struct {
	latency time.Duration
}

type Option func(*Client)

// WithLatency delays every reply to mimic a remote round trip.
func WithLatency(latency time.Duration) Option {
	return func(c *Client) {
		if latency > 0 {
			c.latency = latency
		}
	}
}

func New(opts ...Option) *Client {
	c := &Client{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OpenSession acknowledges without a remote id so callers keep their local key.
func (c *Client) OpenSession(ctx context.Context, _ string, req providertypes.OpenSessionRequest) (providertypes.OpenSessionResult, error) {
	providerLogger().Debug("simulated session opened", "external_session_key", req.ExternalSessionKey)
	return providertypes.OpenSessionResult{}, ctx.Err()
}

func (c *Client) SendMessage(ctx context.Context, _ string, sessionID string, req providertypes.TurnRequest) (json.RawMessage, error) {
	log := providerLogger().With("operation", "send_message", "session_id", sessionID, "sequence_id", req.SequenceID)
	startedAt := time.Now()
	log.Debug("provider request started", "message_length", len(req.Message))

	if c.latency > 0 {
		timer := time.NewTimer(c.latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			log.Debug("provider request failed", "duration_ms", time.Since(startedAt).Milliseconds(), "error", ctx.Err())
			return nil, fmt.Errorf("send message failed: %w", ctx.Err())
		case <-timer.C:
		}
	}

	reply := Respond(req.Message)
	body, err := json.Marshal(reply)
	if err != nil {
		return nil, fmt.Errorf("encode simulated reply: %w", err)
	}
	log.Debug("provider request completed", "duration_ms", time.Since(startedAt).Milliseconds(), "intent", reply.Intent)

	return body, nil
}

func (c *Client) CloseSession(ctx context.Context, _ string, sessionID string) error {
	providerLogger().Debug("simulated session closed", "session_id", sessionID)
	return ctx.Err()
}

// Respond picks the first matching rule for an utterance. Unmatched input gets
// a general inquiry reply that echoes it back.
func Respond(utterance string) Reply {
	text := strings.ToLower(utterance)
	words := wordSet(text)

	for _, r := range rules {
		if r.match(text, words) {
			reply := r.reply(utterance)
			reply.Intent = r.intent
			return reply
		}
	}

	reply := textReply(fmt.Sprintf(
		"I understand you're asking about %q. While I'm running in simulation mode (Developer Edition), I can help you test various conversation flows. Try asking about products, weather, or say hello!",
		utterance,
	))(utterance)
	reply.Intent = "general_inquiry"
	return reply
}

func textReply(text string) func(string) Reply {
	return func(string) Reply {
		return Reply{
			Text:       text,
			Type:       "text",
			Confidence: defaultConfidence,
			Entities:   []any{},
		}
	}
}

func productReply() Reply {
	return Reply{
		Text:       "Here are our available products and services:",
		Type:       "card",
		Confidence: defaultConfidence,
		Entities:   []any{},
		Cards: []Card{
			{
				Title:    "Product A",
				Subtitle: "Our flagship product",
				Image:    "https://example.com/product-a.jpg",
				Buttons: []Button{
					{Text: "Learn More", Payload: "learn_more_product_a"},
					{Text: "Buy Now", Payload: "buy_product_a"},
				},
			},
			{
				Title:    "Service B",
				Subtitle: "Professional services",
				Buttons: []Button{
					{Text: "Get Quote", Payload: "quote_service_b"},
				},
			},
		},
	}
}

func containsAny(needles ...string) func(string, map[string]bool) bool {
	return func(text string, _ map[string]bool) bool {
		for _, needle := range needles {
			if strings.Contains(text, needle) {
				return true
			}
		}
		return false
	}
}

func wordSet(text string) map[string]bool {
	words := make(map[string]bool)
	for _, word := range strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		words[word] = true
	}
	return words
}

func providerLogger() *slog.Logger {
	return slog.Default().With("component", "provider.simulated")
}
