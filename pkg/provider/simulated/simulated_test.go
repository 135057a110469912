package simulated

import (
	"context"
	"strings"
	"testing"
	"time"

	"agentforce/pkg/normalize"
	providertypes "agentforce/pkg/provider/types"
)

func TestRespondRules(t *testing.T) {
	tests := []struct {
		input  string
		intent string
	}{
		{input: "Hello there", intent: "greeting"},
		{input: "hi", intent: "greeting"},
		{input: "Can you help me?", intent: "help_request"},
		{input: "What's the weather like?", intent: "weather_inquiry"},
		{input: "Show me a product", intent: "product_inquiry"},
		{input: "which services do you offer", intent: "product_inquiry"},
		{input: "thanks!", intent: "gratitude"},
		{input: "order status", intent: "general_inquiry"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			reply := Respond(tt.input)
			if reply.Intent != tt.intent {
				t.Fatalf("intent = %q, want %q", reply.Intent, tt.intent)
			}
			if reply.Confidence != defaultConfidence {
				t.Fatalf("confidence = %v", reply.Confidence)
			}
		})
	}
}

func TestRespondGeneralInquiryEchoesInput(t *testing.T) {
	reply := Respond("order status")
	if reply.Type != "text" {
		t.Fatalf("type = %q", reply.Type)
	}
	if want := `"order status"`; !strings.Contains(reply.Text, want) {
		t.Fatalf("text %q does not echo %s", reply.Text, want)
	}
}

func TestSendMessageNormalizesToCards(t *testing.T) {
	client := New()

	raw, err := client.SendMessage(context.Background(), "", "local-1", providertypes.TurnRequest{Message: "products please", SequenceID: 1})
	if err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}

	messages := normalize.Normalize(raw)
	if len(messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(messages))
	}
	msg := messages[0]
	if msg.MessageText != "Here are our available products and services:" {
		t.Fatalf("text = %q", msg.MessageText)
	}
	if len(msg.Cards) != 2 || msg.Cards[0].Text != "Product A" || len(msg.Cards[0].Buttons) != 2 {
		t.Fatalf("unexpected cards %+v", msg.Cards)
	}
	if msg.Cards[0].Image == nil || msg.Cards[0].Image.MediaURI != "https://example.com/product-a.jpg" {
		t.Fatalf("unexpected card image %+v", msg.Cards[0].Image)
	}
	if msg.NLP == nil || msg.NLP.Intent.Name != "product_inquiry" || msg.NLP.Intent.Confidence != defaultConfidence {
		t.Fatalf("unexpected nlp %+v", msg.NLP)
	}
}

func TestOpenSessionReturnsNoRemoteID(t *testing.T) {
	result, err := New().OpenSession(context.Background(), "", providertypes.OpenSessionRequest{ExternalSessionKey: "k"})
	if err != nil {
		t.Fatalf("OpenSession() error = %v", err)
	}
	if result.SessionID != "" {
		t.Fatalf("session id = %q, want empty", result.SessionID)
	}
}

func TestSendMessageHonorsContextDuringLatency(t *testing.T) {
	client := New(WithLatency(time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := client.SendMessage(ctx, "", "s", providertypes.TurnRequest{Message: "hi"}); err == nil {
		t.Fatal("expected context error")
	}
}
