package metrics

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/goleak"

	"agentforce/pkg/bus"
)

func TestObserveCountsLifecycle(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector := New(reg)

	for _, event := range []bus.Event{
		{Type: bus.EventAuthenticated},
		{Type: bus.EventSessionOpened},
		{Type: bus.EventTurnCompleted, Duration: 300 * time.Millisecond},
		{Type: bus.EventTurnCompleted, Duration: 2 * time.Second},
		{Type: bus.EventTurnFailed},
		{Type: bus.EventBotMessage},
		{Type: bus.EventBotMessage},
		{Type: bus.EventBotMessage},
	} {
		collector.Observe(event)
	}

	if got := testutil.ToFloat64(collector.turnsTotal.WithLabelValues("ok")); got != 2 {
		t.Fatalf("ok turns = %v, want 2", got)
	}
	if got := testutil.ToFloat64(collector.turnsTotal.WithLabelValues("error")); got != 1 {
		t.Fatalf("failed turns = %v, want 1", got)
	}
	if got := testutil.ToFloat64(collector.botMessagesTotal); got != 3 {
		t.Fatalf("bot messages = %v, want 3", got)
	}
	if got := testutil.ToFloat64(collector.sessionOpen); got != 1 {
		t.Fatalf("session_open = %v, want 1", got)
	}

	collector.Observe(bus.Event{Type: bus.EventSessionClosed})
	if got := testutil.ToFloat64(collector.sessionOpen); got != 0 {
		t.Fatalf("session_open after close = %v, want 0", got)
	}

	expected := `
# HELP agentforce_auth_total Token requests by outcome
# TYPE agentforce_auth_total counter
agentforce_auth_total{outcome="ok"} 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "agentforce_auth_total"); err != nil {
		t.Fatalf("unexpected auth metrics: %v", err)
	}
}

func TestRunDrainsBus(t *testing.T) {
	defer goleak.VerifyNone(t)

	reg := prometheus.NewRegistry()
	collector := New(reg)
	events := bus.New()

	subscription, unsubscribe := events.SubscribeEvents(context.Background(), 10)
	done := make(chan struct{})
	go func() {
		defer close(done)
		collector.Run(context.Background(), subscription)
	}()

	events.PublishEvent(context.Background(), bus.Event{Type: bus.EventAuthFailed})
	events.PublishEvent(context.Background(), bus.Event{Type: bus.EventSessionFailed})
	unsubscribe()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("collector did not stop after the subscription closed")
	}
	events.Close()

	if got := testutil.ToFloat64(collector.authTotal.WithLabelValues("error")); got != 1 {
		t.Fatalf("auth errors = %v, want 1", got)
	}
	if got := testutil.ToFloat64(collector.sessionsTotal.WithLabelValues("failed")); got != 1 {
		t.Fatalf("session failures = %v, want 1", got)
	}
}
