package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"agentforce/pkg/bus"
	"agentforce/pkg/config"
	"agentforce/pkg/connector"
	"agentforce/pkg/message"
	"agentforce/pkg/metrics"
	"agentforce/pkg/status"
)

// runtime bundles a started connector with its event bus, metrics collector
// and optional status server.
type runtime struct {
	conn      *connector.Connector
	scheduler *connector.TimerScheduler
	events    *bus.Bus

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func startRuntime(ctx context.Context, cfg *config.Config, log *slog.Logger, withStatus bool, callback connector.Callback) (*runtime, error) {
	runCtx, cancel := context.WithCancel(ctx)
	rt := &runtime{
		scheduler: connector.NewTimerScheduler(),
		events:    bus.New(),
		cancel:    cancel,
	}
	rt.conn = connector.New(cfg.Agentforce, callback,
		connector.WithScheduler(rt.scheduler),
		connector.WithBus(rt.events),
	)

	if err := rt.conn.Validate(); err != nil {
		rt.shutdown()
		return nil, err
	}

	registry := prometheus.NewRegistry()
	collector := metrics.New(registry)
	metricEvents, _ := rt.events.SubscribeEvents(runCtx, 0)
	logEvents, _ := rt.events.SubscribeEvents(runCtx, 0)

	rt.wg.Add(2)
	go func() {
		defer rt.wg.Done()
		collector.Run(runCtx, metricEvents)
	}()
	go func() {
		defer rt.wg.Done()
		for event := range logEvents {
			logEvent(log, event)
		}
	}()

	if withStatus || cfg.Status.Enabled {
		server, err := status.New(cfg.Status, rt.conn, registry, log)
		if err != nil {
			rt.shutdown()
			return nil, fmt.Errorf("configure status server: %w", err)
		}
		rt.wg.Add(1)
		go func() {
			defer rt.wg.Done()
			if err := server.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("Status server stopped", "error", err)
			}
		}()
	}

	if err := rt.conn.Start(ctx); err != nil {
		rt.shutdown()
		return nil, err
	}

	return rt, nil
}

// send delivers one utterance and waits for every scheduled reply.
func (rt *runtime) send(ctx context.Context, text string) error {
	err := rt.conn.UserSays(ctx, message.UserMessage{MessageText: text})
	rt.scheduler.Wait()
	return err
}

// shutdown closes the session and drains background goroutines.
func (rt *runtime) shutdown() {
	if rt.conn != nil {
		rt.conn.Stop(context.Background())
	}
	rt.scheduler.Wait()
	rt.events.Close()
	rt.cancel()
	rt.wg.Wait()
}

func logEvent(log *slog.Logger, event bus.Event) {
	attrs := []any{"event", string(event.Type)}
	if event.SessionID != "" {
		attrs = append(attrs, "session_id", event.SessionID)
	}
	if event.Sequence > 0 {
		attrs = append(attrs, "sequence", event.Sequence)
	}
	if event.Duration > 0 {
		attrs = append(attrs, "duration_ms", event.Duration.Milliseconds())
	}

	switch event.Type {
	case bus.EventAuthFailed, bus.EventSessionFailed, bus.EventTurnFailed:
		log.Error("Connector event", append(attrs, "error", event.Error)...)
	case bus.EventTurnSent, bus.EventTurnCompleted, bus.EventBotMessage:
		log.Debug("Connector event", attrs...)
	default:
		log.Info("Connector event", attrs...)
	}
}
