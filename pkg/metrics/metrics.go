package metrics

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"agentforce/pkg/bus"
)

const namespace = "agentforce"

// Collector turns lifecycle events into Prometheus series.
type Collector struct {
	authTotal        *prometheus.CounterVec
	sessionsTotal    *prometheus.CounterVec
	sessionOpen      prometheus.Gauge
	turnsTotal       *prometheus.CounterVec
	turnDuration     prometheus.Histogram
	botMessagesTotal prometheus.Counter
}

// New registers the connector series on reg.
func New(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		authTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_total",
			Help:      "Token requests by outcome",
		}, []string{"outcome"}),
		sessionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_total",
			Help:      "Session transitions by event (opened, failed, closed)",
		}, []string{"event"}),
		sessionOpen: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "session_open",
			Help:      "1 while a remote session is open",
		}),
		turnsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_total",
			Help:      "Turn exchanges by outcome",
		}, []string{"outcome"}),
		turnDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "turn_duration_seconds",
			Help:      "Round-trip time of completed turns",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		botMessagesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bot_messages_total",
			Help:      "Normalized bot messages delivered to the callback",
		}),
	}
}

// Observe records one event.
func (c *Collector) Observe(event bus.Event) {
	switch event.Type {
	case bus.EventAuthenticated:
		c.authTotal.WithLabelValues("ok").Inc()
	case bus.EventAuthFailed:
		c.authTotal.WithLabelValues("error").Inc()
	case bus.EventSessionOpened:
		c.sessionsTotal.WithLabelValues("opened").Inc()
		c.sessionOpen.Set(1)
	case bus.EventSessionFailed:
		c.sessionsTotal.WithLabelValues("failed").Inc()
	case bus.EventSessionClosed:
		c.sessionsTotal.WithLabelValues("closed").Inc()
		c.sessionOpen.Set(0)
	case bus.EventTurnCompleted:
		c.turnsTotal.WithLabelValues("ok").Inc()
		c.turnDuration.Observe(event.Duration.Seconds())
	case bus.EventTurnFailed:
		c.turnsTotal.WithLabelValues("error").Inc()
	case bus.EventBotMessage:
		c.botMessagesTotal.Inc()
	}
}

// Run consumes events until the channel closes or ctx ends.
func (c *Collector) Run(ctx context.Context, events <-chan bus.Event) {
	log := slog.Default().With("component", "metrics.collector")
	log.Debug("Metrics collector started")
	defer log.Debug("Metrics collector stopped")

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			c.Observe(event)
		}
	}
}
