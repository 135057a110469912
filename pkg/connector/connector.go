// Package connector exposes the Agentforce session engine through the
// lifecycle a bot-testing harness drives: Validate, Build, Start, UserSays,
// Stop and Clean.
package connector

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"agentforce/pkg/auth"
	"agentforce/pkg/bus"
	"agentforce/pkg/config"
	"agentforce/pkg/failure"
	"agentforce/pkg/message"
	"agentforce/pkg/normalize"
	"agentforce/pkg/provider"
	"agentforce/pkg/session"
)

// Lifecycle is the contract a test harness calls, one method at a time.
type Lifecycle interface {
	Validate() error
	Build() error
	Start(ctx context.Context) error
	UserSays(ctx context.Context, msg message.UserMessage) error
	Stop(ctx context.Context)
	Clean(ctx context.Context)
}

// Callback receives every normalized bot message, including the ones a
// scheduler emits after UserSays has returned.
type Callback func(message.BotMessage)

var _ Lifecycle = (*Connector)(nil)

type Connector struct {
	cfg      config.AgentforceConfig
	callback Callback

	scheduler     Scheduler
	events        *bus.Bus
	httpClient    *http.Client
	client        provider.Client
	authenticator *auth.Authenticator
	manager       *session.Manager
	exchanger     *session.Exchanger

	log *slog.Logger

	mu    sync.Mutex
	built bool
	state session.State
}

type Option func(*Connector)

// WithScheduler replaces the timer scheduler used for secondary messages.
func WithScheduler(scheduler Scheduler) Option {
	return func(c *Connector) {
		if scheduler != nil {
			c.scheduler = scheduler
		}
	}
}

// WithBus publishes lifecycle events to b.
func WithBus(b *bus.Bus) Option {
	return func(c *Connector) {
		c.events = b
	}
}

// WithHTTPClient routes token and agent requests through client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Connector) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithProvider replaces the agent client Build would create.
func WithProvider(client provider.Client) Option {
	return func(c *Connector) {
		c.client = client
	}
}

func New(cfg config.AgentforceConfig, callback Callback, opts ...Option) *Connector {
	c := &Connector{
		cfg:        cfg,
		callback:   callback,
		scheduler:  NewTimerScheduler(),
		httpClient: &http.Client{},
		log:        slog.Default().With("component", "connector"),
		state:      session.Closed(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Validate reports the first missing required setting.
func (c *Connector) Validate() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.cfg.Validate()
}

// Build applies defaults and wires the agent client. It does no network I/O.
func (c *Connector) Build() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.buildLocked()
}

func (c *Connector) buildLocked() error {
	if c.built {
		return nil
	}

	c.cfg = c.cfg.ApplyDefaults()
	if c.client == nil {
		client, err := provider.New(c.cfg, c.httpClient)
		if err != nil {
			return fmt.Errorf("build connector: %w", err)
		}
		c.client = client
	}

	c.authenticator = auth.New(auth.WithHTTPClient(c.httpClient))
	c.manager = session.NewManager(c.client, c.cfg)
	c.exchanger = session.NewExchanger(c.client)
	c.built = true

	c.log.Debug("Connector built",
		"instance_url", c.cfg.InstanceURL,
		"agent_id", c.cfg.AgentID,
		"api_version", c.cfg.APIVersion,
		"simulation_mode", c.cfg.SimulationMode,
	)

	return nil
}

// Start authenticates and opens a session. A session that is already open is
// closed first.
func (c *Connector) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.buildLocked(); err != nil {
		return fmt.Errorf("start connector: %w", err)
	}
	if c.state.Phase() != session.PhaseClosed {
		c.closeLocked(ctx)
	}

	startedAt := time.Now()
	token, err := c.authenticator.Authenticate(ctx, c.cfg)
	if err != nil {
		c.publish(ctx, bus.Event{Type: bus.EventAuthFailed, Error: err.Error()})
		c.log.Error("Authentication failed", "error", err)
		return fmt.Errorf("start connector: %w", err)
	}
	c.state = session.Authenticated(token)
	c.publish(ctx, bus.Event{Type: bus.EventAuthenticated, Duration: time.Since(startedAt)})

	opened, err := c.manager.Open(ctx, c.state)
	if err != nil {
		c.publish(ctx, bus.Event{Type: bus.EventSessionFailed, Error: err.Error()})
		c.log.Error("Session open failed", "error", err)
		return fmt.Errorf("start connector: %w", err)
	}
	c.state = opened

	current, _ := c.state.Session()
	c.publish(ctx, bus.Event{
		Type:      bus.EventSessionOpened,
		SessionID: current.ID,
		Duration:  time.Since(startedAt),
	})
	c.log.Info("Connector started", "session_id", current.ID, "duration_ms", time.Since(startedAt).Milliseconds())

	return nil
}

// UserSays sends one turn. The first normalized reply is delivered before
// UserSays returns; further replies of a multi-message response follow through
// the scheduler at increasing delays.
func (c *Connector) UserSays(ctx context.Context, msg message.UserMessage) error {
	c.mu.Lock()

	current, ok := c.state.Session()
	if !ok {
		c.mu.Unlock()
		return fmt.Errorf("send message: %w", failure.Message("connector is not started", 0, nil))
	}
	sequence := current.NextSequence

	c.publish(ctx, bus.Event{Type: bus.EventTurnSent, SessionID: current.ID, Sequence: sequence})
	startedAt := time.Now()

	next, raw, err := c.exchanger.Send(ctx, c.state, msg)
	c.state = next
	interval := c.cfg.MessageInterval()
	c.mu.Unlock()

	if err != nil {
		c.publish(ctx, bus.Event{
			Type:      bus.EventTurnFailed,
			SessionID: current.ID,
			Sequence:  sequence,
			Duration:  time.Since(startedAt),
			Error:     err.Error(),
		})
		return fmt.Errorf("send message: %w", err)
	}

	messages := normalize.Normalize(raw)
	c.publish(ctx, bus.Event{
		Type:      bus.EventTurnCompleted,
		SessionID: current.ID,
		Sequence:  sequence,
		Duration:  time.Since(startedAt),
		Payload:   map[string]string{"messages": strconv.Itoa(len(messages))},
	})

	c.emit(current.ID, messages[0])
	for i, pending := range messages[1:] {
		c.scheduler.Schedule(time.Duration(i+1)*interval, func() {
			c.emit(current.ID, pending)
		})
	}

	return nil
}

// Stop closes the session on a best-effort basis. Token and session are
// always cleared, even when the remote close fails.
func (c *Connector) Stop(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closeLocked(ctx)
}

// Clean is an idempotent alias for Stop.
func (c *Connector) Clean(ctx context.Context) {
	c.Stop(ctx)
}

// Phase reports the current lifecycle phase.
func (c *Connector) Phase() session.Phase {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.state.Phase()
}

// SessionID returns the open session id, or "" when no session is open.
func (c *Connector) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	current, _ := c.state.Session()
	return current.ID
}

func (c *Connector) closeLocked(ctx context.Context) {
	current, hadSession := c.state.Session()
	if c.manager == nil {
		c.state = session.Closed()
		return
	}

	c.state = c.manager.Close(ctx, c.state)
	if hadSession {
		c.publish(ctx, bus.Event{Type: bus.EventSessionClosed, SessionID: current.ID})
		c.log.Info("Connector stopped", "session_id", current.ID)
	}
}

func (c *Connector) emit(sessionID string, msg message.BotMessage) {
	c.publish(context.Background(), bus.Event{
		Type:      bus.EventBotMessage,
		SessionID: sessionID,
		Message:   &msg,
	})
	if c.callback != nil {
		c.callback(msg)
	}
}

func (c *Connector) publish(ctx context.Context, event bus.Event) {
	if c.events == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	c.events.PublishEvent(context.WithoutCancel(ctx), event)
}
