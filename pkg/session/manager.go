package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"agentforce/pkg/config"
	"agentforce/pkg/failure"
	"agentforce/pkg/provider"
	providertypes "agentforce/pkg/provider/types"
)

const firstSequence = 1

var streamingChunkTypes = []string{"Text"}

// Manager opens and closes remote sessions.
type Manager struct {
	client provider.Client
	cfg    config.AgentforceConfig
	newKey func() (string, error)
	now    func() time.Time
}

func NewManager(client provider.Client, cfg config.AgentforceConfig) *Manager {
	return &Manager{
		client: client,
		cfg:    cfg.ApplyDefaults(),
		newKey: func() (string, error) {
			id, err := uuid.NewRandom()
			if err != nil {
				return "", err
			}
			return id.String(), nil
		},
		now: time.Now,
	}
}

// Open moves an Authenticated state to Open. The session id is the remote
// sessionId, else the remote id, else the locally generated key.
func (m *Manager) Open(ctx context.Context, state State) (State, error) {
	token, ok := state.Token()
	if !ok || state.Phase() != PhaseAuthenticated {
		return state, failure.Session(fmt.Sprintf("cannot open session from %s state", state.Phase()), 0, nil)
	}

	key := m.externalKey()
	log := sessionLogger().With("agent_id", m.cfg.AgentID, "external_session_key", key)

	result, err := m.client.OpenSession(ctx, token.AccessToken, providertypes.OpenSessionRequest{
		ExternalSessionKey: key,
		InstanceConfig:     providertypes.InstanceConfig{Endpoint: m.cfg.InstanceURL},
		StreamingCapabilities: providertypes.StreamingCapabilities{
			ChunkTypes: append([]string(nil), streamingChunkTypes...),
		},
		BypassUser: true,
	})
	if err != nil {
		log.Warn("Session open failed", "error", err)
		return state, failure.Session(describe(err), statusOf(err), err)
	}

	sessionID := strings.TrimSpace(result.SessionID)
	if sessionID == "" {
		log.Debug("Remote did not echo a session id, using local key")
		sessionID = key
	}
	log.Info("Session opened", "session_id", sessionID)

	return open(token, Session{
		ID:           sessionID,
		AgentID:      m.cfg.AgentID,
		ExternalKey:  key,
		NextSequence: firstSequence,
	}), nil
}

// Close ends the remote session on a best-effort basis. The result is always
// Closed; a failed remote close is logged and dropped.
func (m *Manager) Close(ctx context.Context, state State) State {
	session, ok := state.Session()
	if !ok {
		return Closed()
	}

	token, _ := state.Token()
	log := sessionLogger().With("session_id", session.ID)
	if err := m.client.CloseSession(ctx, token.AccessToken, session.ID); err != nil {
		cleanupErr := failure.Cleanup(describe(err), err)
		log.Warn("Session close failed", "error", cleanupErr)
		return Closed()
	}
	log.Info("Session closed")

	return Closed()
}

func (m *Manager) externalKey() string {
	key, err := m.newKey()
	if err == nil && strings.TrimSpace(key) != "" {
		return key
	}

	sessionLogger().Debug("Falling back to timestamp session key", "error", err)
	return "botium-session-" + strconv.FormatInt(m.now().UnixMilli(), 10) + "-" + strconv.FormatUint(rand.Uint64()%(1<<40), 36)
}

func statusOf(err error) int {
	var httpErr *provider.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Status
	}
	return 0
}

func describe(err error) string {
	var httpErr *provider.HTTPError
	if errors.As(err, &httpErr) && httpErr.Message != "" {
		return httpErr.Message
	}
	return err.Error()
}

func sessionLogger() *slog.Logger {
	return slog.Default().With("component", "session.manager")
}
