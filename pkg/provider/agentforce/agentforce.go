package agentforce

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"agentforce/pkg/config"
	providertypes "agentforce/pkg/provider/types"
)

const maxResponseBytes = 4 << 20

// Client talks to the Agentforce Agent API over HTTPS.
type Client struct {
	httpClient     *http.Client
	cfg            config.AgentforceConfig
	requestTimeout time.Duration
}

func New(cfg config.AgentforceConfig, httpClient *http.Client) (*Client, error) {
	cfg = cfg.ApplyDefaults()
	if cfg.InstanceURL == "" {
		return nil, errors.New("agentforce.instance_url is required")
	}
	if cfg.AgentID == "" {
		return nil, errors.New("agentforce.agent_id is required")
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	return &Client{
		httpClient:     httpClient,
		cfg:            cfg,
		requestTimeout: cfg.Timeout(),
	}, nil
}

func (c *Client) OpenSession(ctx context.Context, accessToken string, req providertypes.OpenSessionRequest) (providertypes.OpenSessionResult, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	log := providerLogger().With("operation", "open_session")
	startedAt := time.Now()
	log.Debug("provider request started", "agent_id", c.cfg.AgentID, "external_session_key", req.ExternalSessionKey)

	body, err := c.do(ctx, http.MethodPost, c.cfg.OpenSessionURL(), accessToken, req)
	if err != nil {
		log.Debug("provider request failed", "duration_ms", time.Since(startedAt).Milliseconds(), "error", err)
		return providertypes.OpenSessionResult{}, fmt.Errorf("open session failed: %w", err)
	}

	result := providertypes.OpenSessionResult{Raw: body}
	if gjson.ValidBytes(body) {
		parsed := gjson.ParseBytes(body)
		for _, key := range []string{"sessionId", "id"} {
			if id := strings.TrimSpace(parsed.Get(key).String()); id != "" {
				result.SessionID = id
				break
			}
		}
	}
	log.Debug("provider request completed", "duration_ms", time.Since(startedAt).Milliseconds(), "session_id", result.SessionID)

	return result, nil
}

func (c *Client) SendMessage(ctx context.Context, accessToken string, sessionID string, req providertypes.TurnRequest) (json.RawMessage, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	log := providerLogger().With("operation", "send_message", "session_id", sessionID, "sequence_id", req.SequenceID)
	startedAt := time.Now()

	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, errors.New("session id is required")
	}
	log.Debug("provider request started", "message_length", len(req.Message), "attachments", len(req.Attachments))

	body, err := c.do(ctx, http.MethodPost, c.cfg.MessageURL(sessionID), accessToken, req)
	if err != nil {
		log.Debug("provider request failed", "duration_ms", time.Since(startedAt).Milliseconds(), "error", err)
		return nil, fmt.Errorf("send message failed: %w", err)
	}
	log.Debug("provider request completed", "duration_ms", time.Since(startedAt).Milliseconds(), "response_length", len(body))

	return body, nil
}

func (c *Client) CloseSession(ctx context.Context, accessToken string, sessionID string) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	log := providerLogger().With("operation", "close_session", "session_id", sessionID)
	startedAt := time.Now()
	log.Debug("provider request started")

	if _, err := c.do(ctx, http.MethodDelete, c.cfg.CloseSessionURL(strings.TrimSpace(sessionID)), accessToken, nil); err != nil {
		log.Debug("provider request failed", "duration_ms", time.Since(startedAt).Milliseconds(), "error", err)
		return fmt.Errorf("close session failed: %w", err)
	}
	log.Debug("provider request completed", "duration_ms", time.Since(startedAt).Milliseconds())

	return nil
}

// do sends one JSON request and returns the response body of a 2xx reply.
// Non-2xx replies come back as *providertypes.HTTPError.
func (c *Client) do(ctx context.Context, method string, url string, accessToken string, payload any) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, providertypes.NewHTTPError(resp.StatusCode, body)
	}

	return body, nil
}

func providerLogger() *slog.Logger {
	return slog.Default().With("component", "provider.agentforce")
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.requestTimeout <= 0 {
		return ctx, func() {}
	}

	return context.WithTimeout(ctx, c.requestTimeout)
}
