package provider

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"agentforce/pkg/config"
	"agentforce/pkg/provider/agentforce"
	"agentforce/pkg/provider/simulated"
	providertypes "agentforce/pkg/provider/types"
)

// Client is the remote agent contract the session layer drives.
type Client interface {
	OpenSession(ctx context.Context, accessToken string, req providertypes.OpenSessionRequest) (providertypes.OpenSessionResult, error)
	SendMessage(ctx context.Context, accessToken string, sessionID string, req providertypes.TurnRequest) (json.RawMessage, error)
	CloseSession(ctx context.Context, accessToken string, sessionID string) error
}

type HTTPError = providertypes.HTTPError

// New returns the simulated responder in simulation mode and the HTTP
// Agent API client otherwise.
func New(cfg config.AgentforceConfig, httpClient *http.Client) (Client, error) {
	providerID := "agentforce"
	if cfg.SimulationMode {
		providerID = "simulated"
	}

	slog.Default().With("component", "provider.factory").Debug("Resolving provider client", "provider", providerID)

	if cfg.SimulationMode {
		return simulated.New(), nil
	}
	return agentforce.New(cfg, httpClient)
}
