package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const (
	DefaultAPIVersion      = "v61.0"
	DefaultTimeoutMS       = 60000
	DefaultMessageInterval = 100

	DefaultTokenPath        = "/services/oauth2/token"
	DefaultOpenSessionPath  = "/einstein/ai-agent/v1/agents/{agentId}/sessions"
	DefaultMessagePath      = "/einstein/ai-agent/v1/sessions/{sessionId}/messages"
	DefaultCloseSessionPath = "/einstein/ai-agent/v1/sessions/{sessionId}"
)

// ErrNotFound is returned by LoadConfig when no config file exists in the
// searched locations.
var ErrNotFound = errors.New("config file not found")

// Config is the root runtime configuration loaded from config.json or config.yaml.
type Config struct {
	Agentforce AgentforceConfig `json:"agentforce" yaml:"agentforce"`
	Logging    LoggingConfig    `json:"logging,omitempty" yaml:"logging,omitempty"`
	Status     StatusConfig     `json:"status,omitempty" yaml:"status,omitempty"`
}

// LoggingConfig controls structured log output format and verbosity.
type LoggingConfig struct {
	Format    string `json:"format,omitempty" yaml:"format,omitempty"`
	Level     string `json:"level,omitempty" yaml:"level,omitempty"`
	AddSource bool   `json:"add_source,omitempty" yaml:"add_source,omitempty"`
}

// StatusConfig configures the optional health/metrics listener.
type StatusConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled" env:"AGENTFORCE_STATUS_ENABLED"`
	Host    string `json:"host" yaml:"host" env:"AGENTFORCE_STATUS_HOST"`
	Port    int    `json:"port" yaml:"port" env:"AGENTFORCE_STATUS_PORT"`
}

// AgentforceConfig holds the remote org credentials and agent coordinates.
//
// The env tags double as the capability names a test harness passes in.
type AgentforceConfig struct {
	InstanceURL   string `json:"instance_url" yaml:"instance_url" env:"AGENTFORCE_INSTANCE_URL"`
	APIHost       string `json:"api_host,omitempty" yaml:"api_host,omitempty" env:"AGENTFORCE_API_HOST"`
	ClientID      string `json:"client_id,omitempty" yaml:"client_id,omitempty" env:"AGENTFORCE_CLIENT_ID"`
	ClientSecret  string `json:"client_secret,omitempty" yaml:"client_secret,omitempty" env:"AGENTFORCE_CLIENT_SECRET"`
	Username      string `json:"username,omitempty" yaml:"username,omitempty" env:"AGENTFORCE_USERNAME"`
	Password      string `json:"password,omitempty" yaml:"password,omitempty" env:"AGENTFORCE_PASSWORD"`
	SecurityToken string `json:"security_token,omitempty" yaml:"security_token,omitempty" env:"AGENTFORCE_SECURITY_TOKEN"`
	AgentID       string `json:"agent_id" yaml:"agent_id" env:"AGENTFORCE_AGENT_ID"`
	APIVersion    string `json:"api_version,omitempty" yaml:"api_version,omitempty" env:"AGENTFORCE_API_VERSION"`
	TimeoutMS     int    `json:"timeout_ms,omitempty" yaml:"timeout_ms,omitempty" env:"AGENTFORCE_TIMEOUT"`
	// SimulationMode swaps the remote agent for a local rule-based responder.
	SimulationMode bool `json:"simulation_mode,omitempty" yaml:"simulation_mode,omitempty" env:"AGENTFORCE_SIMULATION_MODE"`
	// MessageIntervalMS spaces out secondary messages of one multi-message reply.
	MessageIntervalMS int             `json:"message_interval_ms,omitempty" yaml:"message_interval_ms,omitempty" env:"AGENTFORCE_MESSAGE_INTERVAL"`
	Endpoints         EndpointsConfig `json:"endpoints,omitempty" yaml:"endpoints,omitempty"`
}

// EndpointsConfig holds URL path templates for each remote call.
//
// Templates may use {agentId}, {sessionId} and {apiVersion} placeholders.
type EndpointsConfig struct {
	Token        string `json:"token,omitempty" yaml:"token,omitempty" env:"AGENTFORCE_TOKEN_PATH"`
	OpenSession  string `json:"open_session,omitempty" yaml:"open_session,omitempty" env:"AGENTFORCE_OPEN_SESSION_PATH"`
	Message      string `json:"message,omitempty" yaml:"message,omitempty" env:"AGENTFORCE_MESSAGE_PATH"`
	CloseSession string `json:"close_session,omitempty" yaml:"close_session,omitempty" env:"AGENTFORCE_CLOSE_SESSION_PATH"`
}

// LoadConfig resolves the config file, unmarshals it, and applies environment overrides.
func LoadConfig() (*Config, error) {
	configPath, err := findConfigPath()
	if err != nil {
		return nil, err
	}

	return LoadFile(configPath)
}

// LoadFile reads one config file (JSON or YAML by extension) and applies env overrides.
func LoadFile(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(content, &cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	default:
		if err := json.Unmarshal(content, &cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// FromEnv builds a config purely from AGENTFORCE_* environment variables.
func FromEnv() (*Config, error) {
	var cfg Config
	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// FromCapabilities parses a harness capability dictionary keyed by AGENTFORCE_* names.
func FromCapabilities(caps map[string]string) (AgentforceConfig, error) {
	var cfg AgentforceConfig
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: caps}); err != nil {
		return AgentforceConfig{}, fmt.Errorf("parse capabilities: %w", err)
	}
	return cfg, nil
}

// applyEnvOverrides injects env-driven settings on top of file config.
// Unset variables leave file values untouched.
func applyEnvOverrides(cfg *Config) error {
	if cfg == nil {
		return nil
	}

	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}

	return nil
}

// findConfigPath resolves the active config file location.
//
// Precedence is AGENTFORCE_CONFIG first, then cwd-local fallback paths.
func findConfigPath() (string, error) {
	if value := strings.TrimSpace(os.Getenv("AGENTFORCE_CONFIG")); value != "" {
		if info, err := os.Stat(value); err == nil && !info.IsDir() {
			return value, nil
		}
		return "", fmt.Errorf("AGENTFORCE_CONFIG does not point to a file: %s", value)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get current working directory: %w", err)
	}

	candidates := []string{
		filepath.Join(cwd, "config.json"),
		filepath.Join(cwd, "config.yaml"),
		filepath.Join(cwd, "config", "config.json"),
		filepath.Join(cwd, "config", "config.yaml"),
	}

	for _, candidate := range candidates {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("%w (checked %s)", ErrNotFound, strings.Join(candidates, ", "))
}
