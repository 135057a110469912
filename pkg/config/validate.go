package config

import (
	"strings"
	"time"

	"agentforce/pkg/failure"
)

const (
	FieldInstanceURL = "instance_url"
	FieldAgentID     = "agent_id"
	FieldCredentials = "credentials"
)

// Validate checks required fields in priority order: instance URL, agent id,
// then credential-pair completeness. The first missing field is reported.
func (c AgentforceConfig) Validate() error {
	if strings.TrimSpace(c.InstanceURL) == "" {
		return failure.Config(FieldInstanceURL, "agentforce.instance_url is required")
	}
	if strings.TrimSpace(c.AgentID) == "" {
		return failure.Config(FieldAgentID, "agentforce.agent_id is required")
	}
	if !c.HasClientCredentials() && !c.HasPasswordCredentials() {
		return failure.Config(FieldCredentials, "either agentforce.client_id/client_secret or agentforce.username/password is required")
	}

	return nil
}

// ApplyDefaults returns a copy with optional settings filled in.
func (c AgentforceConfig) ApplyDefaults() AgentforceConfig {
	c.InstanceURL = strings.TrimRight(strings.TrimSpace(c.InstanceURL), "/")
	c.APIHost = strings.TrimRight(strings.TrimSpace(c.APIHost), "/")
	if c.APIHost == "" {
		c.APIHost = c.InstanceURL
	}
	c.AgentID = strings.TrimSpace(c.AgentID)
	if strings.TrimSpace(c.APIVersion) == "" {
		c.APIVersion = DefaultAPIVersion
	}
	if c.TimeoutMS <= 0 {
		c.TimeoutMS = DefaultTimeoutMS
	}
	if c.MessageIntervalMS <= 0 {
		c.MessageIntervalMS = DefaultMessageInterval
	}
	if strings.TrimSpace(c.Endpoints.Token) == "" {
		c.Endpoints.Token = DefaultTokenPath
	}
	if strings.TrimSpace(c.Endpoints.OpenSession) == "" {
		c.Endpoints.OpenSession = DefaultOpenSessionPath
	}
	if strings.TrimSpace(c.Endpoints.Message) == "" {
		c.Endpoints.Message = DefaultMessagePath
	}
	if strings.TrimSpace(c.Endpoints.CloseSession) == "" {
		c.Endpoints.CloseSession = DefaultCloseSessionPath
	}

	return c
}

// HasClientCredentials reports whether both client id and secret are set.
func (c AgentforceConfig) HasClientCredentials() bool {
	return strings.TrimSpace(c.ClientID) != "" && strings.TrimSpace(c.ClientSecret) != ""
}

// HasPasswordCredentials reports whether both username and password are set.
func (c AgentforceConfig) HasPasswordCredentials() bool {
	return strings.TrimSpace(c.Username) != "" && strings.TrimSpace(c.Password) != ""
}

func (c AgentforceConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

func (c AgentforceConfig) MessageInterval() time.Duration {
	return time.Duration(c.MessageIntervalMS) * time.Millisecond
}
