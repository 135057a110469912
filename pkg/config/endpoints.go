package config

import (
	"net/url"
	"strings"
)

// TokenURL resolves the OAuth2 token endpoint against the instance URL.
func (c AgentforceConfig) TokenURL() string {
	return c.resolve(c.InstanceURL, c.Endpoints.Token, "")
}

// OpenSessionURL resolves the session-open endpoint against the API host.
func (c AgentforceConfig) OpenSessionURL() string {
	return c.resolve(c.apiBase(), c.Endpoints.OpenSession, "")
}

// MessageURL resolves the turn endpoint for one session.
func (c AgentforceConfig) MessageURL(sessionID string) string {
	return c.resolve(c.apiBase(), c.Endpoints.Message, sessionID)
}

// CloseSessionURL resolves the session-close endpoint for one session.
func (c AgentforceConfig) CloseSessionURL(sessionID string) string {
	return c.resolve(c.apiBase(), c.Endpoints.CloseSession, sessionID)
}

func (c AgentforceConfig) apiBase() string {
	if host := strings.TrimSpace(c.APIHost); host != "" {
		return host
	}
	return c.InstanceURL
}

// resolve expands placeholders and joins the template onto base. Absolute
// templates are used as given.
func (c AgentforceConfig) resolve(base string, template string, sessionID string) string {
	expanded := strings.NewReplacer(
		"{agentId}", url.PathEscape(strings.TrimSpace(c.AgentID)),
		"{sessionId}", url.PathEscape(sessionID),
		"{apiVersion}", url.PathEscape(strings.TrimSpace(c.APIVersion)),
	).Replace(strings.TrimSpace(template))

	if strings.HasPrefix(expanded, "http://") || strings.HasPrefix(expanded, "https://") {
		return expanded
	}

	base = strings.TrimRight(strings.TrimSpace(base), "/")
	if expanded != "" && !strings.HasPrefix(expanded, "/") {
		expanded = "/" + expanded
	}
	return base + expanded
}
