package config

import "testing"

func TestEndpointURLs(t *testing.T) {
	cfg := AgentforceConfig{
		InstanceURL: "https://org.my.salesforce.com",
		APIHost:     "https://api.salesforce.com/",
		AgentID:     "0XxAGENT",
	}.ApplyDefaults()

	tests := []struct {
		name string
		got  string
		want string
	}{
		{name: "token", got: cfg.TokenURL(), want: "https://org.my.salesforce.com/services/oauth2/token"},
		{name: "open", got: cfg.OpenSessionURL(), want: "https://api.salesforce.com/einstein/ai-agent/v1/agents/0XxAGENT/sessions"},
		{name: "message", got: cfg.MessageURL("s-1"), want: "https://api.salesforce.com/einstein/ai-agent/v1/sessions/s-1/messages"},
		{name: "close", got: cfg.CloseSessionURL("s-1"), want: "https://api.salesforce.com/einstein/ai-agent/v1/sessions/s-1"},
	}

	for _, tt := range tests {
		if tt.got != tt.want {
			t.Fatalf("%s url = %q, want %q", tt.name, tt.got, tt.want)
		}
	}
}

func TestEndpointTemplates(t *testing.T) {
	cfg := AgentforceConfig{
		InstanceURL: "https://org.my.salesforce.com",
		AgentID:     "agent 1",
		APIVersion:  "v62.0",
		Endpoints: EndpointsConfig{
			Token:        "https://login.salesforce.com/services/oauth2/token",
			OpenSession:  "services/data/{apiVersion}/agents/{agentId}/sessions",
			Message:      "/services/data/{apiVersion}/sessions/{sessionId}/messages",
			CloseSession: "/services/data/{apiVersion}/sessions/{sessionId}",
		},
	}.ApplyDefaults()

	if got := cfg.TokenURL(); got != "https://login.salesforce.com/services/oauth2/token" {
		t.Fatalf("absolute token template not kept: %q", got)
	}
	if got := cfg.OpenSessionURL(); got != "https://org.my.salesforce.com/services/data/v62.0/agents/agent%201/sessions" {
		t.Fatalf("open session url = %q", got)
	}
	if got := cfg.MessageURL("a/b"); got != "https://org.my.salesforce.com/services/data/v62.0/sessions/a%2Fb/messages" {
		t.Fatalf("message url = %q", got)
	}
}
