package agentforce

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"agentforce/pkg/config"
	providertypes "agentforce/pkg/provider/types"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := New(config.AgentforceConfig{
		InstanceURL: server.URL,
		AgentID:     "0XxAGENT",
	}, server.Client())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return client
}

func TestNewRequiresInstanceAndAgent(t *testing.T) {
	if _, err := New(config.AgentforceConfig{AgentID: "a"}, nil); err == nil {
		t.Fatal("expected error when instance_url is missing")
	}
	if _, err := New(config.AgentforceConfig{InstanceURL: "https://x"}, nil); err == nil {
		t.Fatal("expected error when agent_id is missing")
	}
}

func TestOpenSessionPostsEnvelope(t *testing.T) {
	var got providertypes.OpenSessionRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("method = %s", r.Method)
		}
		if r.URL.Path != "/einstein/ai-agent/v1/agents/0XxAGENT/sessions" {
			t.Fatalf("path = %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer tok" {
			t.Fatalf("authorization = %q", r.Header.Get("Authorization"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		_, _ = w.Write([]byte(`{"sessionId":"remote-1","_links":{}}`))
	})

	result, err := client.OpenSession(context.Background(), "tok", providertypes.OpenSessionRequest{
		ExternalSessionKey:    "key-1",
		InstanceConfig:        providertypes.InstanceConfig{Endpoint: "https://org"},
		StreamingCapabilities: providertypes.StreamingCapabilities{ChunkTypes: []string{"Text"}},
		BypassUser:            true,
	})
	if err != nil {
		t.Fatalf("OpenSession() error = %v", err)
	}
	if result.SessionID != "remote-1" {
		t.Fatalf("session id = %q", result.SessionID)
	}
	if got.ExternalSessionKey != "key-1" || !got.BypassUser || got.StreamingCapabilities.ChunkTypes[0] != "Text" {
		t.Fatalf("unexpected request body %+v", got)
	}
}

func TestOpenSessionFallsBackToID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"remote-2"}`))
	})

	result, err := client.OpenSession(context.Background(), "tok", providertypes.OpenSessionRequest{})
	if err != nil {
		t.Fatalf("OpenSession() error = %v", err)
	}
	if result.SessionID != "remote-2" {
		t.Fatalf("session id = %q", result.SessionID)
	}
}

func TestOpenSessionWithoutIDReturnsEmpty(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})

	result, err := client.OpenSession(context.Background(), "tok", providertypes.OpenSessionRequest{})
	if err != nil {
		t.Fatalf("OpenSession() error = %v", err)
	}
	if result.SessionID != "" {
		t.Fatalf("session id = %q, want empty", result.SessionID)
	}
}

func TestSendMessageReturnsRawBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/einstein/ai-agent/v1/sessions/s-1/messages" {
			t.Fatalf("path = %s", r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		if string(body) != `{"message":"hello","sequenceId":1}` {
			t.Fatalf("body = %s", body)
		}
		_, _ = w.Write([]byte(`{"messages":[{"message":"Hi there"}]}`))
	})

	raw, err := client.SendMessage(context.Background(), "tok", "s-1", providertypes.TurnRequest{Message: "hello", SequenceID: 1})
	if err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}
	if string(raw) != `{"messages":[{"message":"Hi there"}]}` {
		t.Fatalf("raw = %s", raw)
	}
}

func TestSendMessageRequiresSession(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})

	if _, err := client.SendMessage(context.Background(), "tok", " ", providertypes.TurnRequest{}); err == nil {
		t.Fatal("expected error for empty session id")
	}
}

func TestSendMessageSurfacesHTTPError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`[{"message":"Session expired or invalid","errorCode":"INVALID_SESSION_ID"}]`))
	})

	_, err := client.SendMessage(context.Background(), "tok", "s-1", providertypes.TurnRequest{Message: "x", SequenceID: 1})
	var httpErr *providertypes.HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected HTTPError, got %v", err)
	}
	if httpErr.Status != http.StatusUnauthorized || httpErr.Message != "Session expired or invalid" {
		t.Fatalf("unexpected http error %+v", httpErr)
	}
}

func TestCloseSessionUsesDelete(t *testing.T) {
	var method, path string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	})

	if err := client.CloseSession(context.Background(), "tok", "s-1"); err != nil {
		t.Fatalf("CloseSession() error = %v", err)
	}
	if method != http.MethodDelete || path != "/einstein/ai-agent/v1/sessions/s-1" {
		t.Fatalf("request = %s %s", method, path)
	}
}

func TestRequestTimeoutIsTransportFailure(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client, err := New(config.AgentforceConfig{
		InstanceURL: server.URL,
		AgentID:     "a",
		TimeoutMS:   50,
	}, server.Client())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	startedAt := time.Now()
	err = client.CloseSession(context.Background(), "tok", "s-1")
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if !strings.Contains(err.Error(), "close session failed") {
		t.Fatalf("unexpected error %v", err)
	}
	if time.Since(startedAt) > 5*time.Second {
		t.Fatal("timeout did not apply")
	}
}
