package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"agentforce/pkg/config"
	"agentforce/pkg/failure"
)

func TestAuthenticateClientCredentials(t *testing.T) {
	var gotForm map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("method = %s, want POST", r.Method)
		}
		if r.URL.Path != "/services/oauth2/token" {
			t.Fatalf("path = %s", r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		gotForm = map[string]string{
			"grant_type":    r.PostForm.Get("grant_type"),
			"client_id":     r.PostForm.Get("client_id"),
			"client_secret": r.PostForm.Get("client_secret"),
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok-1","token_type":"Bearer","instance_url":"https://org.example.com","scope":"api","issued_at":"1700000000000"}`))
	}))
	defer server.Close()

	token, err := New().Authenticate(context.Background(), config.AgentforceConfig{
		InstanceURL:  server.URL,
		AgentID:      "agent",
		ClientID:     "cid",
		ClientSecret: "secret",
	})
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}

	if gotForm["grant_type"] != GrantClientCredentials {
		t.Fatalf("grant_type = %q", gotForm["grant_type"])
	}
	if gotForm["client_id"] != "cid" || gotForm["client_secret"] != "secret" {
		t.Fatalf("client credentials not sent as params: %v", gotForm)
	}
	want := Token{
		AccessToken: "tok-1",
		TokenType:   "Bearer",
		InstanceURL: "https://org.example.com",
		Scope:       "api",
		IssuedAt:    "1700000000000",
	}
	if token != want {
		t.Fatalf("token = %+v, want %+v", token, want)
	}
}

func TestAuthenticatePasswordAppendsSecurityToken(t *testing.T) {
	var username, password, grantType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		grantType = r.PostForm.Get("grant_type")
		username = r.PostForm.Get("username")
		password = r.PostForm.Get("password")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok-2","token_type":"Bearer"}`))
	}))
	defer server.Close()

	token, err := New().Authenticate(context.Background(), config.AgentforceConfig{
		InstanceURL:   server.URL,
		AgentID:       "agent",
		Username:      "user@example.com",
		Password:      "hunter2",
		SecurityToken: "XYZ",
	})
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}

	if grantType != GrantPassword {
		t.Fatalf("grant_type = %q", grantType)
	}
	if username != "user@example.com" || password != "hunter2XYZ" {
		t.Fatalf("username/password = %q/%q", username, password)
	}
	if token.InstanceURL != server.URL {
		t.Fatalf("instance_url fallback = %q, want %q", token.InstanceURL, server.URL)
	}
	if token.IssuedAt == "" {
		t.Fatal("expected issued_at to be filled in")
	}
}

func TestAuthenticateSurfacesUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_client","error_description":"invalid client credentials"}`))
	}))
	defer server.Close()

	_, err := New().Authenticate(context.Background(), config.AgentforceConfig{
		InstanceURL:  server.URL,
		AgentID:      "agent",
		ClientID:     "cid",
		ClientSecret: "wrong",
	})
	if !failure.Is(err, failure.PhaseAuth) {
		t.Fatalf("error = %v, want auth error", err)
	}

	var authErr *failure.Error
	if !errors.As(err, &authErr) {
		t.Fatalf("expected *failure.Error, got %T", err)
	}
	if authErr.Code != "invalid_client" {
		t.Fatalf("code = %q", authErr.Code)
	}
	if authErr.Description != "invalid client credentials" {
		t.Fatalf("description = %q", authErr.Description)
	}
	if authErr.Status != http.StatusBadRequest {
		t.Fatalf("status = %d", authErr.Status)
	}
}

func TestAuthenticateMissingAccessToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"token_type":"Bearer"}`))
	}))
	defer server.Close()

	_, err := New().Authenticate(context.Background(), config.AgentforceConfig{
		InstanceURL:  server.URL,
		AgentID:      "agent",
		ClientID:     "cid",
		ClientSecret: "secret",
	})
	if !failure.Is(err, failure.PhaseAuth) {
		t.Fatalf("error = %v, want auth error", err)
	}

	var authErr *failure.Error
	if !errors.As(err, &authErr) || authErr.Code != codeMissingToken {
		t.Fatalf("expected missing token code, got %v", err)
	}
}

func TestAuthenticateWithoutCredentials(t *testing.T) {
	_, err := New().Authenticate(context.Background(), config.AgentforceConfig{
		InstanceURL: "http://127.0.0.1:1",
		AgentID:     "agent",
		ClientID:    "only-id",
	})
	if !failure.Is(err, failure.PhaseAuth) {
		t.Fatalf("error = %v, want auth error", err)
	}
}

func TestGrantFor(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.AgentforceConfig
		want string
	}{
		{name: "client pair", cfg: config.AgentforceConfig{ClientID: "a", ClientSecret: "b"}, want: GrantClientCredentials},
		{name: "both pairs prefer client", cfg: config.AgentforceConfig{ClientID: "a", ClientSecret: "b", Username: "u", Password: "p"}, want: GrantClientCredentials},
		{name: "password pair", cfg: config.AgentforceConfig{ClientID: "a", Username: "u", Password: "p"}, want: GrantPassword},
		{name: "incomplete", cfg: config.AgentforceConfig{Username: "u"}, want: ""},
	}

	for _, tt := range tests {
		if got := GrantFor(tt.cfg); got != tt.want {
			t.Fatalf("%s: GrantFor() = %q, want %q", tt.name, got, tt.want)
		}
	}
}
