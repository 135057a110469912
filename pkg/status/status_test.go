package status

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"agentforce/pkg/config"
	"agentforce/pkg/session"
)

type fakeSource struct {
	phase     session.Phase
	sessionID string
}

func (f *fakeSource) Phase() session.Phase { return f.phase }
func (f *fakeSource) SessionID() string    { return f.sessionID }

func TestReadyzFollowsSessionPhase(t *testing.T) {
	t.Parallel()

	source := &fakeSource{phase: session.PhaseClosed}
	server, err := New(config.StatusConfig{}, source, prometheus.NewRegistry(), nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	recorder := httptest.NewRecorder()
	server.Handler().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if recorder.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503 while closed", recorder.Code)
	}

	source.phase = session.PhaseOpen
	source.sessionID = "sess-1"

	recorder = httptest.NewRecorder()
	server.Handler().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 while open", recorder.Code)
	}

	var payload statusResponse
	if err := json.NewDecoder(recorder.Body).Decode(&payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Status != "ready" || payload.Phase != "open" || payload.SessionID != "sess-1" {
		t.Fatalf("unexpected payload %+v", payload)
	}
}

func TestHealthzAlwaysOK(t *testing.T) {
	t.Parallel()

	server, err := New(config.StatusConfig{}, &fakeSource{}, prometheus.NewRegistry(), nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	recorder := httptest.NewRecorder()
	server.Handler().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", recorder.Code)
	}
}

func TestMetricsEndpointServesRegistry(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "agentforce_test_total", Help: "test"})
	reg.MustRegister(counter)
	counter.Inc()

	server, err := New(config.StatusConfig{}, &fakeSource{}, reg, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	recorder := httptest.NewRecorder()
	server.Handler().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, _ := io.ReadAll(recorder.Body)
	if !strings.Contains(string(body), "agentforce_test_total 1") {
		t.Fatalf("metrics body missing counter:\n%s", body)
	}
}

func TestAddrDefaults(t *testing.T) {
	t.Parallel()

	server, _ := New(config.StatusConfig{}, &fakeSource{}, nil, nil)
	if got := server.Addr(); got != "127.0.0.1:18791" {
		t.Fatalf("Addr() = %q", got)
	}

	server, _ = New(config.StatusConfig{Host: "0.0.0.0", Port: 9000}, &fakeSource{}, nil, nil)
	if got := server.Addr(); got != "0.0.0.0:9000" {
		t.Fatalf("Addr() = %q", got)
	}
}

func TestNewRequiresSource(t *testing.T) {
	t.Parallel()

	if _, err := New(config.StatusConfig{}, nil, nil, nil); err == nil {
		t.Fatal("expected error without source")
	}
}
