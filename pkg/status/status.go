package status

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"agentforce/pkg/config"
	"agentforce/pkg/session"
)

const (
	defaultHost = "127.0.0.1"
	defaultPort = 18791
)

// Source reports the lifecycle position the server exposes.
type Source interface {
	Phase() session.Phase
	SessionID() string
}

type Server struct {
	cfg      config.StatusConfig
	source   Source
	gatherer prometheus.Gatherer
	log      *slog.Logger

	mu        sync.RWMutex
	startedAt time.Time
}

type statusResponse struct {
	Status        string `json:"status"`
	Phase         string `json:"phase"`
	SessionID     string `json:"session_id,omitempty"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

func New(cfg config.StatusConfig, source Source, gatherer prometheus.Gatherer, log *slog.Logger) (*Server, error) {
	if source == nil {
		return nil, errors.New("status source is required")
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	if log == nil {
		log = slog.Default()
	}

	return &Server{
		cfg:      cfg,
		source:   source,
		gatherer: gatherer,
		log:      log.With("component", "status.server"),
	}, nil
}

// Addr returns the host:port the server listens on.
func (s *Server) Addr() string {
	host := strings.TrimSpace(s.cfg.Host)
	if host == "" {
		host = defaultHost
	}

	port := s.cfg.Port
	if port <= 0 {
		port = defaultPort
	}

	return net.JoinHostPort(host, strconv.Itoa(port))
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	return mux
}

// Run serves until ctx ends.
func (s *Server) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	s.mu.Lock()
	s.startedAt = time.Now().UTC()
	s.mu.Unlock()

	addr := s.Addr()
	server := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	s.log.Info("Status server started", "address", addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("start status server: %w", err)
	}
	<-shutdownDone

	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.respondStatus(w, http.StatusOK, "ok")
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	statusCode := http.StatusOK
	status := "ready"
	if s.source.Phase() != session.PhaseOpen {
		statusCode = http.StatusServiceUnavailable
		status = "not_ready"
	}

	s.respondStatus(w, statusCode, status)
}

func (s *Server) respondStatus(w http.ResponseWriter, statusCode int, status string) {
	payload := s.currentStatus(status)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log.Error("Failed to write status response", "error", err)
	}
}

func (s *Server) currentStatus(status string) statusResponse {
	s.mu.RLock()
	startedAt := s.startedAt
	s.mu.RUnlock()

	uptime := int64(0)
	if !startedAt.IsZero() {
		uptime = int64(time.Since(startedAt).Seconds())
	}

	return statusResponse{
		Status:        status,
		Phase:         string(s.source.Phase()),
		SessionID:     s.source.SessionID(),
		UptimeSeconds: uptime,
	}
}
