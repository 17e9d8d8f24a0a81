// Package ops exposes the operational HTTP endpoint: health, status,
// and Prometheus metrics. It serves operators, not Discord users.
package ops

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tanevanwifferen/librarian-discord-bot/internal/access"
	"github.com/tanevanwifferen/librarian-discord-bot/internal/library"
)

// Server is the ops HTTP server.
type Server struct {
	addr      string
	logger    *slog.Logger
	contexts  *access.ContextList
	libClient *library.Client
	startedAt time.Time
	httpSrv   *http.Server
}

// NewServer creates an ops server. contexts may be nil (allow-list
// absent); libClient backs the health check.
func NewServer(addr string, contexts *access.ContextList, libClient *library.Client, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		addr:      addr,
		logger:    logger,
		contexts:  contexts,
		libClient: libClient,
		startedAt: time.Now(),
	}
}

// buildRouter constructs the chi mux with all routes wired.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", s.handleHealth())
	r.Get("/status", s.handleStatus())
	r.Handle("/metrics", promhttp.Handler())
	return r
}

// Start begins serving in a background goroutine.
func (s *Server) Start() {
	s.httpSrv = &http.Server{
		Addr:              s.addr,
		Handler:           s.buildRouter(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		s.logger.Info("ops server listening", "addr", s.addr)
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("ops server failed", "error", err)
		}
	}()
}

// Shutdown stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	if err := s.httpSrv.Shutdown(ctx); err != nil {
		return fmt.Errorf("ops: shutdown: %w", err)
	}
	return nil
}

// HealthResponse is the JSON response for GET /health.
type HealthResponse struct {
	Status string `json:"status"` // "ok" or "degraded"
	Books  int    `json:"books,omitempty"`
}

// handleHealth reports backend reachability.
// Returns 200 when the library backend answers, 503 otherwise.
func (s *Server) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := HealthResponse{Status: "ok"}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		health, err := s.libClient.Health(ctx)
		if err != nil {
			resp.Status = "degraded"
		} else {
			resp.Books = health.Books
		}

		w.Header().Set("Content-Type", "application/json")
		if resp.Status == "degraded" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}

// StatusResponse is the JSON response for GET /status.
type StatusResponse struct {
	Uptime          time.Duration `json:"uptime_seconds"`
	AllowListSource string        `json:"allow_list_source,omitempty"`
	AllowListAbsent bool          `json:"allow_list_absent"`
	Guilds          int           `json:"guilds"`
}

// handleStatus reports process uptime and the loaded allow-list.
func (s *Server) handleStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		resp := StatusResponse{
			Uptime:          time.Since(s.startedAt).Truncate(time.Second),
			AllowListSource: s.contexts.Source(),
			AllowListAbsent: s.contexts.Absent(),
			Guilds:          s.contexts.Guilds(),
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}
