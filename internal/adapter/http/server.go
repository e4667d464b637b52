// Package http exposes the daemon's operational endpoints: liveness,
// readiness, Prometheus metrics, and the latest quality-gate verdict.
package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/quietmarsh/air-quality-elt/internal/domain"
)

// ReadinessChecker reports whether at least one pipeline run has succeeded.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// StatusSource provides the quality report of the most recent run.
type StatusSource interface {
	LastReport() (domain.QualityReport, bool)
}

// Server serves /healthz, /readyz, /statusz, and /metrics for the daemon.
type Server struct {
	httpServer *http.Server
	status     StatusSource
	logger     *slog.Logger
}

// NewServer builds the operational HTTP server on addr.
func NewServer(addr string, ready ReadinessChecker, status StatusSource, logger *slog.Logger) *Server {
	mux := http.NewServeMux()
	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		status: status,
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady(ready))
	mux.HandleFunc("GET /statusz", s.handleStatus)
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown drains in-flight requests within the context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying mux so tests can drive the routes
// without a listener.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// handleReady returns 503 until the first successful run, so a scheduler-only
// deployment is not marked ready before it has produced data.
func (s *Server) handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			s.writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

// statusResponse is the wire shape of /statusz.
type statusResponse struct {
	Date       string             `json:"date"`
	Rows       int                `json:"rows"`
	Passed     bool               `json:"passed"`
	Violations []domain.Violation `json:"violations,omitempty"`
}

// handleStatus reports the latest quality-gate verdict. 204 until a run has
// reached the gate.
func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	report, ok := s.status.LastReport()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	s.writeJSON(w, http.StatusOK, statusResponse{
		Date:       report.LogicalDate.Format(domain.DateFormat),
		Rows:       report.Rows,
		Passed:     report.Passed(),
		Violations: report.Violations,
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("write response", "error", err)
	}
}
