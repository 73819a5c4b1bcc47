package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vietddude/newsdigest/internal/core/domain"
)

// JobRunner triggers the digest job. Implemented by control.Service.
type JobRunner interface {
	TriggerDaily(ctx context.Context) (*domain.RetryResult, error)
}

// Check verifies one dependency (database, redis).
type Check func(ctx context.Context) error

// Server provides HTTP endpoints for health, metrics, and the job
// trigger. Trigger authentication is handled upstream by the deployment
// environment.
type Server struct {
	runner  JobRunner
	checks  map[string]Check
	server  *http.Server
	running atomic.Bool
}

// NewServer creates a new health server.
func NewServer(runner JobRunner, checks map[string]Check, port int) *Server {
	mux := http.NewServeMux()
	s := &Server{
		runner: runner,
		checks: checks,
		server: &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: mux,
		},
	}

	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/jobs/daily/run", s.handleRunDaily)

	return s
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Stop stops the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Handler exposes the mux for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	details := make(map[string]string, len(s.checks))
	code := http.StatusOK

	for name, check := range s.checks {
		if err := check(r.Context()); err != nil {
			status = "critical"
			code = http.StatusServiceUnavailable
			details[name] = err.Error()
		} else {
			details[name] = "ok"
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status": status,
		"checks": details,
	})
}

// handleRunDaily runs the digest job synchronously and returns its
// terminal RetryResult. Overlapping triggers are rejected: loggers are
// per-execution and the job must not run concurrently with itself.
func (s *Server) handleRunDaily(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if !s.running.CompareAndSwap(false, true) {
		http.Error(w, "job already running", http.StatusConflict)
		return
	}
	defer s.running.Store(false)

	result, err := s.runner.TriggerDaily(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if result.Failed() {
		w.WriteHeader(http.StatusInternalServerError)
	}
	_ = json.NewEncoder(w).Encode(result)
}
