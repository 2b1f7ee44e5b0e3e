// Package status serves the long run status endpoint. Long runs process
// files indefinitely, so operators get a small HTTP surface to check that
// the run is alive and how far it has come.
package status

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/CaioVictorMota/whitedwarf/internal/run"
)

// Reporter exposes the current state of an ongoing run.
type Reporter interface {
	Snapshot() run.Report
}

// Server serves run status over HTTP.
type Server struct {
	addr     string
	reporter Reporter
	srv      *http.Server
}

// New creates a status server bound to addr.
func New(addr string, reporter Reporter) *Server {
	s := &Server{
		addr:     addr,
		reporter: reporter,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/healthz", s.handleHealthz)
	r.Get("/report", s.handleReport)

	s.srv = &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
	return s
}

// Start serves until the context is canceled, then shuts down gracefully.
// It blocks; callers run it in its own goroutine.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.srv.Shutdown(shutdownCtx)
	}
}

// Handler returns the HTTP handler, exposed for tests.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok\n"))
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.reporter.Snapshot()); err != nil {
		http.Error(w, "encoding report", http.StatusInternalServerError)
	}
}
