package http

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/fwojciec/excerpt"
	"github.com/fwojciec/excerpt/extract"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// DefaultRequestTimeout bounds each API request.
const DefaultRequestTimeout = 60 * time.Second

// ShutdownTimeout bounds the graceful shutdown in Serve.
const ShutdownTimeout = 10 * time.Second

// Server serves the excerpt engine as a JSON API.
type Server struct {
	workflow *extract.Workflow
	content  excerpt.ContentService
	history  excerpt.ExcerptService
	metrics  http.Handler
	logger   *slog.Logger
	timeout  time.Duration
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithMetrics serves h at GET /metrics.
func WithMetrics(h http.Handler) ServerOption {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithRequestTimeout sets the per-request timeout.
func WithRequestTimeout(d time.Duration) ServerOption {
	return func(s *Server) {
		s.timeout = d
	}
}

// NewServer creates a Server running requests through workflow. The
// workflow's content service also answers locate and cache requests, and
// its history, when set, backs GET /api/history.
func NewServer(workflow *extract.Workflow, logger *slog.Logger, opts ...ServerOption) *Server {
	s := &Server{
		workflow: workflow,
		content:  workflow.Content,
		history:  workflow.History,
		logger:   logger,
		timeout:  DefaultRequestTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the API router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.timeout))

	r.Route("/api", func(r chi.Router) {
		r.Post("/extract", s.handleExtract)
		r.Post("/context", s.handleContext)
		r.Post("/explain", s.handleExplain)
		r.Post("/locate", s.handleLocate)
		r.Delete("/cache", s.handleClearCache)
		r.Get("/history", s.handleHistory)
		r.Get("/history/{id}", s.handleGetExcerpt)
	})
	r.Get("/health", s.handleHealth)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}
	return r
}

// Serve listens on addr and serves until ctx ends, then shuts down
// gracefully, waiting up to ShutdownTimeout for requests in flight.
func (s *Server) Serve(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("starting server", "addr", ln.Addr().String())

	errc := make(chan error, 1)
	go func() {
		errc <- srv.Serve(ln)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Info("server stopped")
	return nil
}
