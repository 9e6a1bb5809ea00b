// Package server exposes the dashboard pipeline over HTTP. Every request
// carries its own upload; nothing is kept between requests.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/KaramelBytes/sensordash-cli/internal/logging"
	"github.com/KaramelBytes/sensordash-cli/internal/parser"
	"github.com/KaramelBytes/sensordash-cli/internal/render"
)

// Options configures a Server.
type Options struct {
	// MaxUploadBytes caps the request body. Zero means 32 MiB.
	MaxUploadBytes int64
	Ingest         parser.Options
	// Defaults fill the render parameters missing from the query string.
	Defaults render.Params
}

// DefaultOptions returns options matching the built-in configuration.
func DefaultOptions() Options {
	return Options{
		MaxUploadBytes: 32 << 20,
		Ingest:         parser.DefaultOptions(),
		Defaults:       render.DefaultParams(),
	}
}

// Server is the HTTP front end.
type Server struct {
	opt    Options
	log    *logging.Logger
	router *chi.Mux
}

// New builds the router.
func New(opt Options, log *logging.Logger) *Server {
	if opt.MaxUploadBytes <= 0 {
		opt.MaxUploadBytes = 32 << 20
	}
	if log == nil {
		log = logging.Discard()
	}
	s := &Server{opt: opt, log: log, router: chi.NewRouter()}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)

	s.router.Get("/healthz", s.handleHealth)
	s.router.Route("/api", func(r chi.Router) {
		r.Post("/render", s.handleRender)
		r.Post("/export", s.handleExport)
		r.Post("/report", s.handleReport)
	})
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler { return s.router }

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.log.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.With("request_id", middleware.GetReqID(r.Context())).
			Debug("%s %s -> %d (%d bytes, %s)", r.Method, r.URL.Path, ww.Status(), ww.BytesWritten(), time.Since(start))
	})
}
