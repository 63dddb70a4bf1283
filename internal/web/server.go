// Package web serves the conversion API over HTTP.
package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/JonMunkholm/csvcell/internal/config"
	"github.com/JonMunkholm/csvcell/internal/core"
	"github.com/JonMunkholm/csvcell/internal/pgsink"
	mw "github.com/JonMunkholm/csvcell/internal/web/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP server for the conversion API.
type Server struct {
	cfg     *config.Config
	format  *core.FormatContext
	sink    *pgsink.Sink
	limiter *convertLimiter
	router  *chi.Mux
	server  *http.Server
}

// NewServer creates a Server. sink may be nil, in which case the copy
// endpoint answers 503.
func NewServer(cfg *config.Config, sink *pgsink.Sink) (*Server, error) {
	format, err := cfg.Convert.FormatContext()
	if err != nil {
		return nil, fmt.Errorf("default format context: %w", err)
	}

	s := &Server{
		cfg:     cfg,
		format:  format,
		sink:    sink,
		limiter: newConvertLimiter(cfg.Convert.MaxConcurrent, cfg.Convert.MaxWaitTime),
		router:  chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s, nil
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(mw.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(mw.Logger)
	s.router.Use(middleware.Recoverer)
	if s.cfg.Server.RequestTimeout > 0 {
		s.router.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))
	}
	s.router.Use(securityHeaders)

	if s.cfg.Rate.Enabled {
		limiter := newRateLimiter(s.cfg.Rate.RequestsPerMinute, time.Minute)
		s.router.Use(limiter.middleware)
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/kinds", s.handleKinds)
		r.Get("/locales", s.handleLocales)
		r.Post("/convert", s.handleConvert)

		// Writing to the database may require an API key.
		r.With(mw.APIKeyAuth(s.cfg.Security)).Post("/convert/{table}", s.handleConvertToTable)
	})
}

// Start begins listening for HTTP requests. It returns http.ErrServerClosed
// after Shutdown.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}
	return s.server.ListenAndServe()
}

// Shutdown waits for running conversions, then stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	drainErr := s.limiter.drain(ctx)
	if s.server == nil {
		return drainErr
	}
	return errors.Join(drainErr, s.server.Shutdown(ctx))
}

// ActiveConversions returns the number of conversions in progress.
func (s *Server) ActiveConversions() int {
	return s.limiter.active()
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Cache-Control", "no-store")
		w.Header().Set("Referrer-Policy", "no-referrer")
		next.ServeHTTP(w, r)
	})
}
