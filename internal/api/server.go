package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/speaker-registry/internal/config"
	"github.com/ignite/speaker-registry/internal/service/registration"
)

// Server represents the API server
type Server struct {
	config   config.ServerConfig
	handlers *Handlers
	router   *chi.Mux
	server   *http.Server
}

// NewServer creates a new API server around the registration service and a
// reader for lookups.
func NewServer(cfg config.ServerConfig, svc *registration.Service, reader registration.Reader, storageType string) *Server {
	handlers := NewHandlers(svc, reader, storageType)
	router := SetupRoutes(handlers, cfg.CORSOrigins)
	return &Server{
		config:   cfg,
		handlers: handlers,
		router:   router,
	}
}

// AddHealthCheck registers a dependency check reported by GET /health.
func (s *Server) AddHealthCheck(name string, check HealthCheck) {
	s.handlers.health.Add(name, check)
}

// ListenAndServe starts the HTTP server
func (s *Server) ListenAndServe(addr string) error {
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Handler returns the HTTP handler for testing
func (s *Server) Handler() http.Handler {
	return s.router
}
