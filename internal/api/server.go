package api

import (
	"context"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ignite/cubo-visits/internal/config"
	"github.com/ignite/cubo-visits/internal/pkg/telemetry"
	"github.com/ignite/cubo-visits/internal/session"
)

// Archiver copies a generated export somewhere durable and returns its key.
type Archiver interface {
	Archive(ctx context.Context, name string, body []byte, contentType string) (string, error)
}

// Pinger is implemented by session stores backed by a remote service.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the collaborators the server is wired with. Metrics and Archiver
// may be nil. Redis, when set, backs the per-session ingestion lock so
// replicas sharing a session store also share the lock.
type Deps struct {
	Store    session.Store
	Metrics  *telemetry.Metrics
	Archiver Archiver
	Redis    *redis.Client
}

// Server represents the API server
type Server struct {
	config   config.ServerConfig
	handler  http.Handler
	handlers *Handlers
	server   *http.Server
}

// NewServer creates a new API server
func NewServer(cfg *config.Config, deps Deps) *Server {
	handlers := NewHandlers(cfg, deps)

	var pinger Pinger
	if p, ok := deps.Store.(Pinger); ok {
		pinger = p
	}
	health := NewHealthChecker(pinger, deps.Archiver != nil)

	return &Server{
		config:   cfg.Server,
		handler:  SetupRoutes(handlers, health, deps.Metrics, cfg.Server.AllowedOrigins),
		handlers: handlers,
	}
}

// ListenAndServe starts the HTTP server
func (s *Server) ListenAndServe(addr string) error {
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.handler,
		// Uploads are bounded by upload.max_mb; these only guard slow clients.
		ReadTimeout:       2 * time.Minute,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      2 * time.Minute,
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
	return s.handler
}
