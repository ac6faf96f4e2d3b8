// Package api wires the HTTP surface of the adapter.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	handler "github.com/andreas2301/genericllmadapter/internal/api/handler/api"
	"github.com/andreas2301/genericllmadapter/internal/api/middleware"
	"github.com/andreas2301/genericllmadapter/internal/metrics"
	"github.com/andreas2301/genericllmadapter/internal/storage/archive"
	"go.uber.org/zap"
)

// Server represents the HTTP server for the adapter.
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
	mux        *http.ServeMux
}

// Config holds server configuration.
type Config struct {
	Host        string
	Port        int
	MetricsPath string
}

// Deps holds the collaborators exposed over HTTP.
type Deps struct {
	Users    handler.UserService
	Tokens   middleware.TokenResolver
	Chat     handler.ChatService
	Prober   handler.Prober
	Archive  archive.Storage
	Registry *metrics.Registry
}

// NewServer creates a new HTTP server.
func NewServer(cfg Config, deps Deps, logger *zap.Logger) *Server {
	mux := http.NewServeMux()

	var root http.Handler = mux
	if deps.Registry != nil {
		root = deps.Registry.Middleware(mux)
	}

	s := &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Handler:      root,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 5 * time.Minute, // turns wait on upstream inference
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
		mux:    mux,
	}

	s.setupRoutes(cfg, deps)
	return s
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes(cfg Config, deps Deps) {
	auth := middleware.BearerAuth(deps.Tokens)

	users := handler.NewUsersHandler(deps.Users)
	sessions := handler.NewSessionsHandler(deps.Chat, deps.Archive)
	chat := handler.NewChatHandler(deps.Chat)
	providers := handler.NewProvidersHandler(deps.Prober)

	s.mux.HandleFunc("POST /api/v1/users", users.Register)
	s.mux.Handle("PUT /api/v1/users/keys", auth(http.HandlerFunc(users.UpdateKeys)))

	s.mux.Handle("POST /api/v1/sessions", auth(http.HandlerFunc(sessions.Create)))
	s.mux.Handle("GET /api/v1/sessions", auth(http.HandlerFunc(sessions.List)))
	s.mux.Handle("GET /api/v1/sessions/{id}/messages", auth(http.HandlerFunc(sessions.History)))
	s.mux.Handle("POST /api/v1/sessions/{id}/messages", auth(http.HandlerFunc(chat.Send)))
	s.mux.Handle("POST /api/v1/sessions/{id}/export", auth(http.HandlerFunc(sessions.Export)))

	s.mux.HandleFunc("GET /api/v1/providers", providers.List)
	s.mux.HandleFunc("GET /api/v1/health", s.handleHealth)

	if deps.Registry != nil && cfg.MetricsPath != "" {
		s.mux.Handle("GET "+cfg.MetricsPath, deps.Registry.Handler())
	}
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
