// Package server exposes the pipeline trigger surface and the snapshot
// read API over HTTP.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"trendpulse/internal/config"
	"trendpulse/internal/logger"
	"trendpulse/internal/persistence"
	"trendpulse/internal/pipeline"
)

// Server represents the HTTP server.
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	db         persistence.Database
	pipe       *pipeline.Pipeline
	cronSecret string
	log        *slog.Logger
}

// New creates a new HTTP server instance.
func New(db persistence.Database, pipe *pipeline.Pipeline, cfg config.Server, cronSecret string) *Server {
	s := &Server{
		router:     chi.NewRouter(),
		db:         db,
		pipe:       pipe,
		cronSecret: cronSecret,
		log:        logger.Get(),
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		// A pipeline run owns the request for several minutes.
		WriteTimeout: 15 * time.Minute,
	}
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/pipeline/run", s.handleRunPipeline)
		r.Get("/snapshots/latest", s.handleLatestSnapshot)
		r.Get("/keywords/{keywordId}/sources", s.handleKeywordSources)
	})
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	s.log.Info("Starting HTTP server", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed to start: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Shutting down HTTP server gracefully...")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.log.Info("HTTP server stopped")
	return nil
}

// Router returns the chi router instance (useful for testing).
func (s *Server) Router() *chi.Mux {
	return s.router
}
