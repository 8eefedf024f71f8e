// Package server provides the HTTP API for MedFinder.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/medfinder/medfinder/internal/availability"
	"github.com/medfinder/medfinder/internal/catalog"
	"github.com/medfinder/medfinder/internal/config"
	"github.com/medfinder/medfinder/internal/interactions"
	"github.com/medfinder/medfinder/internal/pipeline"
	"github.com/medfinder/medfinder/internal/suggest"
)

// Server is the HTTP server for the MedFinder API.
type Server struct {
	orchestrator *pipeline.Orchestrator
	catalog      *catalog.Catalog
	suggester    *suggest.Suggester
	availability *availability.Checker
	interactions *interactions.Checker
	config       *config.ServerConfig
	logger       *zap.Logger
	server       *http.Server
	startedAt    time.Time
}

// NewServer creates a server with the given dependencies. suggester,
// availability, and interactions may be nil; their endpoints then answer
// 501 Not Implemented.
func NewServer(
	orchestrator *pipeline.Orchestrator,
	cat *catalog.Catalog,
	suggester *suggest.Suggester,
	avail *availability.Checker,
	inter *interactions.Checker,
	cfg *config.ServerConfig,
	logger *zap.Logger,
) *Server {
	return &Server{
		orchestrator: orchestrator,
		catalog:      cat,
		suggester:    suggester,
		availability: avail,
		interactions: inter,
		config:       cfg,
		logger:       logger,
		startedAt:    time.Now(),
	}
}

// Router builds the chi router with all routes and middleware.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Post("/api/v1/symptom-search", s.handleSymptomSearch)
	r.Post("/api/v1/search/composition", s.handleCompositionSearch)
	r.Get("/api/v1/medicines/similar", s.handleSimilarMedicines)
	r.Post("/api/v1/availability", s.handleAvailability)
	r.Post("/api/v1/interactions", s.handleInteractions)
	r.Post("/api/v1/suggestions", s.handleSuggestions)
	r.Get("/health", s.handleHealth)
	r.Get("/status", s.handleStatus)
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Router(),
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

func (s *Server) uptime() time.Duration {
	return time.Since(s.startedAt)
}
