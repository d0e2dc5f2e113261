package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/nestauk/createch/internal/match"
	"github.com/nestauk/createch/internal/metrics"
	"github.com/nestauk/createch/internal/web/handlers"
	"github.com/nestauk/createch/internal/web/middleware"
)

// Server represents the results browser
type Server struct {
	config     Config
	rows       []match.Row
	metrics    *metrics.Metrics
	httpServer *http.Server
	router     *mux.Router
}

// NewServer creates a read-only server over a finished match table
func NewServer(config Config, rows []match.Row, m *metrics.Metrics) *Server {
	if m == nil {
		m = metrics.New()
	}
	server := &Server{
		config:  config,
		rows:    rows,
		metrics: m,
	}

	// Setup routes
	server.setupRoutes()

	server.httpServer = &http.Server{
		Addr:         config.Addr(),
		Handler:      server.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return server
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	s.router = mux.NewRouter()

	matches := handlers.NewMatchesHandler(s.rows)

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/matches", matches.ListMatches).Methods("GET")
	api.HandleFunc("/matches/{id}", matches.GetMatch).Methods("GET")
	api.HandleFunc("/stats", matches.GetStats).Methods("GET")

	s.router.Handle("/metrics", s.metrics.Handler()).Methods("GET")

	s.router.Use(middleware.RequestLogging(s.metrics))
}

// Handler returns the routed handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.httpServer.Addr).Int("matches", len(s.rows)).Msg("starting results browser")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	log.Info().Msg("server stopped")
	return nil
}
