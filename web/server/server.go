package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/df07/sphere-pathtracer/pkg/config"
	"github.com/df07/sphere-pathtracer/pkg/scene"
)

// Request limits
const (
	MaxImageSize       = 2000
	MaxSamplesPerPixel = 10000
	MaxPasses          = 10000
)

// Server handles web requests for the progressive path tracer
type Server struct {
	config  *config.Config
	logger  zerolog.Logger
	router  *mux.Router
	handler http.Handler
}

// NewServer creates a new web server. Render requests start from the render
// settings in cfg and may override some of them per request.
func NewServer(cfg *config.Config, logger zerolog.Logger) *Server {
	s := &Server{
		config: cfg,
		logger: logger.With().Str("component", "server").Logger(),
		router: mux.NewRouter(),
	}
	s.routes()

	// Access log lines go through zerolog without a level
	accessLog := s.logger.With().Str("component", "access").Logger()
	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodOptions}),
	)
	s.handler = handlers.CombinedLoggingHandler(accessLog, cors(s.router))
	return s
}

func (s *Server) routes() {
	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	api.HandleFunc("/scenes", s.handleScenes).Methods(http.MethodGet)
	api.HandleFunc("/render", s.handleRender).Methods(http.MethodGet)
	api.HandleFunc("/inspect", s.handleInspect).Methods(http.MethodGet)
}

// Handler returns the HTTP handler serving every route, wrapped with CORS
// and access logging
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.config.Server.Port),
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", srv.Addr).Msgf("starting web server on http://localhost%s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return errors.Wrap(err, "web server failed")
	case <-ctx.Done():
	}

	s.logger.Info().Msg("shutting down web server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "web server shutdown failed")
	}
	return nil
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleScenes lists the built-in scenes and the scene files on disk
func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	response, err := scene.ListAllScenes(s.config.Server.ScenesDir)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list scenes")
		s.writeError(w, http.StatusInternalServerError, "failed to list scenes")
		return
	}
	s.writeJSON(w, http.StatusOK, response)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn().Err(err).Msg("failed to write response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, errors.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, errors.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// parseInt64Param parses a 64-bit integer parameter without range limits
func parseInt64Param(values url.Values, key string, defaultValue int64) (int64, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return 0, errors.Errorf("invalid %s: %s", key, value)
		}
		return parsed, nil
	}
	return defaultValue, nil
}
