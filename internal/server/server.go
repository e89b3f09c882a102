// Package server exposes quiz sessions over HTTP.
//
// Every session owns its own engine, so players never affect each other.
// Besides the JSON API under /api/v1 the server answers Kubernetes-style
// health probes and serves Prometheus metrics, and it shuts down gracefully
// by failing readiness before draining connections.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/felixgeelhaar/scarepick/internal/health"
	"github.com/felixgeelhaar/scarepick/internal/library"
	"github.com/felixgeelhaar/scarepick/internal/log"
	"github.com/felixgeelhaar/scarepick/internal/metrics"
	"github.com/felixgeelhaar/scarepick/internal/telemetry"
)

// Config holds server configuration.
type Config struct {
	// Address is the listen address (e.g., ":8080", "0.0.0.0:8080")
	Address string

	// ShutdownTimeout bounds connection draining. Defaults to 30 seconds.
	ShutdownTimeout time.Duration

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// SessionTTL is how long an untouched session is kept.
	SessionTTL time.Duration

	// MaxSessions caps the number of sessions held at once.
	MaxSessions int

	// CORSOrigins lists the browser origins allowed to call the API.
	CORSOrigins []string

	// Version is reported by probes and the OpenAPI document.
	Version string
}

func (c *Config) applyDefaults() {
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = 30 * time.Second
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 10 * time.Second
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 10 * time.Second
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = 60 * time.Second
	}
	if c.SessionTTL == 0 {
		c.SessionTTL = 30 * time.Minute
	}
	if c.MaxSessions == 0 {
		c.MaxSessions = 10000
	}
	if len(c.CORSOrigins) == 0 {
		c.CORSOrigins = []string{"*"}
	}
}

// Deps are the collaborators the server is built from.
type Deps struct {
	// Library returns the snapshot new sessions start from.
	Library func() *library.Library
	Probes  *health.ProbeManager
	// Metrics and Gatherer must come from the same registry.
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	Logger   *log.Logger
}

// Server is the HTTP front end of the quiz.
type Server struct {
	httpServer      *http.Server
	probeManager    *health.ProbeManager
	sessions        *SessionStore
	logger          *log.Logger
	inShutdown      atomic.Bool
	shutdownTimeout time.Duration
}

// NewServer builds the router and the HTTP server. It fails when the
// embedded OpenAPI document does not validate.
func NewServer(cfg Config, deps Deps) (*Server, error) {
	cfg.applyDefaults()
	if deps.Library == nil {
		return nil, errors.New("server needs a library source")
	}
	if deps.Probes == nil {
		deps.Probes = health.NewProbeManager(cfg.Version)
	}
	if deps.Logger == nil {
		deps.Logger = log.DefaultLogger()
	}
	if deps.Metrics == nil {
		reg, m := metrics.NewRegistry()
		deps.Metrics, deps.Gatherer = m, reg
	}

	doc, err := LoadOpenAPI(context.Background())
	if err != nil {
		return nil, err
	}
	serveDoc, err := openAPIHandler(doc, cfg.Version)
	if err != nil {
		return nil, err
	}

	s := &Server{
		probeManager:    deps.Probes,
		sessions:        NewSessionStore(cfg.SessionTTL, cfg.MaxSessions, deps.Metrics),
		logger:          deps.Logger,
		shutdownTimeout: cfg.ShutdownTimeout,
	}
	api := NewAPI(s.sessions, deps.Library, deps.Metrics, deps.Logger)

	router := chi.NewRouter()
	router.Use(telemetry.HTTPMiddleware("scarepick"))
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(requestLogger(deps.Logger))
	router.Use(chimiddleware.Recoverer)
	router.Use(instrument(deps.Metrics))

	router.Get("/health/live", s.handleLiveness)
	router.Get("/health/ready", s.handleReadiness)
	router.Get("/health/startup", s.handleStartup)
	// Backward compatibility: /healthz maps to readiness
	router.Get("/healthz", s.handleReadiness)
	if deps.Gatherer != nil {
		router.Method(http.MethodGet, "/metrics", metrics.HandlerFor(deps.Gatherer))
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", "If-None-Match", "X-Request-ID"},
			ExposedHeaders: []string{"ETag", "Location", "X-Request-ID"},
			MaxAge:         300,
		}))
		r.Use(apiVersion)

		r.Post("/sessions", api.createSession)
		r.Get("/sessions/{id}", api.getSession)
		r.Delete("/sessions/{id}", api.deleteSession)
		r.Post("/sessions/{id}/select", api.selectOption)
		r.Post("/sessions/{id}/restart", api.restartSession)

		r.Get("/movies", api.listMovies)
		r.Get("/movies/{id}", api.getMovie)

		r.Get("/openapi.json", serveDoc)
	})

	s.httpServer = &http.Server{
		Addr:         cfg.Address,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return s, nil
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Sessions returns the session store.
func (s *Server) Sessions() *SessionStore {
	return s.sessions
}

// Start listens on the configured address and serves until shutdown.
// Returns http.ErrServerClosed after a graceful shutdown.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.httpServer.Addr, err)
	}
	return s.Serve(ln)
}

// Serve serves on ln until shutdown.
func (s *Server) Serve(ln net.Listener) error {
	s.probeManager.MarkInitialized()
	s.logger.Info("server listening", "address", ln.Addr().String())
	return s.httpServer.Serve(ln)
}

// Shutdown fails readiness, stops keep-alives and waits up to the shutdown
// timeout for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.inShutdown.Store(true)
	s.probeManager.MarkShutdown()
	s.httpServer.SetKeepAlivesEnabled(false)

	shutdownCtx, cancel := context.WithTimeout(ctx, s.shutdownTimeout)
	defer cancel()
	return s.httpServer.Shutdown(shutdownCtx)
}

// IsShuttingDown returns whether the server is shutting down.
func (s *Server) IsShuttingDown() bool {
	return s.inShutdown.Load()
}

func (s *Server) writeProbeResponse(w http.ResponseWriter, result *health.ProbeResult, unhealthyStatus int) {
	w.Header().Set("Content-Type", "application/json")
	if result.Status == health.StatusUnhealthy {
		w.WriteHeader(unhealthyStatus)
	} else {
		w.WriteHeader(http.StatusOK)
	}
	_ = json.NewEncoder(w).Encode(result)
}

// handleLiveness always answers 200, even while shutting down.
func (s *Server) handleLiveness(w http.ResponseWriter, r *http.Request) {
	s.writeProbeResponse(w, s.probeManager.CheckLiveness(r.Context()), http.StatusOK)
}

// handleReadiness answers 503 while shutting down or when a check is
// unhealthy. Degraded data (e.g. a missing root question) stays ready.
func (s *Server) handleReadiness(w http.ResponseWriter, r *http.Request) {
	s.writeProbeResponse(w, s.probeManager.CheckReadiness(r.Context()), http.StatusServiceUnavailable)
}

// handleStartup answers 503 until the server has started serving.
func (s *Server) handleStartup(w http.ResponseWriter, r *http.Request) {
	s.writeProbeResponse(w, s.probeManager.CheckStartup(r.Context()), http.StatusServiceUnavailable)
}
