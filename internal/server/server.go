// Package server implements narrative's HTTP API (§5): submitting a
// document for analysis, and resolving anchors and selections against the
// result.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/jackzampolin/narrative/internal/api"
	"github.com/jackzampolin/narrative/internal/config"
	"github.com/jackzampolin/narrative/internal/docstore"
	"github.com/jackzampolin/narrative/internal/jobs"
	"github.com/jackzampolin/narrative/internal/metrics"
	"github.com/jackzampolin/narrative/internal/server/endpoints"
	"github.com/jackzampolin/narrative/internal/svcctx"
)

// Config holds server configuration.
type Config struct {
	Host string
	Port string

	ConfigManager *config.Manager
	Logger        *slog.Logger
}

// Server is narrative's HTTP server. It has no external process to
// manage (no container lifecycle): the worker pool and doc store both
// live in-process.
type Server struct {
	httpServer *http.Server

	jobManager *jobs.Manager
	docStore   *docstore.DocStore
	recorder   *metrics.Recorder
	metricsQry *metrics.Query
	configMgr  *config.Manager
	logger     *slog.Logger

	endpointRegistry *api.Registry

	mu      sync.RWMutex
	running bool
}

// New creates a new Server with the given configuration.
func New(cfg Config) (*Server, error) {
	if cfg.Host == "" {
		cfg.Host = "127.0.0.1"
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	workerCount := 4
	if cfg.ConfigManager != nil {
		if wc := cfg.ConfigManager.Get().WorkerCount; wc > 0 {
			workerCount = wc
		}
	}

	store := metrics.NewStore()
	s := &Server{
		jobManager: jobs.NewManager(workerCount, cfg.Logger),
		docStore:   docstore.New(),
		recorder:   metrics.NewRecorder(store),
		metricsQry: metrics.NewQuery(store),
		configMgr:  cfg.ConfigManager,
		logger:     cfg.Logger,
	}

	s.endpointRegistry = api.NewRegistry()
	for _, ep := range endpoints.All(endpoints.Deps{
		JobManager:    s.jobManager,
		DocStore:      s.docStore,
		Recorder:      s.recorder,
		Metrics:       s.metricsQry,
		ConfigManager: s.configMgr,
	}) {
		s.endpointRegistry.Register(ep)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	s.endpointRegistry.RegisterRoutes(mux, s.requireInit)

	s.httpServer = &http.Server{
		Addr:         net.JoinHostPort(cfg.Host, cfg.Port),
		Handler:      s.withLogging(s.withServices(mux)),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	return s, nil
}

// Start starts the server and its worker pool. It blocks until ctx is
// cancelled or the server fails to serve.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("server already running")
	}
	s.running = true
	s.mu.Unlock()

	s.jobManager.Start(ctx)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	api.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) requireInit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.jobManager == nil {
			api.WriteError(w, http.StatusServiceUnavailable, "job manager not initialized")
			return
		}
		next(w, r)
	}
}

func (s *Server) withServices(next http.Handler) http.Handler {
	services := &svcctx.Services{
		JobManager:   s.jobManager,
		ConfigMgr:    s.configMgr,
		Logger:       s.logger,
		MetricsQuery: s.metricsQry,
		Recorder:     s.recorder,
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := svcctx.WithServices(r.Context(), services)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request", "method", r.Method, "path", r.URL.Path, "elapsed", time.Since(start))
	})
}
