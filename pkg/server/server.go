// Package server provides the HTTP API for submitting applications,
// resolving reviews, and querying the audit log.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"nexus-hq/arbiter/pkg/audit"
	"nexus-hq/arbiter/pkg/config"
	"nexus-hq/arbiter/pkg/review"
	"nexus-hq/arbiter/pkg/telemetry/health"
	"nexus-hq/arbiter/pkg/telemetry/metrics"
	"nexus-hq/arbiter/pkg/workflow"
)

// Server is the HTTP API server for the decision service.
type Server struct {
	config       *config.ServerConfig
	pipeline     *workflow.Pipeline
	auditStorage audit.Storage
	queue        review.Queue
	checker      *health.Checker
	collector    *metrics.Collector
	metricsCfg   *config.MetricsConfig

	httpServer   *http.Server
	shutdownChan chan struct{}
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
	logger       *slog.Logger
}

// NewServer creates an API server. The metrics collector may be nil when
// metrics are disabled.
func NewServer(cfg *config.ServerConfig, pipeline *workflow.Pipeline, auditStorage audit.Storage, queue review.Queue, collector *metrics.Collector, metricsCfg *config.MetricsConfig) *Server {
	s := &Server{
		config:       cfg,
		pipeline:     pipeline,
		auditStorage: auditStorage,
		queue:        queue,
		checker:      health.New(0),
		collector:    collector,
		metricsCfg:   metricsCfg,
		shutdownChan: make(chan struct{}),
		logger:       slog.Default().With("component", "server"),
	}

	s.checker.Register("audit_storage", func(ctx context.Context) error {
		_, err := auditStorage.Count(ctx, &audit.Query{Limit: 1})
		return err
	})
	s.checker.Register("review_queue", func(ctx context.Context) error {
		_, err := queue.Len(ctx)
		return err
	})

	return s
}

// Start starts the HTTP server and blocks until shutdown, either from a
// cancelled context, an interrupt signal, or a Shutdown call.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.mu.Unlock()

	s.httpServer = &http.Server{
		Addr:         s.config.ListenAddress,
		Handler:      s.Handler(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting api server", "address", s.config.ListenAddress)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-ctx.Done():
		s.logger.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case sig := <-sigChan:
		s.logger.Info("received shutdown signal", "signal", sig.String())
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	case <-s.shutdownChan:
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully stops the server, waiting up to the configured
// shutdown timeout for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.isRunning {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		s.logger.Info("initiating graceful shutdown", "timeout", s.config.ShutdownTimeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
		defer cancel()

		if s.httpServer != nil {
			if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
				s.logger.Error("error during server shutdown", "error", err)
				shutdownErr = fmt.Errorf("server shutdown error: %w", err)
			}
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		s.logger.Info("api server stopped")
	})

	return shutdownErr
}

// IsRunning reports whether the server is accepting requests.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Handler returns the configured HTTP handler, exposed for tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /v1/applications", s.handleSubmit)
	mux.HandleFunc("GET /v1/review", s.handlePending)
	mux.HandleFunc("POST /v1/review/{id}/resolve", s.handleResolve)
	mux.HandleFunc("GET /v1/audit", s.handleAuditQuery)
	mux.HandleFunc("GET /health", s.checker.LivenessHandler())
	mux.HandleFunc("GET /ready", s.checker.ReadinessHandler())

	if s.collector != nil && s.metricsCfg != nil && s.metricsCfg.Enabled {
		mux.Handle("GET /metrics", s.collector.Handler())
	}

	var handler http.Handler = mux
	handler = LoggingMiddleware(handler)
	handler = RequestIDMiddleware(handler)
	handler = RecoveryMiddleware(handler)
	return handler
}
