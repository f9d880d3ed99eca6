// Package server exposes the audit pipeline, review sessions and report
// rendering as a small JSON API.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/ppiankov/claimaudit/internal/cache"
	"github.com/ppiankov/claimaudit/internal/model"
	"github.com/ppiankov/claimaudit/internal/report"
	"github.com/ppiankov/claimaudit/internal/worker"
)

const shutdownTimeout = 5 * time.Second

// Server serves analyses generated by an Auditor. Every analysis lives in
// the store together with its review session until its TTL runs out.
type Server struct {
	cfg      model.ServerConfig
	defaults model.GeneratorConfig
	auditor  worker.Auditor
	store    cache.Store
	limiter  *worker.Limiter // nil = unlimited
	renderer *report.Renderer
	logger   *zap.Logger
}

// New creates a server backed by an in-memory session store
func New(cfg *model.Config, auditor worker.Auditor, logger *zap.Logger) *Server {
	return NewWithStore(cfg, auditor, cache.NewMemoryStore(cfg.Server.SessionTTL, cfg.Server.CleanupInterval), logger)
}

// NewWithStore creates a server using the given session store
func NewWithStore(cfg *model.Config, auditor worker.Auditor, store cache.Store, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		cfg:      cfg.Server,
		defaults: cfg.Generator,
		auditor:  auditor,
		store:    store,
		renderer: report.NewRenderer(),
		logger:   logger,
	}
	if cfg.RateLimiting.RequestsPerSecond > 0 {
		s.limiter = worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize)
	}
	return s
}

// Handler returns the routed handler with logging, recovery and rate
// limiting applied
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)

	mux.HandleFunc("POST /api/analyses", s.handleCreateAnalysis)
	mux.HandleFunc("GET /api/analyses/{id}", s.handleGetAnalysis)
	mux.HandleFunc("DELETE /api/analyses/{id}", s.handleDeleteAnalysis)
	mux.HandleFunc("GET /api/analyses/{id}/claims", s.handleListClaims)
	mux.HandleFunc("GET /api/analyses/{id}/claims/{claimID}", s.handleGetClaim)
	mux.HandleFunc("PUT /api/analyses/{id}/claims/{claimID}/review", s.handleReviewClaim)
	mux.HandleFunc("PUT /api/analyses/{id}/feedback", s.handleFeedback)
	mux.HandleFunc("GET /api/analyses/{id}/report", s.handleRenderReport)

	return s.withLogging(s.withRecovery(s.withRateLimit(mux)))
}

// ListenAndServe serves until ctx is canceled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", s.cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
