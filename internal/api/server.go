// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package api serves the dataset explorer: catalogue queries, ad-hoc
// evaluation of analytic solutions, study submission and table browsing.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/ManuGH/eosgen/internal/api/middleware"
	"github.com/ManuGH/eosgen/internal/cache"
	"github.com/ManuGH/eosgen/internal/catalog"
	"github.com/ManuGH/eosgen/internal/config"
	"github.com/ManuGH/eosgen/internal/dataset"
	"github.com/ManuGH/eosgen/internal/health"
	xglog "github.com/ManuGH/eosgen/internal/log"
	"github.com/ManuGH/eosgen/internal/study"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Catalog is the read side of the catalogue.
type Catalog interface {
	GetSolution(ctx context.Context, id string) (*catalog.Record, error)
	ListSolutions(ctx context.Context, f catalog.Filter, limit, offset int) ([]catalog.Record, int, error)
	GetStudy(ctx context.Context, id string) (*catalog.Study, error)
	ListStudies(ctx context.Context, limit int) ([]catalog.Study, error)
}

// StudyRunner starts background studies.
type StudyRunner interface {
	Start(ctx context.Context, cases []study.Case) (string, <-chan study.Result, error)
	Running() bool
}

// Deps are the collaborators of a Server.
type Deps struct {
	Config  config.AppConfig
	Catalog Catalog
	Index   *dataset.Index
	Runner  StudyRunner
	Cache   cache.Cache
	Health  *health.Manager
}

// Server is the explorer HTTP service.
type Server struct {
	cfg     config.AppConfig
	catalog Catalog
	index   *dataset.Index
	runner  StudyRunner
	evals   *cache.Loader
	health  *health.Manager

	// baseCtx outlives requests; studies started over HTTP run on it.
	baseCtx context.Context
	cancel  context.CancelFunc
}

// New builds a server. A nil cache disables evaluation caching.
func New(deps Deps) *Server {
	c := deps.Cache
	if c == nil {
		c = cache.NewNoOpCache()
	}
	hm := deps.Health
	if hm == nil {
		hm = health.NewManager(deps.Config.Version)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		cfg:     deps.Config,
		catalog: deps.Catalog,
		index:   deps.Index,
		runner:  deps.Runner,
		evals:   cache.NewLoader(c, deps.Config.Cache.TTL),
		health:  hm,
		baseCtx: ctx,
		cancel:  cancel,
	}
}

// Handler returns the routed handler with the middleware stack applied.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	stack := middleware.StackConfig{
		EnableMetrics: true,
		EnableLogging: true,
	}
	if s.cfg.Telemetry.Enabled {
		stack.TracingService = s.cfg.LogService
	}
	middleware.ApplyStack(r, stack)

	r.Get("/healthz", s.health.ServeHealth)
	r.Get("/readyz", s.health.ServeReady)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		if rl := s.cfg.API.RateLimit; rl.Requests > 0 {
			r.Use(middleware.RateLimit(middleware.RateLimitConfig{RequestLimit: rl.Requests, WindowSize: rl.Window}))
		}
		r.Get("/kinds", s.handleKinds)
		r.Post("/evaluate", s.handleEvaluate)

		r.Get("/solutions", s.handleListSolutions)
		r.Get("/solutions/{id}", s.handleGetSolution)
		r.Get("/solutions/{id}/table", s.handleSolutionTable)

		r.Get("/studies", s.handleListStudies)
		r.Get("/studies/{id}", s.handleGetStudy)
		r.With(middleware.RateLimit(middleware.RateLimitConfig{
			RequestLimit: max(1, s.cfg.API.StudyRateLimit),
			WindowSize:   s.cfg.API.RateLimit.Window,
		})).Post("/studies", s.handleStartStudy)

		r.Get("/files", s.handleListFiles)
		r.Get("/files/{name}", s.handleGetFile)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, errors.New("not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
	})
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	logger := xglog.WithComponentFromContext(ctx, "api")

	srv := &http.Server{
		Addr:              s.cfg.API.ListenAddr,
		Handler:           s.Handler(),
		ReadTimeout:       s.cfg.API.ReadTimeout,
		ReadHeaderTimeout: s.cfg.API.ReadTimeout,
		WriteTimeout:      s.cfg.API.WriteTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().
			Str(xglog.FieldEvent, "api.listening").
			Str("addr", s.cfg.API.ListenAddr).
			Msg("explorer API listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.cancel()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen %s: %w", s.cfg.API.ListenAddr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout())
	defer cancel()
	logger.Info().Str(xglog.FieldEvent, "api.shutdown").Msg("shutting down explorer API")
	s.cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// Close cancels studies started over HTTP.
func (s *Server) Close() { s.cancel() }

func (s *Server) shutdownTimeout() time.Duration {
	if s.cfg.API.ShutdownTimeout > 0 {
		return s.cfg.API.ShutdownTimeout
	}
	return 15 * time.Second
}
