// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package main

import (
	"context"
	"time"

	"github.com/ManuGH/eosgen/internal/api"
	"github.com/ManuGH/eosgen/internal/cache"
	"github.com/ManuGH/eosgen/internal/catalog"
	"github.com/ManuGH/eosgen/internal/config"
	"github.com/ManuGH/eosgen/internal/dataset"
	"github.com/ManuGH/eosgen/internal/health"
	xglog "github.com/ManuGH/eosgen/internal/log"
	"github.com/ManuGH/eosgen/internal/study"
	"github.com/ManuGH/eosgen/internal/telemetry"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dataset explorer API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.load(cmd)
			if err != nil {
				return err
			}
			if listen != "" {
				cfg.API.ListenAddr = listen
				if err := config.Validate(cfg); err != nil {
					return err
				}
			}
			return runServe(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "listen address (overrides config)")
	return cmd
}

func runServe(ctx context.Context, cfg config.AppConfig) error {
	logger := xglog.WithComponent("serve")

	tp, err := telemetry.NewProvider(ctx, cfg.TelemetrySettings())
	if err != nil {
		return err
	}
	defer func() {
		if err := tp.Shutdown(context.WithoutCancel(ctx)); err != nil {
			logger.Warn().Err(err).Msg("telemetry shutdown")
		}
	}()

	store, err := catalog.Open(ctx, cfg.CatalogPath())
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	index, err := dataset.NewIndex(cfg.DataDir)
	if err != nil {
		return err
	}

	evalCache, err := cache.New(cfg.CacheSettings(), xglog.WithComponent("cache"))
	if err != nil {
		return err
	}
	defer func() { _ = evalCache.Close() }()

	runner := study.NewRunner(store, cfg.StudyOptions())

	hm := health.NewManager(cfg.Version)
	hm.RegisterChecker(health.NewPingChecker("catalog", store.Ping))
	hm.RegisterChecker(health.NewDirChecker("data_dir", cfg.DataDir))
	hm.RegisterChecker(health.NewLastStudyChecker(lastStudy(store)))
	if rc, ok := evalCache.(*cache.RedisCache); ok {
		hm.RegisterChecker(health.NewPingChecker("redis", rc.HealthCheck))
	}

	srv := api.New(api.Deps{
		Config:  cfg,
		Catalog: store,
		Index:   index,
		Runner:  runner,
		Cache:   evalCache,
		Health:  hm,
	})
	defer srv.Close()

	logger.Info().
		Str(xglog.FieldEvent, "startup").
		Str("addr", cfg.API.ListenAddr).
		Str("data_dir", cfg.DataDir).
		Str("catalog", cfg.CatalogPath()).
		Str("cache", cfg.CacheSettings().Backend).
		Bool("telemetry", cfg.Telemetry.Enabled).
		Msg("starting eosgen explorer")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return index.Watch(gctx) })
	g.Go(func() error { return srv.ListenAndServe(gctx) })
	err = g.Wait()

	srv.Close()
	runner.Wait()
	logger.Info().Str(xglog.FieldEvent, "shutdown.complete").Msg("explorer stopped")
	return err
}

// lastStudy reports the status of the most recent study for readiness.
func lastStudy(store *catalog.Store) func(context.Context) (string, time.Time, error) {
	return func(ctx context.Context) (string, time.Time, error) {
		studies, err := store.ListStudies(ctx, 1)
		if err != nil || len(studies) == 0 {
			return "", time.Time{}, err
		}
		st := studies[0]
		var finished time.Time
		if st.FinishedAt != nil {
			finished = *st.FinishedAt
		}
		return string(st.Status), finished, nil
	}
}
