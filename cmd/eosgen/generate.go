// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/ManuGH/eosgen/internal/catalog"
	"github.com/ManuGH/eosgen/internal/config"
	"github.com/ManuGH/eosgen/internal/dataset"
	xglog "github.com/ManuGH/eosgen/internal/log"
	"github.com/ManuGH/eosgen/internal/report"
	"github.com/ManuGH/eosgen/internal/study"
	"github.com/spf13/cobra"
)

type generateOptions struct {
	points    int
	workers   int
	noCatalog bool
}

func newGenerateCmd(root *rootOptions) *cobra.Command {
	o := &generateOptions{}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Run the configured study and write the dataset",
		Long: `Evaluate every configured case (or the built-in Tolman IV set when none is
configured), write one CSV table per valid solution together with summary.json
and dataset.csv, and record the study in the catalogue.

Exits with status 1 when no case produced a table.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.load(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("points") {
				cfg.Study.Points = o.points
			}
			if cmd.Flags().Changed("workers") {
				cfg.Study.Workers = o.workers
			}
			if err := config.Validate(cfg); err != nil {
				return err
			}
			return runGenerate(cmd, cfg, o.noCatalog)
		},
	}
	cmd.Flags().IntVar(&o.points, "points", 0, "samples per table (overrides config)")
	cmd.Flags().IntVar(&o.workers, "workers", 0, "cases evaluated concurrently (overrides config)")
	cmd.Flags().BoolVar(&o.noCatalog, "no-catalog", false, "do not record the study in the catalogue")
	return cmd
}

func runGenerate(cmd *cobra.Command, cfg config.AppConfig, noCatalog bool) error {
	ctx := cmd.Context()
	logger := xglog.WithComponent("generate")

	cases, err := cfg.Study.Plan()
	if err != nil {
		return err
	}

	var store study.Catalog
	if !noCatalog {
		s, err := catalog.Open(ctx, cfg.CatalogPath())
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()
		store = s
	}

	logger.Info().
		Str(xglog.FieldEvent, "generate.start").
		Int("cases", len(cases)).
		Int("points", cfg.Study.Points).
		Str("data_dir", cfg.DataDir).
		Msg("generating dataset")

	res, err := study.NewRunner(store, cfg.StudyOptions()).Run(ctx, cases)
	if res.StudyID == "" {
		return err
	}

	out := cmd.OutOrStdout()
	if rerr := report.Summary(out, res.Summary); rerr != nil {
		return rerr
	}
	_, _ = fmt.Fprintf(out, "\n%d acceptable, summary in %s, index in %s\n",
		res.Acceptable,
		filepath.Join(cfg.DataDir, dataset.SummaryFile),
		filepath.Join(cfg.DataDir, dataset.IndexFile))

	if err != nil {
		return err
	}
	if res.Summary.Successful == 0 {
		return &exitError{code: 1, err: errors.New("no case produced a table")}
	}
	return nil
}
