// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/ManuGH/eosgen/internal/dataset"
	"github.com/ManuGH/eosgen/internal/report"
	"github.com/ManuGH/eosgen/internal/solution"
	"github.com/ManuGH/eosgen/internal/study"
	"github.com/spf13/cobra"
)

type analyzeOptions struct {
	kind   string
	params []string
	points int
	write  bool
	json   bool
}

func newAnalyzeCmd(root *rootOptions) *cobra.Command {
	o := &analyzeOptions{}
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Assess a single solution",
		Example: `  eosgen analyze --kind tolman-iv --param A=1 --param R=1.5
  eosgen analyze --kind schwarzschild-interior --param R=2,rb=1 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.load(cmd)
			if err != nil {
				return err
			}
			params, err := solution.ParseParams(o.params)
			if err != nil {
				return err
			}
			points := cfg.Study.Points
			if o.points > 0 {
				points = o.points
			}

			c := study.Case{Kind: solution.Kind(o.kind), Params: params}
			an, err := study.Analyze(c, points, cfg.Study.ProfileOptions(), cfg.Checks)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if o.write {
				path := filepath.Join(cfg.DataDir, dataset.FileName(c.Kind, an.Solution.Params()))
				if err := dataset.WriteTable(cmd.Context(), path, an.Table); err != nil {
					return err
				}
				defer func() { _, _ = fmt.Fprintf(out, "wrote %s\n", path) }()
			}
			if o.json {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(an.Report)
			}
			return report.Viability(out, c.Kind, an.Solution.Params(), an.Report)
		},
	}
	cmd.Flags().StringVarP(&o.kind, "kind", "k", string(solution.KindTolmanIV), "solution kind")
	cmd.Flags().StringArrayVarP(&o.params, "param", "p", nil, "parameter assignment name=value (repeatable, comma separated)")
	cmd.Flags().IntVar(&o.points, "points", 0, "samples (default from config)")
	cmd.Flags().BoolVar(&o.write, "write", false, "write the table into the data dir")
	cmd.Flags().BoolVar(&o.json, "json", false, "print the report as JSON")
	return cmd
}
