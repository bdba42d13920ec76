// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package main

import (
	"fmt"
	"path/filepath"

	"github.com/ManuGH/eosgen/internal/dataset"
	"github.com/ManuGH/eosgen/internal/report"
	"github.com/ManuGH/eosgen/internal/viability"
	"github.com/spf13/cobra"
)

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check FILE...",
		Short: "Run the table-only checks on CSV files",
		Long: `Read each CSV table (eosgen output or any file with r, rho and p columns)
and report the checks that need no analytic solution: positivity,
monotonic decrease, boundary pressure and causality when cs2 is present.

Exits with status 1 when a file cannot be read or fails a required check.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			failed := 0
			for i, path := range args {
				if i > 0 {
					_, _ = fmt.Fprintln(out)
				}
				parsed, err := dataset.ReadTableFile(path)
				if err != nil {
					_, _ = fmt.Fprintf(out, "%s: %v\n", path, err)
					failed++
					continue
				}
				checks := viability.CheckRows(parsed.Rows, parsed.HasColumn("cs2"))
				if err := report.File(out, filepath.Base(path), parsed, checks); err != nil {
					return err
				}
				for _, c := range checks {
					if c.Required && !c.Passed {
						failed++
						break
					}
				}
			}
			if failed > 0 {
				return &exitError{code: 1, err: fmt.Errorf("%d of %d files failed", failed, len(args))}
			}
			return nil
		},
	}
}
