// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/ManuGH/eosgen/internal/persistence/sqlite"
	"github.com/spf13/cobra"
)

func newDBCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Catalogue maintenance",
	}

	var mode string
	verify := &cobra.Command{
		Use:   "verify",
		Short: "Run SQLite integrity checks on the catalogue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if mode != sqlite.ModeQuick && mode != sqlite.ModeFull {
				return fmt.Errorf("invalid mode %q (use %s or %s)", mode, sqlite.ModeQuick, sqlite.ModeFull)
			}
			cfg, err := root.load(cmd)
			if err != nil {
				return err
			}
			path := cfg.CatalogPath()
			if _, err := os.Stat(path); err != nil {
				return fmt.Errorf("catalogue %s: %w", path, err)
			}

			issues, err := sqlite.VerifyIntegrity(cmd.Context(), path, mode)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(issues) == 0 {
				_, err = fmt.Fprintf(out, "%s: ok (%s)\n", path, mode)
				return err
			}
			for _, issue := range issues {
				_, _ = fmt.Fprintf(out, "%s: %s\n", path, issue)
			}
			return &exitError{code: 1, err: errors.New("catalogue integrity check failed")}
		},
	}
	verify.Flags().StringVar(&mode, "mode", sqlite.ModeQuick, "check mode (quick or full)")

	cmd.AddCommand(verify)
	return cmd
}
