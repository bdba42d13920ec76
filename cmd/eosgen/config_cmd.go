// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package main

import (
	"fmt"

	"github.com/ManuGH/eosgen/internal/config"
	"github.com/spf13/cobra"
)

func newConfigCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the effective configuration",
	}

	validate := &cobra.Command{
		Use:   "validate",
		Short: "Load and validate the configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.load(cmd)
			if err != nil {
				return err
			}
			cases, err := cfg.Study.Plan()
			if err != nil {
				return err
			}
			path, source := root.effectiveConfigPath()
			if path == "" {
				path = "-"
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "configuration OK (source %s, path %s, %d study cases)\n", source, path, len(cases))
			return err
		},
	}

	var defaults bool
	dump := &cobra.Command{
		Use:   "dump",
		Short: "Print the effective configuration as YAML with secrets masked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Defaults()
			if !defaults {
				var err error
				if cfg, err = root.load(cmd); err != nil {
					return err
				}
			}
			return config.Dump(cmd.OutOrStdout(), cfg)
		},
	}
	dump.Flags().BoolVar(&defaults, "defaults", false, "print built-in defaults, ignoring file and environment")

	cmd.AddCommand(validate, dump)
	return cmd
}
