// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ManuGH/eosgen/internal/config"
	xglog "github.com/ManuGH/eosgen/internal/log"
	"github.com/ManuGH/eosgen/internal/version"
	"github.com/spf13/cobra"
)

// defaultConfigName is picked up from the data dir when --config is unset.
const defaultConfigName = "config.yaml"

type rootOptions struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	o := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "eosgen",
		Short: "Generate equation-of-state datasets from analytic stellar interiors",
		Long: `eosgen samples exact interior solutions of Einstein's equations (Tolman IV,
Schwarzschild interior), checks their physical acceptability and writes
(r, rho, p) tables suitable for training equation-of-state models.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			level := o.logLevel
			if level == "" {
				level = "info"
			}
			xglog.Configure(xglog.Config{
				Level:   level,
				Output:  cmd.ErrOrStderr(),
				Service: "eosgen",
				Version: version.Version,
			})
		},
	}
	cmd.PersistentFlags().StringVarP(&o.configPath, "config", "c", "", "path to config file (YAML)")
	cmd.PersistentFlags().StringVar(&o.logLevel, "log-level", "", "log level (debug, info, warn, error); overrides config")

	cmd.AddCommand(
		newGenerateCmd(o),
		newServeCmd(o),
		newAnalyzeCmd(o),
		newCheckCmd(),
		newConfigCmd(o),
		newDBCmd(o),
		newVersionCmd(),
	)
	return cmd
}

// effectiveConfigPath returns --config, or config.yaml in the data dir when
// it exists.
func (o *rootOptions) effectiveConfigPath() (string, string) {
	if p := strings.TrimSpace(o.configPath); p != "" {
		return p, "file"
	}
	dataDir := strings.TrimSpace(config.ParseString(config.EnvDataDir, config.Defaults().DataDir))
	auto := filepath.Join(dataDir, defaultConfigName)
	if _, err := os.Stat(auto); err == nil {
		return auto, "file(auto)"
	}
	return "", "env+defaults"
}

// load resolves the configuration (ENV > file > defaults) and reconfigures
// logging from it.
func (o *rootOptions) load(cmd *cobra.Command) (config.AppConfig, error) {
	path, source := o.effectiveConfigPath()
	loader := config.NewLoader(path, version.Version)
	cfg, err := loader.Load()
	if err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	xglog.Configure(xglog.Config{
		Level:   cfg.LogLevel,
		Output:  cmd.ErrOrStderr(),
		Service: cfg.LogService,
		Version: cfg.Version,
	})

	logger := xglog.WithComponent("cli")
	logger.Debug().
		Str(xglog.FieldEvent, "config.loaded").
		Str("source", source).
		Str(xglog.FieldPath, path).
		Str("data_dir", cfg.DataDir).
		Msg("configuration loaded")
	for _, key := range loader.UnknownEnvKeys() {
		logger.Warn().
			Str(xglog.FieldEvent, "config.unknown_env").
			Str("key", key).
			Msg("ignoring unknown environment variable")
	}
	return cfg, nil
}
