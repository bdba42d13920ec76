// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"io"

	"gopkg.in/yaml.v3"
)

// Masked replaces secret values.
const Masked = "***"

// Redacted returns a copy of cfg safe for logs and dumps.
func Redacted(cfg AppConfig) AppConfig {
	if cfg.Cache.RedisPassword != "" {
		cfg.Cache.RedisPassword = Masked
	}
	return cfg
}

// Dump writes the redacted configuration as YAML. The output can be fed
// back to the loader.
func Dump(w io.Writer, cfg AppConfig) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(Redacted(cfg)); err != nil {
		return err
	}
	return enc.Close()
}
