// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import "errors"

var (
	// ErrUnknownConfigField is returned when the YAML file contains a key
	// that AppConfig does not declare.
	ErrUnknownConfigField = errors.New("unknown config field")
	// ErrUnsupportedFormat is returned for config files that are not YAML.
	ErrUnsupportedFormat = errors.New("unsupported config format")
)
