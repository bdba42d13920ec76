// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ManuGH/eosgen/internal/log"
	"github.com/rs/zerolog"
)

// EnvPrefix prefixes every environment variable read by the loader.
const EnvPrefix = "EOSGEN_"

// ParseString reads a string from environment variable or returns default value.
// It logs the source (environment or default) for observability.
func ParseString(key, defaultValue string) string {
	return parseStringWithLogger(log.WithComponent("config"), key, defaultValue)
}

func parseStringWithLogger(logger zerolog.Logger, key, defaultValue string) string {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		logDefault(logger, key, defaultValue, exists)
		return defaultValue
	}
	if isSensitiveKey(key) {
		logger.Debug().
			Str("key", key).
			Str("source", "environment").
			Bool("sensitive", true).
			Msg("using environment variable")
		return value
	}
	logger.Debug().
		Str("key", key).
		Str("value", value).
		Str("source", "environment").
		Msg("using environment variable")
	return value
}

// ParseInt reads an integer from environment variable or returns default value.
// It validates the input and falls back to default on parse errors.
func ParseInt(key string, defaultValue int) int {
	return parseTyped(key, defaultValue, strconv.Atoi)
}

// ParseBool reads a boolean (true/false/1/0/yes/no) from the environment.
func ParseBool(key string, defaultValue bool) bool {
	return parseTyped(key, defaultValue, func(s string) (bool, error) {
		switch strings.ToLower(s) {
		case "yes", "on":
			return true, nil
		case "no", "off":
			return false, nil
		}
		return strconv.ParseBool(s)
	})
}

// ParseFloat reads a float from the environment.
func ParseFloat(key string, defaultValue float64) float64 {
	return parseTyped(key, defaultValue, func(s string) (float64, error) {
		return strconv.ParseFloat(s, 64)
	})
}

// ParseDuration reads a Go duration string (e.g. "30s") from the environment.
func ParseDuration(key string, defaultValue time.Duration) time.Duration {
	return parseTyped(key, defaultValue, time.ParseDuration)
}

func parseTyped[T any](key string, defaultValue T, parse func(string) (T, error)) T {
	logger := log.WithComponent("config")
	raw, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(raw) == "" {
		logDefault(logger, key, defaultValue, exists)
		return defaultValue
	}
	v, err := parse(strings.TrimSpace(raw))
	if err != nil {
		logger.Warn().
			Err(err).
			Str("key", key).
			Str("value", raw).
			Str("default", fmt.Sprint(defaultValue)).
			Msg("invalid environment variable, using default")
		return defaultValue
	}
	logger.Debug().
		Str("key", key).
		Str("value", fmt.Sprint(v)).
		Str("source", "environment").
		Msg("using environment variable")
	return v
}

func logDefault(logger zerolog.Logger, key string, defaultValue any, exists bool) {
	msg := "using default value"
	if exists {
		msg = "using default value (environment variable is empty)"
	}
	logger.Debug().
		Str("key", key).
		Str("default", fmt.Sprint(defaultValue)).
		Str("source", "default").
		Msg(msg)
}

func isSensitiveKey(key string) bool {
	k := strings.ToLower(key)
	return strings.Contains(k, "password") || strings.Contains(k, "token") || strings.Contains(k, "secret")
}
