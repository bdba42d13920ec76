// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"time"

	"github.com/ManuGH/eosgen/internal/cache"
	"github.com/ManuGH/eosgen/internal/profile"
	"github.com/ManuGH/eosgen/internal/telemetry"
	"github.com/ManuGH/eosgen/internal/viability"
)

// Defaults returns the configuration used when neither file nor
// environment set a value.
func Defaults() AppConfig {
	return AppConfig{
		DataDir:    "data",
		LogLevel:   "info",
		LogService: "eosgen",
		API: APIConfig{
			ListenAddr:      ":8088",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			MaxPageSize:     500,
			RateLimit:       RateLimit{Requests: 120, Window: time.Minute},
			StudyRateLimit:  6,
		},
		Cache: CacheConfig{
			Backend:         cache.BackendMemory,
			TTL:             10 * time.Minute,
			CleanupInterval: time.Minute,
		},
		Telemetry: TelemetryConfig{
			Exporter:     telemetry.ExporterGRPC,
			Endpoint:     "localhost:4317",
			SamplingRate: 1.0,
			Environment:  "production",
		},
		Study: StudyConfig{
			Points:          100,
			Workers:         4,
			SurfaceFraction: profile.DefaultSurfaceFraction,
		},
		Checks: viability.DefaultTolerances(),
	}
}
