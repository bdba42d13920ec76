// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"fmt"
	"time"

	"github.com/ManuGH/eosgen/internal/cache"
	"github.com/ManuGH/eosgen/internal/solution"
	"github.com/ManuGH/eosgen/internal/telemetry"
	"github.com/ManuGH/eosgen/internal/validate"
	"github.com/rs/zerolog"
)

// MaxPoints bounds the rows of a single table.
const MaxPoints = 1_000_000

// Validate checks the effective configuration. It creates DataDir when
// missing.
func Validate(cfg AppConfig) error {
	v := validate.New()

	v.Directory("dataDir", cfg.DataDir, false)
	if _, err := zerolog.ParseLevel(cfg.LogLevel); err != nil || cfg.LogLevel == "" {
		v.AddError("logLevel", "must be one of trace, debug, info, warn, error, fatal, panic", cfg.LogLevel)
	}
	v.NotEmpty("logService", cfg.LogService)

	validateAPI(v, cfg.API)
	validateCache(v, cfg.Cache)
	validateTelemetry(v, cfg.Telemetry)
	validateStudy(v, cfg.Study)

	v.Positive("checks.monotonic", cfg.Checks.Monotonic)
	v.Positive("checks.boundary", cfg.Checks.Boundary)
	v.Positive("checks.tov", cfg.Checks.TOV)
	v.Positive("checks.eosPercent", cfg.Checks.EoSPercent)

	return v.Err()
}

func validateAPI(v *validate.Validator, api APIConfig) {
	v.ListenAddr("api.listenAddr", api.ListenAddr)
	v.Range("api.maxPageSize", api.MaxPageSize, 1, 10_000)
	v.Range("api.rateLimit.requests", api.RateLimit.Requests, 1, 1_000_000)
	positiveDuration(v, "api.rateLimit.window", api.RateLimit.Window)
	v.Range("api.studyRateLimit", api.StudyRateLimit, 1, 10_000)
	positiveDuration(v, "api.readTimeout", api.ReadTimeout)
	positiveDuration(v, "api.writeTimeout", api.WriteTimeout)
	positiveDuration(v, "api.shutdownTimeout", api.ShutdownTimeout)
}

func validateCache(v *validate.Validator, c CacheConfig) {
	v.OneOf("cache.backend", c.Backend, []string{cache.BackendMemory, cache.BackendRedis, cache.BackendBadger, cache.BackendNone})
	if c.Backend == cache.BackendNone {
		return
	}
	positiveDuration(v, "cache.ttl", c.TTL)
	if c.Backend == cache.BackendRedis {
		v.NotEmpty("cache.redisAddr", c.RedisAddr)
		v.Range("cache.redisDB", c.RedisDB, 0, 15)
	}
}

func validateTelemetry(v *validate.Validator, t TelemetryConfig) {
	if !t.Enabled {
		return
	}
	v.OneOf("telemetry.exporter", t.Exporter, []string{telemetry.ExporterGRPC, telemetry.ExporterHTTP})
	v.NotEmpty("telemetry.endpoint", t.Endpoint)
	v.FloatRange("telemetry.samplingRate", t.SamplingRate, 0, 1)
}

func validateStudy(v *validate.Validator, s StudyConfig) {
	v.Range("study.points", s.Points, 2, MaxPoints)
	v.Range("study.workers", s.Workers, 1, 256)
	if !(s.SurfaceFraction > 0 && s.SurfaceFraction <= 1) {
		v.AddError("study.surfaceFraction", fmt.Sprintf("must be in (0, 1], got %g", s.SurfaceFraction), s.SurfaceFraction)
	}
	for i, c := range s.Cases {
		field := fmt.Sprintf("study.cases[%d]", i)
		spec, ok := solution.Lookup(c.Kind)
		if !ok {
			v.AddError(field+".kind", "unknown solution kind", c.Kind)
			continue
		}
		for _, name := range spec.Params {
			if _, ok := c.Params[name]; !ok {
				v.AddError(field+".params", "missing parameter "+name, c.Params)
			}
		}
		for name := range c.Params {
			if !containsString(spec.Params, name) {
				v.AddError(field+".params", "unknown parameter "+name, c.Params)
			}
		}
	}
	for i, g := range s.Grids {
		if _, err := g.Expand(); err != nil {
			v.AddError(fmt.Sprintf("study.grids[%d]", i), err.Error(), g.Kind)
		}
	}
}

func positiveDuration(v *validate.Validator, field string, d time.Duration) {
	if d <= 0 {
		v.AddError(field, "must be positive", d)
	}
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
