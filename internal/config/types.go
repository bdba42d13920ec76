// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package config loads eosgen settings. Precedence is ENV > file > defaults.
package config

import (
	"path/filepath"
	"time"

	"github.com/ManuGH/eosgen/internal/cache"
	"github.com/ManuGH/eosgen/internal/profile"
	"github.com/ManuGH/eosgen/internal/study"
	"github.com/ManuGH/eosgen/internal/telemetry"
	"github.com/ManuGH/eosgen/internal/viability"
)

// AppConfig is the effective configuration.
type AppConfig struct {
	Version    string `yaml:"-"`
	DataDir    string `yaml:"dataDir"`
	LogLevel   string `yaml:"logLevel"`
	LogService string `yaml:"logService"`

	API       APIConfig            `yaml:"api"`
	Catalog   CatalogConfig        `yaml:"catalog"`
	Cache     CacheConfig          `yaml:"cache"`
	Telemetry TelemetryConfig      `yaml:"telemetry"`
	Study     StudyConfig          `yaml:"study"`
	Checks    viability.Tolerances `yaml:"checks"`
}

// APIConfig configures the explorer HTTP service.
type APIConfig struct {
	ListenAddr      string        `yaml:"listenAddr"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
	MaxPageSize     int           `yaml:"maxPageSize"`
	RateLimit       RateLimit     `yaml:"rateLimit"`
	// StudyRateLimit bounds POST /studies per client and window.
	StudyRateLimit int `yaml:"studyRateLimit"`
}

// RateLimit is a per-client request budget.
type RateLimit struct {
	Requests int           `yaml:"requests"`
	Window   time.Duration `yaml:"window"`
}

// CatalogConfig locates the SQLite catalogue. An empty path means
// <dataDir>/catalog.db.
type CatalogConfig struct {
	Path string `yaml:"path"`
}

// CacheConfig selects the evaluation cache backend.
type CacheConfig struct {
	Backend         string        `yaml:"backend"`
	TTL             time.Duration `yaml:"ttl"`
	CleanupInterval time.Duration `yaml:"cleanupInterval"`
	RedisAddr       string        `yaml:"redisAddr"`
	RedisPassword   string        `yaml:"redisPassword"`
	RedisDB         int           `yaml:"redisDB"`
	BadgerDir       string        `yaml:"badgerDir"`
}

// TelemetryConfig configures OpenTelemetry tracing.
type TelemetryConfig struct {
	Enabled      bool    `yaml:"enabled"`
	Exporter     string  `yaml:"exporter"`
	Endpoint     string  `yaml:"endpoint"`
	SamplingRate float64 `yaml:"samplingRate"`
	Environment  string  `yaml:"environment"`
}

// StudyConfig describes the parameter study run by generate and the API.
type StudyConfig struct {
	Points            int              `yaml:"points"`
	Workers           int              `yaml:"workers"`
	SurfaceFraction   float64          `yaml:"surfaceFraction"`
	IncludeUnphysical bool             `yaml:"includeUnphysical"`
	Cases             []study.Case     `yaml:"cases,omitempty"`
	Grids             []study.GridSpec `yaml:"grids,omitempty"`
}

// Default file and directory names below DataDir.
const (
	DefaultCatalogFile = "catalog.db"
	DefaultBadgerDir   = "cache"
)

// CatalogPath returns the resolved catalogue path.
func (c AppConfig) CatalogPath() string {
	if c.Catalog.Path != "" {
		return c.Catalog.Path
	}
	return filepath.Join(c.DataDir, DefaultCatalogFile)
}

// CacheSettings converts the cache section for cache.New.
func (c AppConfig) CacheSettings() cache.Config {
	dir := c.Cache.BadgerDir
	if dir == "" {
		dir = filepath.Join(c.DataDir, DefaultBadgerDir)
	}
	return cache.Config{
		Backend:         c.Cache.Backend,
		CleanupInterval: c.Cache.CleanupInterval,
		Redis: cache.RedisConfig{
			Addr:     c.Cache.RedisAddr,
			Password: c.Cache.RedisPassword,
			DB:       c.Cache.RedisDB,
		},
		BadgerDir: dir,
	}
}

// TelemetrySettings converts the telemetry section for telemetry.NewProvider.
func (c AppConfig) TelemetrySettings() telemetry.Config {
	return telemetry.Config{
		Enabled:        c.Telemetry.Enabled,
		ServiceName:    c.LogService,
		ServiceVersion: c.Version,
		Environment:    c.Telemetry.Environment,
		ExporterType:   c.Telemetry.Exporter,
		Endpoint:       c.Telemetry.Endpoint,
		SamplingRate:   c.Telemetry.SamplingRate,
	}
}

// StudyOptions returns runner options writing tables into the data dir.
func (c AppConfig) StudyOptions() study.Options {
	return study.Options{
		OutputDir:  c.DataDir,
		Points:     c.Study.Points,
		Workers:    c.Study.Workers,
		Profile:    c.Study.ProfileOptions(),
		Tolerances: c.Checks,
	}
}

// ProfileOptions returns the table generation options.
func (s StudyConfig) ProfileOptions() profile.Options {
	return profile.Options{
		SurfaceFraction:   s.SurfaceFraction,
		IncludeUnphysical: s.IncludeUnphysical,
	}
}

// Plan expands the configured cases and grids. Without either, the
// reference Tolman IV study is used.
func (s StudyConfig) Plan() ([]study.Case, error) {
	if len(s.Cases) == 0 && len(s.Grids) == 0 {
		return study.DefaultCases(), nil
	}
	return study.Plan(s.Cases, s.Grids)
}
