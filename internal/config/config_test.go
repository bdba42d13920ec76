// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ManuGH/eosgen/internal/cache"
	"github.com/ManuGH/eosgen/internal/solution"
	"github.com/ManuGH/eosgen/internal/study"
	"github.com/ManuGH/eosgen/internal/validate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "eosgen.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv(EnvDataDir, t.TempDir())

	cfg, err := NewLoader("", "v1.2.3").Load()
	require.NoError(t, err)

	assert.Equal(t, "v1.2.3", cfg.Version)
	assert.True(t, filepath.IsAbs(cfg.DataDir))
	assert.Equal(t, ":8088", cfg.API.ListenAddr)
	assert.Equal(t, cache.BackendMemory, cfg.Cache.Backend)
	assert.Equal(t, 100, cfg.Study.Points)
	assert.Equal(t, filepath.Join(cfg.DataDir, DefaultCatalogFile), cfg.CatalogPath())
	assert.Equal(t, filepath.Join(cfg.DataDir, DefaultBadgerDir), cfg.CacheSettings().BadgerDir)

	cases, err := cfg.Study.Plan()
	require.NoError(t, err)
	assert.Equal(t, study.DefaultCases(), cases)
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, `
dataDir: `+dir+`
logLevel: debug
api:
  listenAddr: "127.0.0.1:9000"
cache:
  backend: redis
  redisAddr: "localhost:6379"
  ttl: 30s
study:
  points: 50
  cases:
    - kind: tolman-iv
      params: {A: 1, R: 1.5}
  grids:
    - kind: schwarzschild-interior
      axes:
        R: {values: [2, 3]}
        rb: {from: 0.5, to: 1, steps: 2}
checks:
  tov: 0.001
`)
	t.Setenv(EnvPoints, "200")
	t.Setenv(EnvRedisPassword, "hunter2")

	l := NewLoader(path, "dev")
	cfg, err := l.Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "127.0.0.1:9000", cfg.API.ListenAddr)
	assert.Equal(t, 30*time.Second, cfg.Cache.TTL)
	assert.Equal(t, 200, cfg.Study.Points, "env overrides file")
	assert.Equal(t, "hunter2", cfg.Cache.RedisPassword)
	assert.Equal(t, 0.001, cfg.Checks.TOV)
	assert.Equal(t, 1e-9, cfg.Checks.Boundary, "unset keys keep defaults")
	assert.Contains(t, l.ConsumedEnvKeys, EnvPoints)

	cases, err := cfg.Study.Plan()
	require.NoError(t, err)
	require.Len(t, cases, 5)
	assert.Equal(t, solution.KindTolmanIV, cases[0].Kind)
	assert.Equal(t, map[string]float64{"R": 2, "rb": 0.5}, cases[1].Params)
	assert.Equal(t, map[string]float64{"R": 3, "rb": 1}, cases[4].Params)
}

func TestLoad_UnknownField(t *testing.T) {
	path := writeConfig(t, "dataDir: /tmp\nbogus: 1\n")
	_, err := NewLoader(path, "").Load()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownConfigField)
}

func TestLoad_MultipleDocuments(t *testing.T) {
	path := writeConfig(t, "logLevel: info\n---\nlogLevel: debug\n")
	_, err := NewLoader(path, "").Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "multiple documents")
}

func TestLoad_UnsupportedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eosgen.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o600))
	_, err := NewLoader(path, "").Load()
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestLoad_EmptyFile(t *testing.T) {
	t.Setenv(EnvDataDir, t.TempDir())
	cfg, err := NewLoader(writeConfig(t, ""), "").Load()
	require.NoError(t, err)
	assert.Equal(t, Defaults().API, cfg.API)
}

func TestValidate(t *testing.T) {
	base := Defaults()
	base.DataDir = t.TempDir()
	require.NoError(t, Validate(base))

	tests := []struct {
		name   string
		mutate func(*AppConfig)
		field  string
	}{
		{"bad level", func(c *AppConfig) { c.LogLevel = "loud" }, "logLevel"},
		{"bad listen", func(c *AppConfig) { c.API.ListenAddr = "8088" }, "api.listenAddr"},
		{"bad backend", func(c *AppConfig) { c.Cache.Backend = "disk" }, "cache.backend"},
		{"redis without addr", func(c *AppConfig) { c.Cache.Backend = cache.BackendRedis }, "cache.redisAddr"},
		{"sampling out of range", func(c *AppConfig) {
			c.Telemetry.Enabled = true
			c.Telemetry.SamplingRate = 2
		}, "telemetry.samplingRate"},
		{"too few points", func(c *AppConfig) { c.Study.Points = 1 }, "study.points"},
		{"surface fraction", func(c *AppConfig) { c.Study.SurfaceFraction = 1.5 }, "study.surfaceFraction"},
		{"unknown kind", func(c *AppConfig) {
			c.Study.Cases = []study.Case{{Kind: "kerr", Params: map[string]float64{"a": 1}}}
		}, "study.cases[0].kind"},
		{"missing param", func(c *AppConfig) {
			c.Study.Cases = []study.Case{{Kind: solution.KindTolmanIV, Params: map[string]float64{"A": 1}}}
		}, "study.cases[0].params"},
		{"bad grid", func(c *AppConfig) {
			c.Study.Grids = []study.GridSpec{{Kind: solution.KindTolmanIV, Axes: map[string]study.Axis{"A": {Values: []float64{1}}}}}
		}, "study.grids[0]"},
		{"zero tolerance", func(c *AppConfig) { c.Checks.TOV = 0 }, "checks.tov"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			err := Validate(cfg)
			require.Error(t, err)

			var verr validate.ValidationError
			require.True(t, errors.As(err, &verr))
			var fields []string
			for _, e := range verr.Errors() {
				fields = append(fields, e.Field)
			}
			assert.Contains(t, fields, tt.field)
		})
	}
}

func TestDump_RoundTripsAndMasks(t *testing.T) {
	cfg := Defaults()
	cfg.DataDir = t.TempDir()
	cfg.Cache.RedisPassword = "hunter2"

	var buf bytes.Buffer
	require.NoError(t, Dump(&buf, cfg))
	assert.NotContains(t, buf.String(), "hunter2")
	assert.Contains(t, buf.String(), "redisPassword:")
	assert.Contains(t, buf.String(), Masked)

	path := filepath.Join(t.TempDir(), "dump.yaml")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))
	reloaded, err := NewLoader(path, "").Load()
	require.NoError(t, err)
	assert.Equal(t, cfg.API, reloaded.API)
	assert.Equal(t, cfg.Study.Points, reloaded.Study.Points)
}

func TestUnknownEnvKeys(t *testing.T) {
	t.Setenv(EnvDataDir, t.TempDir())
	t.Setenv("EOSGEN_TYPO_LEVEL", "x")

	l := NewLoader("", "")
	_, err := l.Load()
	require.NoError(t, err)
	assert.Contains(t, l.UnknownEnvKeys(), "EOSGEN_TYPO_LEVEL")
	assert.NotContains(t, l.UnknownEnvKeys(), EnvDataDir)
}
