// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

// Environment variables understood by the loader.
const (
	EnvDataDir           = EnvPrefix + "DATA"
	EnvLogLevel          = EnvPrefix + "LOG_LEVEL"
	EnvLogService        = EnvPrefix + "LOG_SERVICE"
	EnvListen            = EnvPrefix + "LISTEN"
	EnvRateLimit         = EnvPrefix + "RATE_LIMIT"
	EnvStudyRateLimit    = EnvPrefix + "STUDY_RATE_LIMIT"
	EnvCatalogPath       = EnvPrefix + "CATALOG_PATH"
	EnvCacheBackend      = EnvPrefix + "CACHE_BACKEND"
	EnvCacheTTL          = EnvPrefix + "CACHE_TTL"
	EnvRedisAddr         = EnvPrefix + "REDIS_ADDR"
	EnvRedisPassword     = EnvPrefix + "REDIS_PASSWORD"
	EnvRedisDB           = EnvPrefix + "REDIS_DB"
	EnvBadgerDir         = EnvPrefix + "BADGER_DIR"
	EnvTelemetryEnabled  = EnvPrefix + "TELEMETRY_ENABLED"
	EnvOTLPExporter      = EnvPrefix + "OTLP_EXPORTER"
	EnvOTLPEndpoint      = EnvPrefix + "OTLP_ENDPOINT"
	EnvTraceSampling     = EnvPrefix + "TRACE_SAMPLING"
	EnvPoints            = EnvPrefix + "POINTS"
	EnvWorkers           = EnvPrefix + "WORKERS"
	EnvSurfaceFraction   = EnvPrefix + "SURFACE_FRACTION"
	EnvIncludeUnphysical = EnvPrefix + "INCLUDE_UNPHYSICAL"
)

func (l *Loader) mergeEnv(cfg *AppConfig) {
	l.mergeEnvCore(cfg)
	l.mergeEnvAPI(cfg)
	l.mergeEnvCache(cfg)
	l.mergeEnvTelemetry(cfg)
	l.mergeEnvStudy(cfg)
}

func (l *Loader) mergeEnvCore(cfg *AppConfig) {
	cfg.DataDir = l.envString(EnvDataDir, cfg.DataDir)
	cfg.LogLevel = l.envString(EnvLogLevel, cfg.LogLevel)
	cfg.LogService = l.envString(EnvLogService, cfg.LogService)
	cfg.Catalog.Path = l.envString(EnvCatalogPath, cfg.Catalog.Path)
}

func (l *Loader) mergeEnvAPI(cfg *AppConfig) {
	cfg.API.ListenAddr = l.envString(EnvListen, cfg.API.ListenAddr)
	cfg.API.RateLimit.Requests = l.envInt(EnvRateLimit, cfg.API.RateLimit.Requests)
	cfg.API.StudyRateLimit = l.envInt(EnvStudyRateLimit, cfg.API.StudyRateLimit)
}

func (l *Loader) mergeEnvCache(cfg *AppConfig) {
	cfg.Cache.Backend = l.envString(EnvCacheBackend, cfg.Cache.Backend)
	cfg.Cache.TTL = l.envDuration(EnvCacheTTL, cfg.Cache.TTL)
	cfg.Cache.RedisAddr = l.envString(EnvRedisAddr, cfg.Cache.RedisAddr)
	cfg.Cache.RedisPassword = l.envString(EnvRedisPassword, cfg.Cache.RedisPassword)
	cfg.Cache.RedisDB = l.envInt(EnvRedisDB, cfg.Cache.RedisDB)
	cfg.Cache.BadgerDir = l.envString(EnvBadgerDir, cfg.Cache.BadgerDir)
}

func (l *Loader) mergeEnvTelemetry(cfg *AppConfig) {
	cfg.Telemetry.Enabled = l.envBool(EnvTelemetryEnabled, cfg.Telemetry.Enabled)
	cfg.Telemetry.Exporter = l.envString(EnvOTLPExporter, cfg.Telemetry.Exporter)
	cfg.Telemetry.Endpoint = l.envString(EnvOTLPEndpoint, cfg.Telemetry.Endpoint)
	cfg.Telemetry.SamplingRate = l.envFloat(EnvTraceSampling, cfg.Telemetry.SamplingRate)
}

func (l *Loader) mergeEnvStudy(cfg *AppConfig) {
	cfg.Study.Points = l.envInt(EnvPoints, cfg.Study.Points)
	cfg.Study.Workers = l.envInt(EnvWorkers, cfg.Study.Workers)
	cfg.Study.SurfaceFraction = l.envFloat(EnvSurfaceFraction, cfg.Study.SurfaceFraction)
	cfg.Study.IncludeUnphysical = l.envBool(EnvIncludeUnphysical, cfg.Study.IncludeUnphysical)
}
