// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ManuGH/eosgen/internal/resilience"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const redisKeyPrefix = "eosgen:"

// Consecutive Redis failures before the cache is bypassed, and how long
// before it is probed again.
const (
	breakerThreshold = 3
	breakerReset     = 30 * time.Second
)

// RedisConfig holds Redis connection configuration.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// RedisCache is a Redis-backed Cache.
type RedisCache struct {
	client  *redis.Client
	logger  zerolog.Logger
	stats   counters
	breaker *resilience.CircuitBreaker
}

// NewRedisCache connects to Redis and verifies the connection.
func NewRedisCache(cfg RedisConfig, logger zerolog.Logger) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	logger.Info().
		Str("addr", cfg.Addr).
		Int("db", cfg.DB).
		Msg("connected to Redis cache")

	return &RedisCache{
		client:  client,
		logger:  logger,
		breaker: resilience.NewCircuitBreaker("redis_cache", breakerThreshold, breakerReset),
	}, nil
}

// Get retrieves a value. While the breaker is open every lookup misses
// without touching Redis.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	var (
		val   []byte
		found bool
	)
	err := c.breaker.Execute(func() error {
		v, err := c.client.Get(ctx, redisKeyPrefix+key).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		if err != nil {
			return callerErr(ctx, err)
		}
		val, found = v, true
		return nil
	})
	if err != nil && !errors.Is(err, resilience.ErrCircuitOpen) {
		c.logger.Warn().Err(err).Str("key", key).Msg("redis get failed")
	}
	if !found {
		c.stats.misses.Add(1)
		return nil, false
	}
	c.stats.hits.Add(1)
	return val, true
}

// Set stores a value with TTL.
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	err := c.breaker.Execute(func() error {
		return callerErr(ctx, c.client.Set(ctx, redisKeyPrefix+key, value, ttl).Err())
	})
	if err != nil {
		if !errors.Is(err, resilience.ErrCircuitOpen) {
			c.logger.Warn().Err(err).Str("key", key).Msg("redis set failed")
		}
		return
	}
	c.stats.sets.Add(1)
}

// callerErr reports a cancelled caller as context.Canceled so the breaker
// does not count it against Redis.
func callerErr(ctx context.Context, err error) error {
	if err != nil && errors.Is(ctx.Err(), context.Canceled) {
		return ctx.Err()
	}
	return err
}

// Delete removes a value.
func (c *RedisCache) Delete(ctx context.Context, key string) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := c.client.Del(ctx, redisKeyPrefix+key).Err(); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("redis delete failed")
	}
}

// Stats returns cache statistics. CurrentSize is the size of the Redis DB.
func (c *RedisCache) Stats() Stats {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	size, err := c.client.DBSize(ctx).Result()
	if err != nil {
		c.logger.Warn().Err(err).Msg("redis dbsize failed")
		size = 0
	}
	return c.stats.snapshot(int(size))
}

// Close closes the Redis connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// BreakerState reports whether lookups currently reach Redis.
func (c *RedisCache) BreakerState() resilience.State { return c.breaker.State() }

// HealthCheck checks if Redis is available.
func (c *RedisCache) HealthCheck(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
