// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/ManuGH/eosgen/internal/resilience"
	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMiniRedis(t *testing.T) (*miniredis.Miniredis, *RedisCache) {
	t.Helper()
	mr := miniredis.RunT(t)
	c, err := NewRedisCache(RedisConfig{Addr: mr.Addr()}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return mr, c
}

func TestRedisCache_SetGet(t *testing.T) {
	mr, c := setupMiniRedis(t)
	ctx := context.Background()

	c.Set(ctx, "report", []byte(`{"acceptable":true}`), 5*time.Minute)
	assert.True(t, mr.Exists(redisKeyPrefix+"report"))

	v, ok := c.Get(ctx, "report")
	require.True(t, ok)
	assert.JSONEq(t, `{"acceptable":true}`, string(v))

	_, ok = c.Get(ctx, "missing")
	assert.False(t, ok)

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Sets)
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, 1, stats.CurrentSize)
}

func TestRedisCache_Expiration(t *testing.T) {
	mr, c := setupMiniRedis(t)
	ctx := context.Background()

	c.Set(ctx, "k", []byte("v"), time.Second)
	mr.FastForward(2 * time.Second)
	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)
}

func TestRedisCache_Delete(t *testing.T) {
	mr, c := setupMiniRedis(t)
	ctx := context.Background()

	c.Set(ctx, "k", []byte("v"), time.Minute)
	c.Delete(ctx, "k")
	assert.False(t, mr.Exists(redisKeyPrefix+"k"))
}

func TestRedisCache_HealthCheck(t *testing.T) {
	mr, c := setupMiniRedis(t)
	require.NoError(t, c.HealthCheck(context.Background()))

	mr.Close()
	assert.Error(t, c.HealthCheck(context.Background()))
	// Failures degrade to misses.
	_, ok := c.Get(context.Background(), "k")
	assert.False(t, ok)
}

func TestRedisCache_BreakerBypassesRedis(t *testing.T) {
	mr, c := setupMiniRedis(t)
	ctx := context.Background()
	c.Set(ctx, "k", []byte("v"), time.Minute)
	require.Equal(t, resilience.StateClosed, c.BreakerState())

	mr.Close()
	for i := 0; i < breakerThreshold; i++ {
		_, ok := c.Get(ctx, "k")
		require.False(t, ok)
	}
	assert.Equal(t, resilience.StateOpen, c.BreakerState())

	// Open breaker: misses and dropped writes, no errors surface.
	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)
	c.Set(ctx, "k2", []byte("v"), time.Minute)
	assert.Equal(t, int64(1), c.stats.sets.Load())
}

func TestRedisCache_CancelledRequestsKeepBreakerClosed(t *testing.T) {
	_, c := setupMiniRedis(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for i := 0; i < 2*breakerThreshold; i++ {
		_, ok := c.Get(ctx, "k")
		require.False(t, ok)
		c.Set(ctx, "k", []byte("v"), time.Minute)
	}
	assert.Equal(t, resilience.StateClosed, c.BreakerState())

	c.Set(context.Background(), "k", []byte("v"), time.Minute)
	got, ok := c.Get(context.Background(), "k")
	require.True(t, ok)
	assert.Equal(t, []byte("v"), got)
}

func TestNewRedisCache_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedisCache(RedisConfig{Addr: addr}, zerolog.Nop())
	assert.Error(t, err)
}
