// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package cache stores encoded evaluation results keyed by request.
package cache

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Backend names accepted by New.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendBadger = "badger"
	BackendNone   = "none"
)

// Cache stores opaque values with expiration.
type Cache interface {
	// Get returns the value for key if present and not expired.
	Get(ctx context.Context, key string) ([]byte, bool)
	// Set stores value for ttl. Failures are logged, not returned.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	Delete(ctx context.Context, key string)
	Stats() Stats
	Close() error
}

// Stats holds cache counters.
type Stats struct {
	Hits        int64 `json:"hits"`
	Misses      int64 `json:"misses"`
	Sets        int64 `json:"sets"`
	Evictions   int64 `json:"evictions"`
	CurrentSize int   `json:"current_size"`
}

// Config selects and configures a backend.
type Config struct {
	Backend         string
	CleanupInterval time.Duration
	Redis           RedisConfig
	BadgerDir       string
}

// New builds the configured backend. An empty backend means memory.
func New(cfg Config, logger zerolog.Logger) (Cache, error) {
	switch cfg.Backend {
	case BackendMemory, "":
		return NewMemoryCache(cfg.CleanupInterval), nil
	case BackendRedis:
		c, err := NewRedisCache(cfg.Redis, logger)
		if err != nil {
			return nil, err
		}
		return c, nil
	case BackendBadger:
		c, err := NewBadgerCache(cfg.BadgerDir, logger)
		if err != nil {
			return nil, err
		}
		return c, nil
	case BackendNone:
		return NewNoOpCache(), nil
	default:
		return nil, fmt.Errorf("unknown cache backend: %s", cfg.Backend)
	}
}

// counters is shared by the backends.
type counters struct {
	hits      atomic.Int64
	misses    atomic.Int64
	sets      atomic.Int64
	evictions atomic.Int64
}

func (c *counters) snapshot(size int) Stats {
	return Stats{
		Hits:        c.hits.Load(),
		Misses:      c.misses.Load(),
		Sets:        c.sets.Load(),
		Evictions:   c.evictions.Load(),
		CurrentSize: size,
	}
}

type entry struct {
	value      []byte
	expiration time.Time
}

func (e *entry) isExpired(now time.Time) bool {
	return now.After(e.expiration)
}

// MemoryCache is an in-process Cache with periodic cleanup.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]*entry
	stats   counters
	now     func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// NewMemoryCache creates a memory cache. A positive cleanupInterval starts a
// janitor goroutine that Close stops.
func NewMemoryCache(cleanupInterval time.Duration) *MemoryCache {
	c := &MemoryCache{
		entries: make(map[string]*entry),
		now:     time.Now,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	if cleanupInterval > 0 {
		go c.janitor(cleanupInterval)
	} else {
		close(c.done)
	}
	return c
}

// Get retrieves a value.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.RLock()
	e, found := c.entries[key]
	c.mu.RUnlock()
	if !found || e.isExpired(c.now()) {
		c.stats.misses.Add(1)
		return nil, false
	}
	c.stats.hits.Add(1)
	return e.value, true
}

// Set stores a value.
func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) {
	buf := make([]byte, len(value))
	copy(buf, value)
	c.mu.Lock()
	c.entries[key] = &entry{value: buf, expiration: c.now().Add(ttl)}
	c.mu.Unlock()
	c.stats.sets.Add(1)
}

// Delete removes a value.
func (c *MemoryCache) Delete(_ context.Context, key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Stats returns cache statistics.
func (c *MemoryCache) Stats() Stats {
	c.mu.RLock()
	size := len(c.entries)
	c.mu.RUnlock()
	return c.stats.snapshot(size)
}

// Close stops the janitor.
func (c *MemoryCache) Close() error {
	c.stopOnce.Do(func() { close(c.stop) })
	<-c.done
	return nil
}

// deleteExpired removes expired entries and returns how many were removed.
func (c *MemoryCache) deleteExpired() int {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()

	count := 0
	for key, e := range c.entries {
		if e.isExpired(now) {
			delete(c.entries, key)
			count++
		}
	}
	c.stats.evictions.Add(int64(count))
	return count
}

func (c *MemoryCache) janitor(interval time.Duration) {
	defer close(c.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.deleteExpired()
		case <-c.stop:
			return
		}
	}
}

type noOpCache struct{}

// NewNoOpCache creates a cache that stores nothing.
func NewNoOpCache() Cache {
	return noOpCache{}
}

func (noOpCache) Get(context.Context, string) ([]byte, bool)         { return nil, false }
func (noOpCache) Set(context.Context, string, []byte, time.Duration) {}
func (noOpCache) Delete(context.Context, string)                     {}
func (noOpCache) Stats() Stats                                       { return Stats{} }
func (noOpCache) Close() error                                       { return nil }
