// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package cache

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"
)

// Loader fills a Cache on misses. Concurrent misses for one key share a
// single computation.
type Loader struct {
	cache Cache
	ttl   time.Duration
	group singleflight.Group
}

// NewLoader wraps c with entries living for ttl.
func NewLoader(c Cache, ttl time.Duration) *Loader {
	return &Loader{cache: c, ttl: ttl}
}

// Get returns the cached value for key, computing and storing it on a miss.
// The second result reports whether the value came from the cache.
func (l *Loader) Get(ctx context.Context, key string, compute func(context.Context) ([]byte, error)) ([]byte, bool, error) {
	if v, ok := l.cache.Get(ctx, key); ok {
		return v, true, nil
	}
	v, err, _ := l.group.Do(key, func() (any, error) {
		out, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		l.cache.Set(ctx, key, out, l.ttl)
		return out, nil
	})
	if err != nil {
		return nil, false, err
	}
	return v.([]byte), false, nil
}
