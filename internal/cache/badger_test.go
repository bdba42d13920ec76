// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBadgerCache_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	c, err := New(Config{Backend: BackendBadger, BadgerDir: t.TempDir()}, zerolog.Nop())
	require.NoError(t, err)
	defer func() { _ = c.Close() }()

	c.Set(ctx, "a", []byte("1"), time.Minute)
	c.Set(ctx, "b", []byte("2"), 0)

	v, ok := c.Get(ctx, "a")
	require.True(t, ok)
	assert.Equal(t, "1", string(v))
	assert.Equal(t, 2, c.Stats().CurrentSize)

	c.Delete(ctx, "a")
	_, ok = c.Get(ctx, "a")
	assert.False(t, ok)

	stats := c.Stats()
	assert.Equal(t, int64(2), stats.Sets)
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, 1, stats.CurrentSize)
}

func TestBadgerCache_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	c, err := NewBadgerCache(dir, zerolog.Nop())
	require.NoError(t, err)
	c.Set(ctx, "k", []byte("v"), time.Hour)
	require.NoError(t, c.Close())

	c, err = NewBadgerCache(dir, zerolog.Nop())
	require.NoError(t, err)
	defer func() { _ = c.Close() }()
	v, ok := c.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, "v", string(v))
}
