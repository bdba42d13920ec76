// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"
)

// BadgerCache persists entries in an embedded Badger database so they
// survive restarts of a single node.
type BadgerCache struct {
	db     *badger.DB
	logger zerolog.Logger
	stats  counters
}

// NewBadgerCache opens (or creates) a Badger database in dir.
func NewBadgerCache(dir string, logger zerolog.Logger) (*BadgerCache, error) {
	if dir == "" {
		return nil, errors.New("badger cache requires a directory")
	}
	db, err := badger.Open(badger.DefaultOptions(dir).WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("open badger cache: %w", err)
	}
	logger.Info().Str("path", dir).Msg("opened Badger cache")
	return &BadgerCache{db: db, logger: logger}, nil
}

// Get retrieves a value. Badger drops expired entries itself.
func (c *BadgerCache) Get(_ context.Context, key string) ([]byte, bool) {
	var out []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if !errors.Is(err, badger.ErrKeyNotFound) {
			c.logger.Warn().Err(err).Str("key", key).Msg("badger get failed")
		}
		c.stats.misses.Add(1)
		return nil, false
	}
	c.stats.hits.Add(1)
	return out, true
}

// Set stores a value with TTL.
func (c *BadgerCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) {
	err := c.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(key), value)
		if ttl > 0 {
			e = e.WithTTL(ttl)
		}
		return txn.SetEntry(e)
	})
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("badger set failed")
		return
	}
	c.stats.sets.Add(1)
}

// Delete removes a value.
func (c *BadgerCache) Delete(_ context.Context, key string) {
	err := c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("badger delete failed")
	}
}

// Stats returns cache statistics. CurrentSize counts live keys.
func (c *BadgerCache) Stats() Stats {
	size := 0
	_ = c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			size++
		}
		return nil
	})
	return c.stats.snapshot(size)
}

// Close closes the database.
func (c *BadgerCache) Close() error {
	return c.db.Close()
}
