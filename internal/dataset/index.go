// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package dataset

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	xglog "github.com/ManuGH/eosgen/internal/log"
	"github.com/ManuGH/eosgen/internal/solution"
	"github.com/fsnotify/fsnotify"
)

var (
	// ErrInvalidName is returned for names that are not plain table file names.
	ErrInvalidName = errors.New("invalid table name")
	// ErrNotFound is returned when the index has no table of that name.
	ErrNotFound = errors.New("table not found")
)

// Entry describes one table file in the data directory.
type Entry struct {
	Name    string             `json:"name"`
	Size    int64              `json:"size"`
	ModTime time.Time          `json:"mod_time"`
	Kind    solution.Kind      `json:"kind,omitempty"`
	Params  map[string]float64 `json:"params,omitempty"`
}

// Index tracks the CSV tables of a directory.
type Index struct {
	dir string

	mu      sync.RWMutex
	entries map[string]Entry
}

// NewIndex scans dir, creating it if needed.
func NewIndex(dir string) (*Index, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	ix := &Index{dir: dir, entries: map[string]Entry{}}
	if err := ix.Refresh(); err != nil {
		return nil, err
	}
	return ix, nil
}

// Dir returns the indexed directory.
func (ix *Index) Dir() string { return ix.dir }

// Refresh rescans the directory.
func (ix *Index) Refresh() error {
	dirents, err := os.ReadDir(ix.dir)
	if err != nil {
		return fmt.Errorf("read data dir: %w", err)
	}
	entries := make(map[string]Entry, len(dirents))
	for _, d := range dirents {
		if d.IsDir() || !isTableName(d.Name()) {
			continue
		}
		if e, ok := ix.stat(d.Name()); ok {
			entries[e.Name] = e
		}
	}
	ix.mu.Lock()
	ix.entries = entries
	ix.mu.Unlock()
	return nil
}

// List returns the entries sorted by name.
func (ix *Index) List() []Entry {
	ix.mu.RLock()
	out := make([]Entry, 0, len(ix.entries))
	for _, e := range ix.entries {
		out = append(out, e)
	}
	ix.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Open opens a table known to the index. Names must not contain path
// separators.
func (ix *Index) Open(name string) (*os.File, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	ix.mu.RLock()
	_, ok := ix.entries[name]
	ix.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	f, err := os.Open(filepath.Join(ix.dir, name)) // #nosec G304 -- name validated above
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return f, err
}

// Load opens and parses a table.
func (ix *Index) Load(name string) (*Parsed, error) {
	f, err := ix.Open(name)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return ReadTable(f)
}

// Watch keeps the index current until ctx is cancelled.
func (ix *Index) Watch(ctx context.Context) error {
	logger := xglog.WithComponentFromContext(ctx, "dataset")

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify.NewWatcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(ix.dir); err != nil {
		return fmt.Errorf("watch directory %s: %w", ix.dir, err)
	}
	// Files created between the initial scan and Add.
	if err := ix.Refresh(); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return errors.New("watcher channel closed")
			}
			name := filepath.Base(event.Name)
			if !isTableName(name) {
				continue
			}
			if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				ix.mu.Lock()
				delete(ix.entries, name)
				ix.mu.Unlock()
				logger.Debug().Str(xglog.FieldEvent, "dataset.table_removed").Str(xglog.FieldPath, name).Msg("table removed")
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				if e, ok := ix.stat(name); ok {
					ix.mu.Lock()
					ix.entries[name] = e
					ix.mu.Unlock()
					logger.Debug().Str(xglog.FieldEvent, "dataset.table_updated").Str(xglog.FieldPath, name).Msg("table updated")
				}
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return errors.New("watcher error channel closed")
			}
			logger.Warn().Err(err).Msg("fsnotify watcher error")
		}
	}
}

func (ix *Index) stat(name string) (Entry, bool) {
	info, err := os.Stat(filepath.Join(ix.dir, name))
	if err != nil || !info.Mode().IsRegular() {
		return Entry{}, false
	}
	e := Entry{Name: name, Size: info.Size(), ModTime: info.ModTime()}
	if kind, params, ok := ParseFileName(name); ok {
		e.Kind, e.Params = kind, params
	}
	return e, true
}

func validateName(name string) error {
	if name == "" || name != filepath.Base(name) || strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".") {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if !isTableName(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// isTableName excludes the index file and renameio temporaries.
func isTableName(name string) bool {
	return strings.HasSuffix(name, TableExt) && name != IndexFile && !strings.HasPrefix(name, ".")
}
