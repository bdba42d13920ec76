// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package sqlite

import (
	"context"
	"crypto/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_AppliesPragmas(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, filepath.Join(t.TempDir(), "p.sqlite"), Config{})
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	var mode string
	require.NoError(t, db.QueryRowContext(ctx, "PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)

	var fk int
	require.NoError(t, db.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&fk))
	assert.Equal(t, 1, fk)
}

func TestMigrate_IsIncremental(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, filepath.Join(t.TempDir(), "m.sqlite"), DefaultConfig())
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	migrations := []string{"CREATE TABLE a (id INTEGER PRIMARY KEY)"}
	require.NoError(t, Migrate(ctx, db, migrations))
	// Re-running must not recreate table a.
	migrations = append(migrations, "CREATE TABLE b (id INTEGER PRIMARY KEY)")
	require.NoError(t, Migrate(ctx, db, migrations))

	var version int
	require.NoError(t, db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version))
	assert.Equal(t, 2, version)

	err = Migrate(ctx, db, append(migrations, "NOT SQL"))
	assert.Error(t, err)
	require.NoError(t, db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version))
	assert.Equal(t, 2, version)
}

func TestVerifyIntegrity_DetectsCorruption(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "corruptible.sqlite")

	db, err := Open(ctx, path, DefaultConfig())
	require.NoError(t, err)
	_, err = db.Exec("CREATE TABLE t (id INTEGER PRIMARY KEY, data TEXT)")
	require.NoError(t, err)
	for i := 0; i < 100; i++ {
		_, err = db.Exec("INSERT INTO t (data) VALUES (?)", string(make([]byte, 100)))
		require.NoError(t, err)
	}
	// Checkpoint so the pages live in the main file.
	_, err = db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	issues, err := VerifyIntegrity(ctx, path, ModeQuick)
	require.NoError(t, err)
	assert.Nil(t, issues)

	f, err := os.OpenFile(path, os.O_RDWR, 0o600)
	require.NoError(t, err)
	junk := make([]byte, 100)
	_, _ = rand.Read(junk)
	_, err = f.WriteAt(junk, 4096)
	require.NoError(t, f.Close())
	require.NoError(t, err)

	issues, err = VerifyIntegrity(ctx, path, ModeFull)
	if err == nil {
		assert.NotEmpty(t, issues)
	}
}
