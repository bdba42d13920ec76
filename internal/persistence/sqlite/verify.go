// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Integrity check modes.
const (
	ModeQuick = "quick"
	ModeFull  = "full"
)

// VerifyIntegrity runs quick_check (or integrity_check in ModeFull) on a
// read-only connection. A healthy database yields nil issues.
func VerifyIntegrity(ctx context.Context, path, mode string) ([]string, error) {
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?mode=ro&_pragma=busy_timeout(2000)", path))
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s for verification: %w", path, err)
	}
	defer func() { _ = db.Close() }()

	pragma := "PRAGMA quick_check"
	if mode == ModeFull {
		pragma = "PRAGMA integrity_check"
	}
	rows, err := db.QueryContext(ctx, pragma)
	if err != nil {
		return nil, fmt.Errorf("sqlite: %s: %w", pragma, err)
	}
	defer func() { _ = rows.Close() }()

	var issues []string
	for rows.Next() {
		var line string
		if err := rows.Scan(&line); err != nil {
			return nil, fmt.Errorf("sqlite: scan %s: %w", pragma, err)
		}
		issues = append(issues, line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	switch {
	case len(issues) == 1 && strings.EqualFold(issues[0], "ok"):
		return nil, nil
	case len(issues) == 0:
		return []string{"integrity check returned no rows"}, nil
	}
	return issues, nil
}
