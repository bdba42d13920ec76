// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ManuGH/eosgen/internal/persistence/sqlite"
)

var migrations = []string{
	`
	CREATE TABLE studies (
		id TEXT PRIMARY KEY,
		status TEXT NOT NULL CHECK(status IN ('running', 'ok', 'degraded', 'failed', 'canceled')),
		started_at TEXT NOT NULL,
		finished_at TEXT,
		total_cases INTEGER NOT NULL DEFAULT 0,
		successful INTEGER NOT NULL DEFAULT 0,
		failed INTEGER NOT NULL DEFAULT 0,
		acceptable INTEGER NOT NULL DEFAULT 0,
		error TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE solutions (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		params TEXT NOT NULL,
		study_id TEXT REFERENCES studies(id) ON DELETE SET NULL,
		file TEXT NOT NULL,
		points INTEGER NOT NULL,
		acceptable INTEGER NOT NULL,
		central_density REAL NOT NULL,
		central_pressure REAL NOT NULL,
		boundary_radius REAL NOT NULL,
		compactness REAL NOT NULL,
		report TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX idx_solutions_kind ON solutions(kind);
	CREATE INDEX idx_solutions_study ON solutions(study_id);
	CREATE INDEX idx_studies_started ON studies(started_at);
	`,
}

// Store provides SQLite persistence for the catalog.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (and migrates) the catalog database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sqlite.Open(ctx, path, sqlite.DefaultConfig())
	if err != nil {
		return nil, err
	}
	if err := sqlite.Migrate(ctx, db, migrations); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate catalog: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// CreateStudy records a running study.
func (s *Store) CreateStudy(ctx context.Context, id string, totalCases int) (*Study, error) {
	st := &Study{ID: id, Status: StudyRunning, StartedAt: s.now().UTC(), TotalCases: totalCases}
	_, err := s.db.ExecContext(ctx, `
	INSERT INTO studies (id, status, started_at, total_cases)
	VALUES (?, ?, ?, ?)
	`, st.ID, st.Status.String(), st.StartedAt.Format(timeLayout), st.TotalCases)
	if err != nil {
		return nil, fmt.Errorf("insert study %s: %w", id, err)
	}
	return st, nil
}

// FinishStudy stores the outcome of a study.
func (s *Store) FinishStudy(ctx context.Context, id string, out StudyOutcome) error {
	res, err := s.db.ExecContext(ctx, `
	UPDATE studies
	SET status = ?, finished_at = ?, successful = ?, failed = ?, acceptable = ?, error = ?
	WHERE id = ?
	`, out.Status.String(), s.now().UTC().Format(timeLayout), out.Successful, out.Failed, out.Acceptable, out.Error, id)
	if err != nil {
		return fmt.Errorf("finish study %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("study %s: %w", id, ErrNotFound)
	}
	return nil
}

// timeLayout is fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const studyColumns = `id, status, started_at, finished_at, total_cases, successful, failed, acceptable, error`

// GetStudy retrieves a study by ID.
func (s *Store) GetStudy(ctx context.Context, id string) (*Study, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+studyColumns+` FROM studies WHERE id = ?`, id)
	st, err := scanStudy(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("study %s: %w", id, ErrNotFound)
	}
	return st, err
}

// ListStudies returns the most recent studies first.
func (s *Store) ListStudies(ctx context.Context, limit int) ([]Study, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+studyColumns+` FROM studies ORDER BY started_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []Study
	for rows.Next() {
		st, err := scanStudy(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *st)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanStudy(sc scanner) (*Study, error) {
	var st Study
	var started string
	var finished sql.NullString
	if err := sc.Scan(&st.ID, &st.Status, &started, &finished, &st.TotalCases,
		&st.Successful, &st.Failed, &st.Acceptable, &st.Error); err != nil {
		return nil, err
	}
	st.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
	if finished.Valid {
		t, err := time.Parse(time.RFC3339Nano, finished.String)
		if err == nil {
			st.FinishedAt = &t
		}
	}
	return &st, nil
}

// UpsertSolution inserts or replaces a solution record.
func (s *Store) UpsertSolution(ctx context.Context, rec Record) error {
	params, err := json.Marshal(rec.Params)
	if err != nil {
		return fmt.Errorf("encode params: %w", err)
	}
	report := string(rec.Report)
	if report == "" {
		report = "{}"
	}
	var studyID any
	if rec.StudyID != "" {
		studyID = rec.StudyID
	}
	_, err = s.db.ExecContext(ctx, `
	INSERT INTO solutions (id, kind, params, study_id, file, points, acceptable,
		central_density, central_pressure, boundary_radius, compactness, report, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		study_id = excluded.study_id,
		file = excluded.file,
		points = excluded.points,
		acceptable = excluded.acceptable,
		central_density = excluded.central_density,
		central_pressure = excluded.central_pressure,
		boundary_radius = excluded.boundary_radius,
		compactness = excluded.compactness,
		report = excluded.report,
		updated_at = excluded.updated_at
	`,
		rec.ID, string(rec.Kind), string(params), studyID, rec.File, rec.Points, rec.Acceptable,
		rec.CentralDensity, rec.CentralPressure, rec.BoundaryRadius, rec.Compactness,
		report, s.now().UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("upsert solution %s: %w", rec.ID, err)
	}
	return nil
}

const solutionColumns = `id, kind, params, study_id, file, points, acceptable,
	central_density, central_pressure, boundary_radius, compactness, report, updated_at`

// GetSolution retrieves a solution by ID.
func (s *Store) GetSolution(ctx context.Context, id string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+solutionColumns+` FROM solutions WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("solution %s: %w", id, ErrNotFound)
	}
	return rec, err
}

// ListSolutions returns a page of records ordered by kind and ID, plus the
// total number of matches.
func (s *Store) ListSolutions(ctx context.Context, f Filter, limit, offset int) ([]Record, int, error) {
	var where []string
	var args []any
	if f.Kind != "" {
		where = append(where, "kind = ?")
		args = append(args, string(f.Kind))
	}
	if f.StudyID != "" {
		where = append(where, "study_id = ?")
		args = append(args, f.StudyID)
	}
	if f.Acceptable != nil {
		where = append(where, "acceptable = ?")
		args = append(args, *f.Acceptable)
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM solutions`+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+solutionColumns+` FROM solutions`+clause+` ORDER BY kind, id LIMIT ? OFFSET ?`,
		append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = rows.Close() }()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *rec)
	}
	return out, total, rows.Err()
}

func scanRecord(sc scanner) (*Record, error) {
	var rec Record
	var params, report, updated string
	var studyID sql.NullString
	if err := sc.Scan(&rec.ID, &rec.Kind, &params, &studyID, &rec.File, &rec.Points, &rec.Acceptable,
		&rec.CentralDensity, &rec.CentralPressure, &rec.BoundaryRadius, &rec.Compactness,
		&report, &updated); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(params), &rec.Params); err != nil {
		return nil, fmt.Errorf("decode params of %s: %w", rec.ID, err)
	}
	rec.StudyID = studyID.String
	rec.Report = json.RawMessage(report)
	rec.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updated)
	return &rec, nil
}
