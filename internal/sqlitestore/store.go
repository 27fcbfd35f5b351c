// Package sqlitestore keeps build history in a SQLite database, so that build
// numbers and past results survive between CLI runs.
package sqlitestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/specialistvlad/stepproxy/internal/build"
	"github.com/specialistvlad/stepproxy/internal/buildstore"
	_ "modernc.org/sqlite"
)

// timeFormat has fixed width so that stored times sort as text.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

const schema = `
CREATE TABLE IF NOT EXISTS build_numbers (
	project TEXT PRIMARY KEY,
	last    INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS builds (
	id          TEXT PRIMARY KEY,
	project     TEXT NOT NULL,
	number      INTEGER NOT NULL,
	result      TEXT NOT NULL,
	parameters  TEXT NOT NULL,
	started_at  TEXT NOT NULL,
	duration_ns INTEGER NOT NULL,
	error       TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS builds_project_started ON builds (project, started_at);
`

// Store is a SQLite-backed buildstore.Store.
type Store struct {
	sqlDB *sql.DB
}

// Open opens (creating if needed) the history database at path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the underlying SQLite database.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// NextNumber allocates the next build number for project.
func (s *Store) NextNumber(ctx context.Context, project string) (int, error) {
	var n int
	err := s.sqlDB.QueryRowContext(ctx, `
INSERT INTO build_numbers (project, last) VALUES (?, 1)
ON CONFLICT (project) DO UPDATE SET last = last + 1
RETURNING last`, project).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("allocate build number for %s: %w", project, err)
	}
	return n, nil
}

// Save records a finished build.
func (s *Store) Save(ctx context.Context, rec buildstore.Record) error {
	params := rec.Parameters
	if params == nil {
		params = map[string]string{}
	}
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("encode parameters: %w", err)
	}

	_, err = s.sqlDB.ExecContext(ctx, `
INSERT OR REPLACE INTO builds (id, project, number, result, parameters, started_at, duration_ns, error)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID.String(), rec.Project, rec.Number, string(rec.Result), string(paramsJSON),
		rec.StartedAt.UTC().Format(timeFormat), int64(rec.Duration), rec.Error)
	if err != nil {
		return fmt.Errorf("save build %s #%d: %w", rec.Project, rec.Number, err)
	}
	return nil
}

// List returns the records of project, newest first.
func (s *Store) List(ctx context.Context, project string) ([]buildstore.Record, error) {
	query := `SELECT id, project, number, result, parameters, started_at, duration_ns, error FROM builds`
	var args []any
	if project != "" {
		query += ` WHERE project = ?`
		args = append(args, project)
	}
	query += ` ORDER BY started_at DESC, project ASC, number DESC`

	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list builds: %w", err)
	}
	defer rows.Close()

	var out []buildstore.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list builds: %w", err)
	}
	return out, nil
}

func scanRecord(rows *sql.Rows) (buildstore.Record, error) {
	var (
		rec                         buildstore.Record
		id, result, params, started string
		duration                    int64
	)
	if err := rows.Scan(&id, &rec.Project, &rec.Number, &result, &params, &started, &duration, &rec.Error); err != nil {
		return rec, fmt.Errorf("scan build: %w", err)
	}

	var err error
	if rec.ID, err = uuid.Parse(id); err != nil {
		return rec, fmt.Errorf("parse build id %q: %w", id, err)
	}
	if rec.StartedAt, err = time.Parse(timeFormat, started); err != nil {
		return rec, fmt.Errorf("parse start time %q: %w", started, err)
	}
	if err := json.Unmarshal([]byte(params), &rec.Parameters); err != nil {
		return rec, fmt.Errorf("decode parameters: %w", err)
	}
	rec.Result = build.Result(result)
	rec.Duration = time.Duration(duration)
	return rec, nil
}

var _ buildstore.Store = (*Store)(nil)
