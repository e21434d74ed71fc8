package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/upstatus/upstatus/pkg/types"
)

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS measurements (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		slug        TEXT    NOT NULL,
		taken_at    TEXT    NOT NULL,
		success     INTEGER NOT NULL,
		latency_ms  REAL    NOT NULL,
		status_code INTEGER
	)`,
	`CREATE INDEX IF NOT EXISTS idx_measurements_slug ON measurements (slug, taken_at)`,
}

// SQLiteStore reads measurements from a local SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("history: open sqlite %s: %w", path, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: ping sqlite %s: %w", path, err)
	}
	for _, stmt := range sqliteSchema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("history: init sqlite schema: %w", err)
		}
	}
	return &SQLiteStore{db: db}, nil
}

// Read implements Reader.
func (s *SQLiteStore) Read(ctx context.Context, slug string) ([]types.Measurement, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT taken_at, success, latency_ms, status_code
		   FROM measurements WHERE slug = ? ORDER BY taken_at, id`, slug)
	if err != nil {
		return nil, fmt.Errorf("history: query %q: %w", slug, err)
	}
	defer rows.Close()

	var (
		ms   []types.Measurement
		seen int
	)
	for rows.Next() {
		var (
			takenAt string
			success bool
			latency float64
			code    sql.NullInt64
		)
		if err := rows.Scan(&takenAt, &success, &latency, &code); err != nil {
			return nil, &CorruptError{Slug: slug, Err: err}
		}
		idx := seen
		seen++

		ts, err := parseTimestamp(takenAt)
		if err != nil {
			skipMalformed(slug, idx, err.Error())
			continue
		}
		m := types.Measurement{Timestamp: ts, Success: success, LatencyMs: latency}
		if code.Valid {
			c := int(code.Int64)
			m.StatusCode = &c
		}
		ms = append(ms, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: iterate %q: %w", slug, err)
	}
	if seen == 0 {
		return nil, &NotFoundError{Slug: slug}
	}
	return keepValid(slug, ms), nil
}

// Append records one measurement for slug.
func (s *SQLiteStore) Append(ctx context.Context, slug string, m types.Measurement) error {
	var code any
	if c, ok := m.Code(); ok {
		code = c
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO measurements (slug, taken_at, success, latency_ms, status_code)
		 VALUES (?, ?, ?, ?, ?)`,
		slug, m.Timestamp.UTC().Format(time.RFC3339Nano), m.Success, m.LatencyMs, code)
	if err != nil {
		return fmt.Errorf("history: insert %q: %w", slug, err)
	}
	return nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error { return s.db.Close() }
