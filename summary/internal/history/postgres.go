package history

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/upstatus/upstatus/pkg/types"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS measurements (
	id          BIGSERIAL PRIMARY KEY,
	slug        TEXT             NOT NULL,
	taken_at    TIMESTAMPTZ      NOT NULL,
	success     BOOLEAN          NOT NULL,
	latency_ms  DOUBLE PRECISION NOT NULL,
	status_code INTEGER
);
CREATE INDEX IF NOT EXISTS idx_measurements_slug ON measurements (slug, taken_at);`

// PostgresStore reads measurements from PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects to dsn and ensures the schema exists.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	if dsn == "" {
		return nil, fmt.Errorf("history: postgres dsn is empty")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("history: connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("history: ping postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("history: init postgres schema: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// Read implements Reader.
func (s *PostgresStore) Read(ctx context.Context, slug string) ([]types.Measurement, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT taken_at, success, latency_ms, status_code
		   FROM measurements WHERE slug = $1 ORDER BY taken_at, id`, slug)
	if err != nil {
		return nil, fmt.Errorf("history: query %q: %w", slug, err)
	}
	defer rows.Close()

	var ms []types.Measurement
	for rows.Next() {
		var (
			m    types.Measurement
			code *int32
		)
		if err := rows.Scan(&m.Timestamp, &m.Success, &m.LatencyMs, &code); err != nil {
			return nil, &CorruptError{Slug: slug, Err: err}
		}
		if code != nil {
			c := int(*code)
			m.StatusCode = &c
		}
		m.Timestamp = m.Timestamp.UTC()
		ms = append(ms, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: iterate %q: %w", slug, err)
	}
	if len(ms) == 0 {
		return nil, &NotFoundError{Slug: slug}
	}
	return keepValid(slug, ms), nil
}

// Append records one measurement for slug.
func (s *PostgresStore) Append(ctx context.Context, slug string, m types.Measurement) error {
	var code *int32
	if c, ok := m.Code(); ok {
		v := int32(c)
		code = &v
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO measurements (slug, taken_at, success, latency_ms, status_code)
		 VALUES ($1, $2, $3, $4, $5)`,
		slug, m.Timestamp.UTC().Truncate(time.Microsecond), m.Success, m.LatencyMs, code)
	if err != nil {
		return fmt.Errorf("history: insert %q: %w", slug, err)
	}
	return nil
}

// Close implements Store.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
