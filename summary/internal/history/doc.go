// Package history reads recorded probe measurements per site slug.
//
// Reader is the read-only contract used by the aggregation driver:
//
//	Read(ctx, slug) → []types.Measurement, oldest first
//
// A slug with no recorded history returns *NotFoundError, which callers treat
// as "no data yet". A history document that cannot be decoded returns
// *CorruptError. Individual records that fail validation (unparsable
// timestamp, negative latency) are logged and skipped.
//
// Backends, selected by Open from config.HistoryConfig:
//   - yaml:     <dir>/<slug>.yml documents (FileStore)
//   - sqlite:   a measurements table in a local file (SQLiteStore, modernc.org/sqlite)
//   - postgres: the same table in PostgreSQL (PostgresStore, pgx/v5 pgxpool)
//   - redis:    one sorted set per slug scored by Unix milliseconds (RedisStore)
//
// The SQL and Redis stores also expose Append so external probers and tests
// can record measurements.
package history
