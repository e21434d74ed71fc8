package history

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"github.com/upstatus/upstatus/pkg/types"
	"github.com/upstatus/upstatus/summary/internal/config"
)

// Reader returns the recorded measurements of one site, oldest first.
type Reader interface {
	Read(ctx context.Context, slug string) ([]types.Measurement, error)
}

// Store is a Reader that holds resources until closed.
type Store interface {
	Reader
	Close() error
}

// NotFoundError reports that no history exists for Slug.
type NotFoundError struct {
	Slug string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("history: no history for %q", e.Slug)
}

// IsNotFound reports whether err is, or wraps, a *NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// CorruptError reports a history document that could not be decoded.
type CorruptError struct {
	Slug string
	Err  error
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("history: corrupt history for %q: %v", e.Slug, e.Err)
}

func (e *CorruptError) Unwrap() error { return e.Err }

// Open returns the Store selected by cfg. Relative paths resolve against root.
func Open(ctx context.Context, cfg config.HistoryConfig, root string) (Store, error) {
	var (
		st  Store
		err error
	)
	switch cfg.Backend {
	case config.BackendYAML, "":
		return NewFileStore(resolve(root, cfg.Dir)), nil
	case config.BackendSQLite:
		st, err = OpenSQLite(ctx, resolve(root, cfg.Path))
	case config.BackendPostgres:
		st, err = OpenPostgres(ctx, cfg.DSN())
	case config.BackendRedis:
		st, err = OpenRedis(ctx, cfg.DSN(), cfg.KeyPrefix)
	default:
		return nil, fmt.Errorf("history: unknown backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}
	return st, nil
}

func resolve(root, p string) string {
	if filepath.IsAbs(p) || root == "" {
		return p
	}
	return filepath.Join(root, p)
}

// validSlug rejects slugs that could escape a directory or key namespace.
func validSlug(slug string) error {
	if slug == "" || slug == "." || slug == ".." || strings.ContainsAny(slug, `/\`) {
		return fmt.Errorf("history: invalid slug %q", slug)
	}
	return nil
}

// keepValid drops records that fail validation, logging each one, and
// returns the rest sorted oldest first.
func keepValid(slug string, ms []types.Measurement) []types.Measurement {
	out := ms[:0]
	for i, m := range ms {
		if err := m.Validate(); err != nil {
			var me *types.MalformedMeasurementError
			if errors.As(err, &me) {
				me.Index = i
			}
			slog.Warn("history: skipping malformed record", "slug", slug, "err", err)
			continue
		}
		out = append(out, m)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}

// skipMalformed logs a record rejected before it became a Measurement.
func skipMalformed(slug string, index int, reason string) {
	err := &types.MalformedMeasurementError{Index: index, Reason: reason}
	slog.Warn("history: skipping malformed record", "slug", slug, "err", err)
}
