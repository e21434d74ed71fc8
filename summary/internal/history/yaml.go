package history

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/upstatus/upstatus/pkg/types"
)

// timestampLayouts are tried in order when parsing a record timestamp.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
}

// FileStore reads <dir>/<slug>.yml documents of the form:
//
//	url: https://example.com
//	measurements:
//	  - timestamp: 2024-06-01T12:00:00Z
//	    success: true
//	    latencyMs: 231
//	    statusCode: 200
type FileStore struct {
	dir string
}

// NewFileStore returns a FileStore rooted at dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

type fileDoc struct {
	URL          string       `yaml:"url"`
	Measurements []fileRecord `yaml:"measurements"`
}

// fileRecord keeps the timestamp as text so one bad value skips one record
// instead of failing the whole document.
type fileRecord struct {
	Timestamp  string  `yaml:"timestamp"`
	Success    bool    `yaml:"success"`
	LatencyMs  float64 `yaml:"latencyMs"`
	StatusCode *int    `yaml:"statusCode"`
}

// Path returns the history file for slug.
func (s *FileStore) Path(slug string) string {
	return filepath.Join(s.dir, slug+".yml")
}

// Read implements Reader.
func (s *FileStore) Read(ctx context.Context, slug string) ([]types.Measurement, error) {
	if err := validSlug(slug); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.Path(slug))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &NotFoundError{Slug: slug}
	}
	if err != nil {
		return nil, fmt.Errorf("history: read %s: %w", s.Path(slug), err)
	}

	var doc fileDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &CorruptError{Slug: slug, Err: err}
	}

	ms := make([]types.Measurement, 0, len(doc.Measurements))
	for i, r := range doc.Measurements {
		ts, err := parseTimestamp(r.Timestamp)
		if err != nil {
			skipMalformed(slug, i, err.Error())
			continue
		}
		ms = append(ms, types.Measurement{
			Timestamp:  ts,
			Success:    r.Success,
			LatencyMs:  r.LatencyMs,
			StatusCode: r.StatusCode,
		})
	}
	return keepValid(slug, ms), nil
}

// Close implements Store.
func (s *FileStore) Close() error { return nil }

func parseTimestamp(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, fmt.Errorf("missing timestamp")
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, v); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparsable timestamp %q", v)
}
