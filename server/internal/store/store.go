package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/upstatus/upstatus/pkg/types"
)

// Store is a thread-safe in-memory copy of summary.json, keyed by slug.
type Store struct {
	path string

	mu       sync.RWMutex
	sites    []types.SiteSummary
	index    map[string]int
	loadedAt time.Time
	now      func() time.Time // injectable for deterministic tests
}

// New creates an empty Store backed by the summary file at path.
func New(path string) *Store {
	return &Store{
		path:  path,
		index: make(map[string]int),
		now:   time.Now,
	}
}

// Path returns the summary file the store reads.
func (s *Store) Path() string { return s.path }

// Load reads the summary file and replaces the current state. On error the
// previous state is kept.
func (s *Store) Load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("store: read %q: %w", s.path, err)
	}
	var sites []types.SiteSummary
	if err := json.Unmarshal(data, &sites); err != nil {
		return fmt.Errorf("store: decode %q: %w", s.path, err)
	}
	s.Set(sites)
	return nil
}

// Set replaces the current state with sites, preserving their order.
// Callers must not modify sites after calling Set.
func (s *Store) Set(sites []types.SiteSummary) {
	index := make(map[string]int, len(sites))
	for i, site := range sites {
		index[site.Slug] = i
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sites = sites
	s.index = index
	s.loadedAt = s.now()
}

// List returns a copy of all site summaries in generator order.
func (s *Store) List() []types.SiteSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]types.SiteSummary, len(s.sites))
	copy(out, s.sites)
	return out
}

// Get returns the summary for slug and whether it exists.
func (s *Store) Get(slug string) (types.SiteSummary, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[slug]
	if !ok {
		return types.SiteSummary{}, false
	}
	return s.sites[i], true
}

// Count returns the number of sites currently held.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sites)
}

// LoadedAt returns when the current state was set. Zero means never.
func (s *Store) LoadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadedAt
}

// Watch reloads the summary file whenever it is written or replaced and
// calls onChange after each successful reload. The parent directory is
// watched so that files replaced by git checkouts are picked up. Watch
// blocks until ctx is cancelled.
func (s *Store) Watch(ctx context.Context, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	dir := filepath.Dir(s.path)
	if err := watcher.Add(dir); err != nil {
		return err
	}
	target := filepath.Clean(s.path)

	slog.Info("store: watching summary file", "path", s.path)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if err := s.Load(); err != nil {
				slog.Warn("store: reload failed, keeping previous summary", "err", err)
				continue
			}
			slog.Info("store: summary reloaded", "sites", s.Count())
			if onChange != nil {
				onChange()
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("store: watcher error", "err", err)
		}
	}
}
