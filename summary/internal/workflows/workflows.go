// Package workflows patches known-bad action references in the repository's
// GitHub Actions workflow files.
package workflows

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Dir is the workflow directory relative to the repository root.
const Dir = ".github/workflows"

// Replacement rewrites one action reference.
type Replacement struct {
	Old string
	New string
}

// DefaultReplacements pins setup-node back to a release that works with the
// generated workflows.
var DefaultReplacements = []Replacement{
	{Old: "actions/setup-node@v2.1.1", New: "actions/setup-node@v1.4.4"},
}

// Fix applies DefaultReplacements to every *.yml file under root/Dir and
// returns the names of the files it changed. A missing directory is not an
// error.
func Fix(root string) ([]string, error) {
	return FixWith(root, DefaultReplacements)
}

// FixWith is Fix with explicit replacements. Only the first occurrence of
// each Old string in a file is replaced.
func FixWith(root string, repl []Replacement) ([]string, error) {
	dir := filepath.Join(root, Dir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Warn("workflows: directory not found", "dir", dir)
			return nil, nil
		}
		return nil, fmt.Errorf("workflows: read dir: %w", err)
	}

	var changed []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".yml" {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return changed, fmt.Errorf("workflows: read %s: %w", e.Name(), err)
		}
		content := string(data)
		out := content
		for _, r := range repl {
			out = strings.Replace(out, r.Old, r.New, 1)
		}
		if out == content {
			continue
		}
		if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
			return changed, fmt.Errorf("workflows: write %s: %w", e.Name(), err)
		}
		changed = append(changed, e.Name())
	}
	sort.Strings(changed)
	return changed, nil
}
