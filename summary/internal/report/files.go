package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/upstatus/upstatus/pkg/metrics"
	"github.com/upstatus/upstatus/pkg/types"
)

// Paths of generated files, relative to the repository root.
const (
	ReadmeFile        = "README.md"
	GitAttributesFile = ".gitattributes"
	SummaryFile       = "history/summary.json"
	MetricsFile       = "history/summary.prom"
	APIDir            = "api"
)

// GitAttributes marks generated files as detectable, non-documentation content.
const GitAttributes = "# Markdown\n*.md linguist-detectable=true\n*.md linguist-documentation=false\n\n# JSON\n*.json linguist-detectable=true\n\n# YAML\n*.yml linguist-detectable=true\n"

// Badge is a shields.io endpoint badge document.
type Badge struct {
	SchemaVersion int    `json:"schemaVersion"`
	Label         string `json:"label"`
	Message       string `json:"message"`
	Color         string `json:"color"`
}

// WriteSummary writes pages to history/summary.json with two-space indentation.
func WriteSummary(root string, pages []types.SiteSummary) error {
	if pages == nil {
		pages = []types.SiteSummary{}
	}
	data, err := json.MarshalIndent(pages, "", "  ")
	if err != nil {
		return fmt.Errorf("report: encode summary: %w", err)
	}
	return writeFile(root, SummaryFile, data)
}

// WriteMetrics writes the Prometheus text exposition of pages.
func WriteMetrics(root string, pages []types.SiteSummary) error {
	var buf bytes.Buffer
	if err := metrics.Write(&buf, metrics.FromSummaries(pages)); err != nil {
		return fmt.Errorf("report: %w", err)
	}
	return writeFile(root, MetricsFile, buf.Bytes())
}

// WriteGitAttributes writes .gitattributes.
func WriteGitAttributes(root string) error {
	return writeFile(root, GitAttributesFile, []byte(GitAttributes))
}

// WriteBadges writes the endpoint badges of every page under api/<slug>/.
func WriteBadges(root string, pages []types.SiteSummary) error {
	for _, p := range pages {
		for name, b := range Badges(p) {
			data, err := json.Marshal(b)
			if err != nil {
				return fmt.Errorf("report: encode badge %s/%s: %w", p.Slug, name, err)
			}
			if err := writeFile(root, filepath.Join(APIDir, p.Slug, name+".json"), data); err != nil {
				return err
			}
		}
	}
	return nil
}

// Badges returns the endpoint badges of one site keyed by file name.
func Badges(p types.SiteSummary) map[string]Badge {
	out := map[string]Badge{}
	for _, u := range []struct {
		file, label string
		value       float64
	}{
		{"uptime", "uptime", p.Uptime},
		{"uptime-day", "uptime 24h", p.UptimeDay},
		{"uptime-week", "uptime 7d", p.UptimeWeek},
		{"uptime-month", "uptime 30d", p.UptimeMonth},
		{"uptime-year", "uptime 1y", p.UptimeYear},
	} {
		out[u.file] = Badge{SchemaVersion: 1, Label: u.label, Message: FormatPercent(u.value), Color: uptimeColor(u.value)}
	}
	for _, r := range []struct {
		file, label string
		value       int64
	}{
		{"response-time", "response time", p.Time},
		{"response-time-day", "response time 24h", p.TimeDay},
		{"response-time-week", "response time 7d", p.TimeWeek},
		{"response-time-month", "response time 30d", p.TimeMonth},
		{"response-time-year", "response time 1y", p.TimeYear},
	} {
		out[r.file] = Badge{SchemaVersion: 1, Label: r.label, Message: fmt.Sprintf("%d ms", r.value), Color: responseColor(r.value)}
	}
	return out
}

func uptimeColor(v float64) string {
	switch {
	case v > 95:
		return "brightgreen"
	case v > 90:
		return "green"
	case v > 85:
		return "yellowgreen"
	case v > 80:
		return "yellow"
	case v > 75:
		return "orange"
	default:
		return "red"
	}
}

func responseColor(ms int64) string {
	switch {
	case ms < 200:
		return "brightgreen"
	case ms < 400:
		return "green"
	case ms < 600:
		return "yellowgreen"
	case ms < 800:
		return "yellow"
	case ms < 1000:
		return "orange"
	default:
		return "red"
	}
}

func writeFile(root, rel string, data []byte) error {
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("report: create dir for %s: %w", rel, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("report: write %s: %w", rel, err)
	}
	return nil
}
