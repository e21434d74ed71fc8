package driver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"go.uber.org/multierr"

	"github.com/upstatus/upstatus/pkg/types"
	"github.com/upstatus/upstatus/summary/internal/compute"
	"github.com/upstatus/upstatus/summary/internal/config"
	"github.com/upstatus/upstatus/summary/internal/history"
)

// ErrNoHistoryReadable is returned when history could not be read for any site.
var ErrNoHistoryReadable = errors.New("driver: no site history could be read")

// IconResolutionError reports a site URL a favicon could not be derived from.
type IconResolutionError struct {
	URL string
	Err error
}

func (e *IconResolutionError) Error() string {
	return fmt.Sprintf("resolve icon for %q: %v", e.URL, e.Err)
}

func (e *IconResolutionError) Unwrap() error { return e.Err }

// SiteError is a hard failure confined to one site.
type SiteError struct {
	Slug string
	Err  error
}

func (e *SiteError) Error() string {
	return fmt.Sprintf("site %q: %v", e.Slug, e.Err)
}

func (e *SiteError) Unwrap() error { return e.Err }

// Result is the outcome of one Run.
type Result struct {
	// Sites holds one summary per configured site, in configuration order.
	Sites []types.SiteSummary

	// Windows holds the full aggregate per slug.
	Windows map[string]compute.WindowResult

	Fleet types.Tally

	// Errors lists per-site hard failures. Their sites are still in Sites.
	Errors []*SiteError
}

// Err combines the per-site errors, or returns nil.
func (r *Result) Err() error {
	var err error
	for _, e := range r.Errors {
		err = multierr.Append(err, e)
	}
	return err
}

// Driver aggregates every configured site.
type Driver struct {
	history    history.Reader
	aggregator compute.Aggregator
	now        func() time.Time // injectable for deterministic tests
}

// New returns a Driver reading from r and aggregating with agg.
func New(r history.Reader, agg compute.Aggregator) *Driver {
	return &Driver{history: r, aggregator: agg, now: time.Now}
}

// WithClock replaces the time source used as "now" by Run.
func (d *Driver) WithClock(now func() time.Time) *Driver {
	d.now = now
	return d
}

// AggregatorFor builds the Aggregator described by the downtime settings.
func AggregatorFor(cfg config.DowntimeConfig) compute.Aggregator {
	agg := compute.Aggregator{CheckInterval: cfg.CheckInterval}
	if cfg.Policy == config.PolicyInterval {
		agg.Downtime = compute.DowntimeInterval
	}
	return agg
}

// Run processes sites sequentially. See the package documentation for the
// failure model.
func (d *Driver) Run(ctx context.Context, sites []config.Site) (*Result, error) {
	if len(sites) == 0 {
		return nil, config.ErrNoSites
	}

	now := d.now()
	res := &Result{
		Sites:   make([]types.SiteSummary, 0, len(sites)),
		Windows: make(map[string]compute.WindowResult, len(sites)),
	}

	for _, site := range sites {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("driver: interrupted before %q: %w", site.Slug, err)
		}

		summary, windows, err := d.processSite(ctx, site, now)
		if err != nil {
			slog.Error("driver: site failed", "slug", site.Slug, "err", err)
			res.Errors = append(res.Errors, &SiteError{Slug: site.Slug, Err: err})
		}
		res.Sites = append(res.Sites, summary)
		res.Windows[site.Slug] = windows
		res.Fleet.Add(summary.Status)

		slog.Info("driver: site processed",
			"slug", site.Slug,
			"status", summary.Status,
			"uptime", summary.Uptime,
			"response_time_ms", summary.Time,
		)
	}

	if len(res.Errors) == len(sites) {
		return res, fmt.Errorf("%w: %v", ErrNoHistoryReadable, res.Err())
	}
	return res, nil
}

// processSite always returns a usable summary. A non-nil error means the
// history could not be read and the summary carries defaults.
func (d *Driver) processSite(ctx context.Context, site config.Site, now time.Time) (types.SiteSummary, compute.WindowResult, error) {
	icon, err := ResolveIcon(site)
	if err != nil {
		slog.Warn("driver: using empty icon", "slug", site.Slug, "err", err)
	}

	ms, readErr := d.history.Read(ctx, site.Slug)
	switch {
	case readErr == nil:
	case history.IsNotFound(readErr):
		slog.Info("driver: no history yet", "slug", site.Slug)
		ms, readErr = nil, nil
	default:
		ms = nil
	}

	windows := d.aggregator.ComputeWindows(ms, now)
	status := compute.Classify(notAfter(ms, now), compute.Thresholds{
		MaxResponseTimeMs:   float64(site.MaxResponseTime),
		ExpectedStatusCodes: site.ExpectedStatusCodes,
	})

	return types.SiteSummary{
		Name:             site.Name,
		URL:              site.URL,
		Icon:             icon,
		Slug:             site.Slug,
		Status:           status,
		Uptime:           windows.All.Uptime,
		UptimeDay:        windows.Day.Uptime,
		UptimeWeek:       windows.Week.Uptime,
		UptimeMonth:      windows.Month.Uptime,
		UptimeYear:       windows.Year.Uptime,
		Time:             windows.All.ResponseTimeMs,
		TimeDay:          windows.Day.ResponseTimeMs,
		TimeWeek:         windows.Week.ResponseTimeMs,
		TimeMonth:        windows.Month.ResponseTimeMs,
		TimeYear:         windows.Year.ResponseTimeMs,
		DailyMinutesDown: windows.DailyMinutesDown,
	}, windows, readErr
}

// notAfter drops measurements stamped after now, which no window counts
// either, so that status and windows describe the same records.
func notAfter(ms []types.Measurement, now time.Time) []types.Measurement {
	out := ms[:0:0]
	for _, m := range ms {
		if !m.Timestamp.After(now) {
			out = append(out, m)
		}
	}
	return out
}

// ResolveIcon returns the configured icon, or the DuckDuckGo favicon of the
// URL host.
func ResolveIcon(site config.Site) (string, error) {
	if site.Icon != "" {
		return site.Icon, nil
	}
	u, err := url.Parse(site.URL)
	if err != nil {
		return "", &IconResolutionError{URL: site.URL, Err: err}
	}
	host := u.Hostname()
	if host == "" {
		return "", &IconResolutionError{URL: site.URL, Err: errors.New("no host in url")}
	}
	return "https://icons.duckduckgo.com/ip3/" + host + ".ico", nil
}
