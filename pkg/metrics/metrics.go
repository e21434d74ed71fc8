package metrics

import (
	"fmt"
	"io"
	"sort"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"google.golang.org/protobuf/proto"

	"github.com/upstatus/upstatus/pkg/types"
)

// Metric family names.
const (
	NameUptime      = "upstatus_site_uptime_percent"
	NameResponse    = "upstatus_site_response_time_ms"
	NameStatus      = "upstatus_site_status"
	NameMinutesDown = "upstatus_site_daily_minutes_down"
	NameFleet       = "upstatus_fleet_sites"
)

var siteStatuses = []types.Status{types.StatusUp, types.StatusDegraded, types.StatusDown, types.StatusUnknown}

// NewGauge returns an empty gauge family.
func NewGauge(name, help string) *dto.MetricFamily {
	return &dto.MetricFamily{
		Name: proto.String(name),
		Help: proto.String(help),
		Type: dto.MetricType_GAUGE.Enum(),
	}
}

// AddSample appends one gauge sample with the given labels to mf.
// Labels are emitted sorted by name.
func AddSample(mf *dto.MetricFamily, labels map[string]string, v float64) {
	names := make([]string, 0, len(labels))
	for k := range labels {
		names = append(names, k)
	}
	sort.Strings(names)

	pairs := make([]*dto.LabelPair, 0, len(names))
	for _, k := range names {
		pairs = append(pairs, &dto.LabelPair{Name: proto.String(k), Value: proto.String(labels[k])})
	}
	mf.Metric = append(mf.Metric, &dto.Metric{
		Label: pairs,
		Gauge: &dto.Gauge{Value: proto.Float64(v)},
	})
}

// FromSummaries converts per-site summaries into gauge families.
func FromSummaries(sites []types.SiteSummary) []*dto.MetricFamily {
	uptime := NewGauge(NameUptime, "Uptime percentage per site and window.")
	response := NewGauge(NameResponse, "Mean response time of successful checks in milliseconds per site and window.")
	status := NewGauge(NameStatus, "Current site status, 1 for the active status.")
	down := NewGauge(NameMinutesDown, "Estimated minutes of downtime in the last 24 hours.")
	fleet := NewGauge(NameFleet, "Number of sites per status.")

	for _, s := range sites {
		for _, w := range []struct {
			window string
			up     float64
			rt     int64
		}{
			{"day", s.UptimeDay, s.TimeDay},
			{"week", s.UptimeWeek, s.TimeWeek},
			{"month", s.UptimeMonth, s.TimeMonth},
			{"year", s.UptimeYear, s.TimeYear},
			{"all", s.Uptime, s.Time},
		} {
			AddSample(uptime, map[string]string{"slug": s.Slug, "window": w.window}, w.up)
			AddSample(response, map[string]string{"slug": s.Slug, "window": w.window}, float64(w.rt))
		}
		for _, st := range siteStatuses {
			v := 0.0
			if s.Status == st {
				v = 1
			}
			AddSample(status, map[string]string{"slug": s.Slug, "status": string(st)}, v)
		}
		AddSample(down, map[string]string{"slug": s.Slug}, float64(s.DailyMinutesDown))
	}

	tally := types.TallySummaries(sites)
	AddSample(fleet, map[string]string{"status": string(types.StatusUp)}, float64(tally.Up))
	AddSample(fleet, map[string]string{"status": string(types.StatusDegraded)}, float64(tally.Degraded))
	AddSample(fleet, map[string]string{"status": string(types.StatusDown)}, float64(tally.Down))
	AddSample(fleet, map[string]string{"status": string(types.StatusUnknown)}, float64(tally.Unknown))

	return []*dto.MetricFamily{uptime, response, status, down, fleet}
}

// Write encodes mfs in the Prometheus text format. Families without samples
// are skipped; expfmt rejects them.
func Write(w io.Writer, mfs []*dto.MetricFamily) error {
	for _, mf := range mfs {
		if len(mf.GetMetric()) == 0 {
			continue
		}
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("metrics: encode %s: %w", mf.GetName(), err)
		}
	}
	return nil
}

// ContentType is the Content-Type header value for Write output.
func ContentType() string {
	return string(expfmt.NewFormat(expfmt.TypeTextPlain))
}
