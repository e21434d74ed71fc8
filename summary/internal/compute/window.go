package compute

import (
	"math"
	"sort"
	"time"

	"github.com/upstatus/upstatus/pkg/types"
)

// Window is a fixed lookback period.
type Window string

// Supported windows.
const (
	WindowDay   Window = "day"
	WindowWeek  Window = "week"
	WindowMonth Window = "month"
	WindowYear  Window = "year"
	WindowAll   Window = "all"
)

// Windows lists every window from shortest to longest.
var Windows = []Window{WindowDay, WindowWeek, WindowMonth, WindowYear, WindowAll}

// Duration returns the lookback of w. WindowAll returns 0 (unbounded).
func (w Window) Duration() time.Duration {
	switch w {
	case WindowDay:
		return 24 * time.Hour
	case WindowWeek:
		return 7 * 24 * time.Hour
	case WindowMonth:
		return 30 * 24 * time.Hour
	case WindowYear:
		return 365 * 24 * time.Hour
	default:
		return 0
	}
}

// contains reports whether ts falls inside w ending at now.
func (w Window) contains(ts, now time.Time) bool {
	if ts.After(now) {
		return false
	}
	d := w.Duration()
	return d == 0 || !ts.Before(now.Add(-d))
}

// DowntimePolicy selects how downtime minutes are estimated.
type DowntimePolicy int

const (
	// DowntimeGap charges each failing check with the time until the next
	// check (or until now for the latest one).
	DowntimeGap DowntimePolicy = iota

	// DowntimeInterval charges each failing check with a fixed CheckInterval.
	DowntimeInterval
)

// WindowStats is the aggregate for one window.
type WindowStats struct {
	// Uptime is a percentage in [0, 100] with two decimals.
	Uptime float64

	// MeanLatencyMs is the unrounded mean latency of successful checks.
	MeanLatencyMs float64

	// ResponseTimeMs is MeanLatencyMs floored to whole milliseconds.
	ResponseTimeMs int64

	// Checks and Failures count the valid measurements in the window.
	Checks   int
	Failures int
}

// WindowResult holds the aggregates of every window for one site.
type WindowResult struct {
	Day   WindowStats
	Week  WindowStats
	Month WindowStats
	Year  WindowStats
	All   WindowStats

	// DailyMinutesDown is the estimated downtime inside the day window,
	// floored to whole minutes.
	DailyMinutesDown int64
}

// Get returns the stats for w.
func (r WindowResult) Get(w Window) WindowStats {
	switch w {
	case WindowDay:
		return r.Day
	case WindowWeek:
		return r.Week
	case WindowMonth:
		return r.Month
	case WindowYear:
		return r.Year
	default:
		return r.All
	}
}

// Aggregator computes WindowResults. The zero value uses the gap policy.
type Aggregator struct {
	Downtime DowntimePolicy

	// CheckInterval is used by DowntimeInterval.
	CheckInterval time.Duration
}

// ComputeWindows aggregates ms over every window ending at now.
// ms is not modified; it need not be sorted.
func (a Aggregator) ComputeWindows(ms []types.Measurement, now time.Time) WindowResult {
	valid := usable(ms, now)

	var acc [5]accumulator
	for _, m := range valid {
		for i, w := range Windows {
			if w.contains(m.Timestamp, now) {
				acc[i].add(m)
			}
		}
	}

	return WindowResult{
		Day:              acc[0].stats(),
		Week:             acc[1].stats(),
		Month:            acc[2].stats(),
		Year:             acc[3].stats(),
		All:              acc[4].stats(),
		DailyMinutesDown: a.minutesDown(valid, now),
	}
}

// minutesDown estimates downtime inside the day window. valid must be sorted
// oldest first and contain nothing after now.
func (a Aggregator) minutesDown(valid []types.Measurement, now time.Time) int64 {
	var down time.Duration
	for i, m := range valid {
		if m.Success || !WindowDay.contains(m.Timestamp, now) {
			continue
		}
		switch a.Downtime {
		case DowntimeInterval:
			down += a.CheckInterval
		default:
			end := now
			if i+1 < len(valid) {
				end = valid[i+1].Timestamp
			}
			down += end.Sub(m.Timestamp)
		}
	}
	return int64(down / time.Minute)
}

// usable returns the valid measurements at or before now, sorted oldest first.
func usable(ms []types.Measurement, now time.Time) []types.Measurement {
	out := make([]types.Measurement, 0, len(ms))
	for _, m := range ms {
		if m.Valid() && !m.Timestamp.After(now) {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}

type accumulator struct {
	total, successes int
	latencySum       float64
}

func (a *accumulator) add(m types.Measurement) {
	a.total++
	if m.Success {
		a.successes++
		a.latencySum += m.LatencyMs
	}
}

func (a accumulator) stats() WindowStats {
	if a.total == 0 {
		return WindowStats{Uptime: 100}
	}
	st := WindowStats{
		Uptime:   percent(a.successes, a.total),
		Checks:   a.total,
		Failures: a.total - a.successes,
	}
	if a.successes > 0 {
		st.MeanLatencyMs = a.latencySum / float64(a.successes)
		st.ResponseTimeMs = int64(math.Floor(st.MeanLatencyMs))
	}
	return st
}

// percent returns 100*part/whole rounded half-up to two decimals. The
// rounding is done on integers so exact ties such as 23/4000 go up.
func percent(part, whole int) float64 {
	if whole <= 0 {
		return 100
	}
	p, w := int64(part), int64(whole)
	return float64((20000*p+w)/(2*w)) / 100
}
