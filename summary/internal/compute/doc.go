// Package compute derives per-site health from recorded measurements.
//
// window.go provides Aggregator.ComputeWindows(measurements, now), a pure
// function that rolls measurements up over the day (24h), week (7d),
// month (30d), year (365d) and all-time windows:
//
//	uptime       = 100 * successes / total, 100 when the window is empty,
//	               rounded half-up to two decimals and clamped to [0, 100]
//	responseTime = mean latency of successful checks, 0 when there are none,
//	               floored to whole milliseconds
//
// Records after now and records that fail Measurement.Validate are ignored.
// The day window also carries DailyMinutesDown, estimated by the configured
// DowntimePolicy (gap or interval).
//
// classify.go provides Classify(measurements, thresholds), which looks only at
// the most recent valid record: down when it failed, degraded when it
// succeeded above the latency limit or with an unexpected status code, up
// otherwise, unknown when there is no record.
package compute
