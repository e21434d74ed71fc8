// Package metrics renders site summaries as Prometheus text exposition.
//
// FromSummaries builds gauge families from a []types.SiteSummary:
//
//	upstatus_site_uptime_percent{slug,window}
//	upstatus_site_response_time_ms{slug,window}
//	upstatus_site_status{slug,status}        one-hot, 1 for the current status
//	upstatus_site_daily_minutes_down{slug}
//	upstatus_fleet_sites{status}
//
// Write encodes families with expfmt. The generator writes the result to
// history/summary.prom; the status server serves it on /metrics.
package metrics
