// Package types defines the shared Go types used by both the summary generator
// and the status server: probe measurements, per-site summaries, the tri-state
// site status and the fleet-level tally derived from it.
//
// summary.json is the wire format between the two binaries; SiteSummary maps
// 1:1 to one element of that array.
package types
