// Package driver runs the per-site aggregation loop.
//
// Driver.Run(ctx, sites) processes sites one at a time in configuration
// order: read history, ComputeWindows, Classify, then append a
// types.SiteSummary and update the fleet Tally. Output order always matches
// input order.
//
// Failures stay local to a site:
//   - icon resolution errors leave the icon empty
//   - a missing history (history.NotFoundError) yields default windows and
//     status unknown
//   - any other read error is recorded as a SiteError; the site is still
//     listed with default windows and status unknown
//
// Run fails as a whole only when no sites are given (config.ErrNoSites), when
// every site hit a read error (ErrNoHistoryReadable), or when ctx is cancelled
// between sites.
package driver
