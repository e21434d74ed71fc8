// Package report turns aggregated site summaries into repository files.
//
// region.go isolates marker-delimited text replacement behind ReplaceRegion
// and ReplaceBlock; nothing else in the generator edits README text directly.
//
// readme.go renders the status table between the configured start/end
// markers, applies the one-time README customisation for repositories created
// from the upptime/upptime template, and rewrites the live status line.
//
// files.go writes history/summary.json, history/summary.prom, the shields.io
// endpoint badges under api/<slug>/ and .gitattributes.
package report
