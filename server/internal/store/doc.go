// Package store holds the latest site summaries read from the generator's
// summary.json. It is safe for concurrent use; Watch reloads the file
// whenever it changes and keeps the previous state when a reload fails.
package store
