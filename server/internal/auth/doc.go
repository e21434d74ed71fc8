// Package auth provides API key authentication for the status server's HTTP
// endpoints.
//
// APIKey(mode, header, key) returns chi-compatible middleware. It passes
// every request through unless mode is "apikey" and a key is configured, in
// which case requests without the matching header get a JSON 401.
// CORS preflight requests are never challenged.
package auth
