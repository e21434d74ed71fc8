// Package api implements the HTTP API of the status server.
//
// New(store, opts) returns an http.Handler that serves:
//
//	GET /api/v1/health        fleet state and per-status counts
//	GET /api/v1/sites         all site summaries in generator order
//	GET /api/v1/sites/{slug}  one site summary; 404 if unknown
//	GET /api/v1/snapshot      sites, fleet tally and generated_at
//	GET /api/v1/alerts        firing and recently resolved status alerts
//	GET /metrics              Prometheus text exposition of the summaries
//
// JSON endpoints respond with Content-Type: application/json and return a
// JSON 405 for non-GET methods. Routing uses chi; CORS is applied with
// go-chi/cors from the configured origins; Options.Auth runs after CORS.
package api
