package api

import "github.com/upstatus/upstatus/pkg/types"

// HealthResponse is the payload for GET /api/v1/health.
type HealthResponse struct {
	// State is a FleetStatus value, or "unknown" when no summary is loaded.
	State         string `json:"state"`
	SiteCount     int    `json:"site_count"`
	UpCount       int    `json:"up_count"`
	DegradedCount int    `json:"degraded_count"`
	DownCount     int    `json:"down_count"`
	UnknownCount  int    `json:"unknown_count"`
	LoadedAt      string `json:"loaded_at,omitempty"` // RFC3339
}

// SnapshotResponse is the payload for GET /api/v1/snapshot and the data of
// every WebSocket message.
type SnapshotResponse struct {
	State       string              `json:"state"`
	Fleet       types.Tally         `json:"fleet"`
	Sites       []types.SiteSummary `json:"sites"`
	GeneratedAt string              `json:"generated_at"` // RFC3339
}

// errorResponse is a generic JSON error body.
type errorResponse struct {
	Error string `json:"error"`
}
