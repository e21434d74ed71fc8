package api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/upstatus/upstatus/pkg/types"
	"github.com/upstatus/upstatus/server/internal/alerts"
	"github.com/upstatus/upstatus/server/internal/api"
	"github.com/upstatus/upstatus/server/internal/auth"
	"github.com/upstatus/upstatus/server/internal/config"
	"github.com/upstatus/upstatus/server/internal/store"
)

// --- test helpers -----------------------------------------------------------

func newStore(sites ...types.SiteSummary) *store.Store {
	st := store.New("unused.json")
	if len(sites) > 0 {
		st.Set(sites)
	}
	return st
}

func site(slug string, status types.Status) types.SiteSummary {
	return types.SiteSummary{
		Name:       strings.ToUpper(slug),
		URL:        "https://" + slug + ".example",
		Slug:       slug,
		Status:     status,
		Uptime:     99.5,
		UptimeWeek: 99.75,
		Time:       210,
	}
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(rr.Body).Decode(v); err != nil {
		t.Fatalf("decode JSON: %v (body: %s)", err, rr.Body.String())
	}
}

// --- /api/v1/health ---------------------------------------------------------

func TestHealth_Empty(t *testing.T) {
	h := api.New(newStore(), api.Options{})
	rr := get(t, h, "/api/v1/health")

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q", ct)
	}
	var resp api.HealthResponse
	decode(t, rr, &resp)
	if resp.State != "unknown" {
		t.Errorf("state: got %q, want unknown", resp.State)
	}
	if resp.SiteCount != 0 || resp.LoadedAt != "" {
		t.Errorf("empty health: got %+v", resp)
	}
}

func TestHealth_FleetStates(t *testing.T) {
	tests := []struct {
		name  string
		sites []types.SiteSummary
		want  string
	}{
		{"all up", []types.SiteSummary{site("a", types.StatusUp), site("b", types.StatusUp)}, "operational"},
		{"one degraded", []types.SiteSummary{site("a", types.StatusUp), site("b", types.StatusDegraded)}, "degraded"},
		{"one down", []types.SiteSummary{site("a", types.StatusUp), site("b", types.StatusDown)}, "partial_outage"},
		{"all down", []types.SiteSummary{site("a", types.StatusDown), site("b", types.StatusDown)}, "complete_outage"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := api.New(newStore(tc.sites...), api.Options{})
			var resp api.HealthResponse
			decode(t, get(t, h, "/api/v1/health"), &resp)
			if resp.State != tc.want {
				t.Errorf("state: got %q, want %q", resp.State, tc.want)
			}
			if resp.SiteCount != len(tc.sites) {
				t.Errorf("site_count: got %d, want %d", resp.SiteCount, len(tc.sites))
			}
			if resp.LoadedAt == "" {
				t.Error("loaded_at: empty after Set")
			}
		})
	}
}

// --- /api/v1/sites ----------------------------------------------------------

func TestListSites(t *testing.T) {
	h := api.New(newStore(site("b", types.StatusUp), site("a", types.StatusDown)), api.Options{})
	rr := get(t, h, "/api/v1/sites")
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d", rr.Code)
	}
	var sites []types.SiteSummary
	decode(t, rr, &sites)
	if len(sites) != 2 || sites[0].Slug != "b" || sites[1].Slug != "a" {
		t.Errorf("sites: got %+v", sites)
	}
}

func TestListSites_EmptyIsArray(t *testing.T) {
	rr := get(t, api.New(newStore(), api.Options{}), "/api/v1/sites")
	if body := strings.TrimSpace(rr.Body.String()); body != "[]" {
		t.Errorf("body: got %q, want []", body)
	}
}

func TestGetSite(t *testing.T) {
	h := api.New(newStore(site("acme", types.StatusDegraded)), api.Options{})

	rr := get(t, h, "/api/v1/sites/acme")
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d", rr.Code)
	}
	var s types.SiteSummary
	decode(t, rr, &s)
	if s.Slug != "acme" || s.Status != types.StatusDegraded || s.UptimeWeek != 99.75 {
		t.Errorf("site: got %+v", s)
	}

	rr = get(t, h, "/api/v1/sites/missing")
	if rr.Code != http.StatusNotFound {
		t.Errorf("missing site: got %d, want 404", rr.Code)
	}
	var e map[string]string
	decode(t, rr, &e)
	if e["error"] != "site not found" {
		t.Errorf("error body: got %v", e)
	}
}

// --- /api/v1/snapshot -------------------------------------------------------

func TestSnapshot(t *testing.T) {
	h := api.New(newStore(site("a", types.StatusUp), site("b", types.StatusDown)), api.Options{})
	var resp api.SnapshotResponse
	decode(t, get(t, h, "/api/v1/snapshot"), &resp)

	if resp.State != "partial_outage" {
		t.Errorf("state: got %q", resp.State)
	}
	if resp.Fleet.Total != 2 || resp.Fleet.Up != 1 || resp.Fleet.Down != 1 {
		t.Errorf("fleet: got %+v", resp.Fleet)
	}
	if len(resp.Sites) != 2 {
		t.Errorf("sites: got %d", len(resp.Sites))
	}
	if _, err := time.Parse(time.RFC3339, resp.GeneratedAt); err != nil {
		t.Errorf("generated_at %q: %v", resp.GeneratedAt, err)
	}
}

func TestBuildSnapshot(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.FixedZone("CET", 3600))
	snap := api.BuildSnapshot(newStore(site("a", types.StatusUp)), now)
	if snap.GeneratedAt != "2024-03-15T11:00:00Z" {
		t.Errorf("generated_at: got %q", snap.GeneratedAt)
	}
	if snap.State != "operational" {
		t.Errorf("state: got %q", snap.State)
	}
}

// --- /metrics ---------------------------------------------------------------

func TestMetrics(t *testing.T) {
	h := api.New(newStore(site("acme", types.StatusUp)), api.Options{})
	rr := get(t, h, "/metrics")
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("Content-Type: got %q", ct)
	}
	if !strings.Contains(rr.Body.String(), `upstatus_site_uptime_percent{slug="acme",window="week"} 99.75`) {
		t.Errorf("metrics body missing week uptime:\n%s", rr.Body.String())
	}
}

// --- routing ----------------------------------------------------------------

func TestMethodNotAllowed(t *testing.T) {
	h := api.New(newStore(), api.Options{})
	for _, path := range []string{"/api/v1/health", "/api/v1/sites", "/api/v1/snapshot"} {
		t.Run(path, func(t *testing.T) {
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, path, nil))
			if rr.Code != http.StatusMethodNotAllowed {
				t.Errorf("POST %s: got %d, want 405", path, rr.Code)
			}
		})
	}
}

func TestUnknownRoute(t *testing.T) {
	rr := get(t, api.New(newStore(), api.Options{}), "/api/v1/pipelines")
	if rr.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want 404", rr.Code)
	}
}

func TestCORS(t *testing.T) {
	h := api.New(newStore(), api.Options{AllowedOrigins: []string{"https://status.acme.io"}})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req.Header.Set("Origin", "https://status.acme.io")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "https://status.acme.io" {
		t.Errorf("allowed origin: got %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req.Header.Set("Origin", "https://evil.example")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("disallowed origin: got %q, want empty", got)
	}
}

func TestCORS_PreflightAllowsConfiguredKeyHeader(t *testing.T) {
	preflight := func(h http.Handler, header string) string {
		t.Helper()
		req := httptest.NewRequest(http.MethodOptions, "/api/v1/sites", nil)
		req.Header.Set("Origin", "https://status.acme.io")
		req.Header.Set("Access-Control-Request-Method", http.MethodGet)
		req.Header.Set("Access-Control-Request-Headers", header)
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr.Header().Get("Access-Control-Allow-Origin")
	}

	custom := api.New(newStore(), api.Options{
		AllowedOrigins: []string{"https://status.acme.io"},
		AuthHeader:     "X-Status-Key",
		Auth:           auth.APIKey("apikey", "X-Status-Key", "k"),
	})
	if got := preflight(custom, "X-Status-Key"); got != "https://status.acme.io" {
		t.Errorf("custom header preflight: allow-origin %q", got)
	}

	defaults := api.New(newStore(), api.Options{AllowedOrigins: []string{"https://status.acme.io"}})
	if got := preflight(defaults, "X-API-Key"); got != "https://status.acme.io" {
		t.Errorf("default header preflight: allow-origin %q", got)
	}
	if got := preflight(defaults, "X-Status-Key"); got != "" {
		t.Errorf("unconfigured header preflight: allow-origin %q, want empty", got)
	}
}

// --- /api/v1/alerts ---------------------------------------------------------

func TestAlerts_NilSourceIsEmptyList(t *testing.T) {
	rr := get(t, api.New(newStore(), api.Options{}), "/api/v1/alerts")
	if body := strings.TrimSpace(rr.Body.String()); body != "[]" {
		t.Errorf("body: got %q, want []", body)
	}
}

func TestAlerts_FromEngine(t *testing.T) {
	eng := alerts.New(config.AlertsConfig{})
	eng.Observe([]types.SiteSummary{site("a", types.StatusUp)})
	eng.Observe([]types.SiteSummary{site("a", types.StatusDown)})

	h := api.New(newStore(), api.Options{Alerts: eng})
	var got []alerts.Alert
	decode(t, get(t, h, "/api/v1/alerts"), &got)
	if len(got) != 1 || got[0].Slug != "a" || got[0].State != alerts.StateFiring {
		t.Errorf("alerts: got %+v", got)
	}
}

// --- auth -------------------------------------------------------------------

func TestAuth_AppliesToAllRoutes(t *testing.T) {
	h := api.New(newStore(), api.Options{Auth: auth.APIKey("apikey", "X-API-Key", "secret")})

	for _, path := range []string{"/api/v1/health", "/metrics"} {
		if rr := get(t, h, path); rr.Code != http.StatusUnauthorized {
			t.Errorf("%s without key: got %d, want 401", path, rr.Code)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req.Header.Set("X-API-Key", "secret")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Errorf("with key: got %d, want 200", rr.Code)
	}
}
