package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/upstatus/upstatus/pkg/metrics"
	"github.com/upstatus/upstatus/pkg/types"
	"github.com/upstatus/upstatus/server/internal/alerts"
	"github.com/upstatus/upstatus/server/internal/store"
)

const (
	// stateUnknown is reported while no summary has been loaded.
	stateUnknown = "unknown"

	defaultAuthHeader = "X-API-Key"
)

// AlertSource lists current alerts.
type AlertSource interface {
	Active() []*alerts.Alert
}

// Options configures the HTTP handler.
type Options struct {
	// AllowedOrigins lists CORS origins; empty allows every origin.
	AllowedOrigins []string

	// Auth, when set, wraps every route after CORS handling.
	Auth func(http.Handler) http.Handler

	// AuthHeader is the request header carrying the API key. It is allowed
	// in CORS preflights; empty means X-API-Key.
	AuthHeader string

	// Alerts backs GET /api/v1/alerts; nil serves an empty list.
	Alerts AlertSource
}

// Handler is the HTTP handler for /api/v1/* and /metrics.
type Handler struct {
	store  *store.Store
	alerts AlertSource
	router chi.Router
	now    func() time.Time
}

// New creates a Handler wired to st and registers all routes.
func New(st *store.Store, opts Options) *Handler {
	h := &Handler{store: st, alerts: opts.Alerts, router: chi.NewRouter(), now: time.Now}

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	keyHeader := opts.AuthHeader
	if keyHeader == "" {
		keyHeader = defaultAuthHeader
	}

	r := h.router
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", keyHeader},
		MaxAge:         300,
	}))
	if opts.Auth != nil {
		r.Use(opts.Auth)
	}
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		jsonErr(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", h.health)
		r.Get("/sites", h.listSites)
		r.Get("/sites/{slug}", h.getSite)
		r.Get("/snapshot", h.snapshot)
		r.Get("/alerts", h.listAlerts)
	})
	r.Get("/metrics", h.metrics)

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

// health returns GET /api/v1/health.
func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	sites := h.store.List()
	tally := types.TallySummaries(sites)
	resp := HealthResponse{
		State:         fleetState(tally),
		SiteCount:     tally.Total,
		UpCount:       tally.Up,
		DegradedCount: tally.Degraded,
		DownCount:     tally.Down,
		UnknownCount:  tally.Unknown,
	}
	if at := h.store.LoadedAt(); !at.IsZero() {
		resp.LoadedAt = at.UTC().Format(time.RFC3339)
	}
	jsonResp(w, http.StatusOK, resp)
}

// listSites returns GET /api/v1/sites.
func (h *Handler) listSites(w http.ResponseWriter, _ *http.Request) {
	jsonResp(w, http.StatusOK, h.store.List())
}

// getSite returns GET /api/v1/sites/{slug}.
func (h *Handler) getSite(w http.ResponseWriter, r *http.Request) {
	site, ok := h.store.Get(chi.URLParam(r, "slug"))
	if !ok {
		jsonErr(w, http.StatusNotFound, "site not found")
		return
	}
	jsonResp(w, http.StatusOK, site)
}

// snapshot returns GET /api/v1/snapshot.
func (h *Handler) snapshot(w http.ResponseWriter, _ *http.Request) {
	jsonResp(w, http.StatusOK, BuildSnapshot(h.store, h.now()))
}

// listAlerts returns GET /api/v1/alerts: firing and recently resolved alerts.
func (h *Handler) listAlerts(w http.ResponseWriter, _ *http.Request) {
	if h.alerts == nil {
		jsonResp(w, http.StatusOK, []struct{}{})
		return
	}
	jsonResp(w, http.StatusOK, h.alerts.Active())
}

// metrics returns GET /metrics in the Prometheus text format.
func (h *Handler) metrics(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", metrics.ContentType())
	if err := metrics.Write(w, metrics.FromSummaries(h.store.List())); err != nil {
		slog.Error("api: write metrics", "err", err)
	}
}

// BuildSnapshot assembles the snapshot payload from the store. It is shared
// by the REST endpoint and the WebSocket hub.
func BuildSnapshot(st *store.Store, now time.Time) SnapshotResponse {
	sites := st.List()
	tally := types.TallySummaries(sites)
	return SnapshotResponse{
		State:       fleetState(tally),
		Fleet:       tally,
		Sites:       sites,
		GeneratedAt: now.UTC().Format(time.RFC3339),
	}
}

// --- helpers ----------------------------------------------------------------

func fleetState(t types.Tally) string {
	if t.Total == 0 {
		return stateUnknown
	}
	return string(t.Status())
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		slog.Debug("api: request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func jsonResp(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func jsonErr(w http.ResponseWriter, code int, msg string) {
	jsonResp(w, code, errorResponse{Error: msg})
}
