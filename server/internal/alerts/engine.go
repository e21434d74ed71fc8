package alerts

import (
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/upstatus/upstatus/pkg/types"
	"github.com/upstatus/upstatus/server/internal/config"
)

const (
	defaultCooldown = 15 * time.Minute
	maxHistoryLen   = 200
	recentWindow    = time.Hour
)

// Alert states.
const (
	StateFiring   = "firing"
	StateResolved = "resolved"
)

// Alert is one status-change notification for a site.
type Alert struct {
	ID         string       `json:"id"`
	Slug       string       `json:"slug"`
	Name       string       `json:"name"`
	From       types.Status `json:"from"`
	To         types.Status `json:"to"`
	Severity   string       `json:"severity"`
	Message    string       `json:"message"`
	FiredAt    time.Time    `json:"fired_at"`
	ResolvedAt *time.Time   `json:"resolved_at,omitempty"`
	State      string       `json:"state"`
}

// Engine tracks the last known status of every site and raises alerts on
// transitions. Engine is safe for concurrent use.
type Engine struct {
	webhooks []config.WebhookConfig
	cooldown time.Duration
	client   *http.Client
	now      func() time.Time

	mu       sync.Mutex
	last     map[string]types.Status // key: slug
	active   map[string]*Alert
	lastFire map[string]time.Time
	history  []*Alert
}

// New creates an Engine from the alert configuration. An Engine without
// webhooks still tracks alerts for the API.
func New(cfg config.AlertsConfig) *Engine {
	cooldown := cfg.Cooldown
	if cooldown <= 0 {
		cooldown = defaultCooldown
	}
	return &Engine{
		webhooks: cfg.Webhooks,
		cooldown: cooldown,
		client:   &http.Client{Timeout: 10 * time.Second},
		now:      time.Now,
		last:     make(map[string]types.Status),
		active:   make(map[string]*Alert),
		lastFire: make(map[string]time.Time),
	}
}

// Observe compares sites with the previously observed statuses and returns
// the alerts fired or resolved by this call. The first observation of a site
// only records its status. Unknown statuses are ignored. Webhooks are
// delivered asynchronously.
func (e *Engine) Observe(sites []types.SiteSummary) []Alert {
	now := e.now()
	var changed []Alert

	e.mu.Lock()
	for _, s := range sites {
		if s.Status == types.StatusUnknown {
			continue
		}
		prev, seen := e.last[s.Slug]
		e.last[s.Slug] = s.Status
		if !seen || prev == s.Status {
			continue
		}

		switch s.Status {
		case types.StatusUp:
			if a := e.resolve(s.Slug, now); a != nil {
				changed = append(changed, *a)
			}
		case types.StatusDown, types.StatusDegraded:
			if now.Sub(e.lastFire[s.Slug]) <= e.cooldown {
				continue
			}
			a := e.fire(s, prev, now)
			changed = append(changed, *a)
		}
	}
	e.mu.Unlock()

	for i := range changed {
		a := changed[i]
		if a.State == StateFiring {
			slog.Warn("alerts: site status changed",
				"slug", a.Slug, "from", a.From, "to", a.To, "severity", a.Severity)
		} else {
			slog.Info("alerts: site recovered", "slug", a.Slug)
		}
		go e.deliver(&a)
	}
	return changed
}

// fire records a new firing alert. Caller holds e.mu.
func (e *Engine) fire(s types.SiteSummary, prev types.Status, now time.Time) *Alert {
	sev := "warning"
	if s.Status == types.StatusDown {
		sev = "critical"
	}
	a := &Alert{
		ID:       fmt.Sprintf("%s:%d", s.Slug, now.UnixNano()),
		Slug:     s.Slug,
		Name:     s.Name,
		From:     prev,
		To:       s.Status,
		Severity: sev,
		Message:  fmt.Sprintf("%s is %s (was %s)", s.Name, s.Status, prev),
		FiredAt:  now,
		State:    StateFiring,
	}
	// A down <-> degraded switch closes the previous alert.
	if old := e.retire(s.Slug, now); old != nil {
		old.Message = fmt.Sprintf("%s changed from %s to %s", old.Name, old.To, s.Status)
	}
	e.active[s.Slug] = a
	e.lastFire[s.Slug] = now
	return a
}

// resolve closes the open alert for slug, if any. Caller holds e.mu.
func (e *Engine) resolve(slug string, now time.Time) *Alert {
	a := e.retire(slug, now)
	if a != nil {
		a.Message = fmt.Sprintf("%s is up again", a.Name)
	}
	return a
}

// retire moves the open alert for slug into history as resolved.
// Caller holds e.mu.
func (e *Engine) retire(slug string, now time.Time) *Alert {
	a, ok := e.active[slug]
	if !ok {
		return nil
	}
	resolved := now
	a.State = StateResolved
	a.ResolvedAt = &resolved
	delete(e.active, slug)

	e.history = append(e.history, a)
	if len(e.history) > maxHistoryLen {
		e.history = e.history[len(e.history)-maxHistoryLen:]
	}
	return a
}

// Active returns copies of all firing alerts plus alerts resolved within the
// past hour, newest first.
func (e *Engine) Active() []*Alert {
	e.mu.Lock()
	defer e.mu.Unlock()

	cutoff := e.now().Add(-recentWindow)
	out := make([]*Alert, 0, len(e.active))
	for _, a := range e.active {
		cp := *a
		out = append(out, &cp)
	}
	for _, a := range e.history {
		if a.ResolvedAt != nil && a.ResolvedAt.After(cutoff) {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FiredAt.After(out[j].FiredAt) })
	return out
}
