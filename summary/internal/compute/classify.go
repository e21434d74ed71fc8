package compute

import (
	"github.com/upstatus/upstatus/pkg/types"
)

// DefaultMaxResponseTimeMs is the latency limit used when Thresholds leaves
// MaxResponseTimeMs at zero.
const DefaultMaxResponseTimeMs = 60000

// Thresholds are the per-site limits a successful check must respect to
// count as up.
type Thresholds struct {
	// MaxResponseTimeMs is the latency above which a check is degraded.
	MaxResponseTimeMs float64

	// ExpectedStatusCodes lists acceptable codes. Empty means 200–399.
	ExpectedStatusCodes []int
}

// Classify returns the status of the most recent valid measurement in ms.
// ms is expected oldest first; only its tail is inspected.
func Classify(ms []types.Measurement, th Thresholds) types.Status {
	for i := len(ms) - 1; i >= 0; i-- {
		if ms[i].Valid() {
			return classifyOne(ms[i], th)
		}
	}
	return types.StatusUnknown
}

func classifyOne(m types.Measurement, th Thresholds) types.Status {
	if !m.Success {
		return types.StatusDown
	}
	limit := th.MaxResponseTimeMs
	if limit <= 0 {
		limit = DefaultMaxResponseTimeMs
	}
	if m.LatencyMs > limit {
		return types.StatusDegraded
	}
	if code, ok := m.Code(); ok && !th.expects(code) {
		return types.StatusDegraded
	}
	return types.StatusUp
}

func (th Thresholds) expects(code int) bool {
	if len(th.ExpectedStatusCodes) == 0 {
		return code >= 200 && code < 400
	}
	for _, c := range th.ExpectedStatusCodes {
		if c == code {
			return true
		}
	}
	return false
}
