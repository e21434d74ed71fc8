package compute

import (
	"testing"
	"time"

	"github.com/upstatus/upstatus/pkg/types"
)

func withCode(m types.Measurement, code int) types.Measurement {
	m.StatusCode = &code
	return m
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		ms   []types.Measurement
		th   Thresholds
		want types.Status
	}{
		{
			name: "empty history is unknown",
			ms:   nil,
			want: types.StatusUnknown,
		},
		{
			name: "only malformed records is unknown",
			ms:   []types.Measurement{{Success: true}},
			want: types.StatusUnknown,
		},
		{
			name: "latest failed",
			ms:   []types.Measurement{ok(2*time.Hour, 100), fail(time.Hour)},
			want: types.StatusDown,
		},
		{
			name: "latest recovered",
			ms:   []types.Measurement{fail(2 * time.Hour), ok(time.Hour, 100)},
			want: types.StatusUp,
		},
		{
			name: "500ms under a 1000ms limit is up",
			ms:   []types.Measurement{ok(time.Hour, 500)},
			th:   Thresholds{MaxResponseTimeMs: 1000},
			want: types.StatusUp,
		},
		{
			name: "500ms over a 400ms limit is degraded",
			ms:   []types.Measurement{ok(time.Hour, 500)},
			th:   Thresholds{MaxResponseTimeMs: 400},
			want: types.StatusDegraded,
		},
		{
			name: "latency equal to the limit is up",
			ms:   []types.Measurement{ok(time.Hour, 400)},
			th:   Thresholds{MaxResponseTimeMs: 400},
			want: types.StatusUp,
		},
		{
			name: "zero limit uses the 60s default",
			ms:   []types.Measurement{ok(time.Hour, 59000)},
			want: types.StatusUp,
		},
		{
			name: "above the 60s default",
			ms:   []types.Measurement{ok(time.Hour, 61000)},
			want: types.StatusDegraded,
		},
		{
			name: "default codes accept redirects",
			ms:   []types.Measurement{withCode(ok(time.Hour, 10), 301)},
			want: types.StatusUp,
		},
		{
			name: "default codes reject 404 on a successful check",
			ms:   []types.Measurement{withCode(ok(time.Hour, 10), 404)},
			want: types.StatusDegraded,
		},
		{
			name: "explicit codes",
			ms:   []types.Measurement{withCode(ok(time.Hour, 10), 418)},
			th:   Thresholds{ExpectedStatusCodes: []int{200, 418}},
			want: types.StatusUp,
		},
		{
			name: "explicit codes exclude 200",
			ms:   []types.Measurement{withCode(ok(time.Hour, 10), 200)},
			th:   Thresholds{ExpectedStatusCodes: []int{204}},
			want: types.StatusDegraded,
		},
		{
			name: "trailing malformed record is skipped",
			ms:   []types.Measurement{fail(2 * time.Hour), {Success: true, LatencyMs: 10}},
			want: types.StatusDown,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.ms, tt.th); got != tt.want {
				t.Errorf("Classify: got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClassify_IgnoresOlderHistory(t *testing.T) {
	tail := []types.Measurement{ok(2*time.Hour, 700), fail(time.Hour)}
	th := Thresholds{MaxResponseTimeMs: 500}
	want := Classify(tail, th)

	prefixes := [][]types.Measurement{
		{ok(48*time.Hour, 10)},
		{fail(72 * time.Hour), fail(71 * time.Hour)},
		{ok(100*time.Hour, 9000), withCode(ok(99*time.Hour, 1), 500)},
	}
	for i, p := range prefixes {
		ms := append(append([]types.Measurement{}, p...), tail...)
		if got := Classify(ms, th); got != want {
			t.Errorf("prefix %d: got %q, want %q", i, got, want)
		}
	}
}
