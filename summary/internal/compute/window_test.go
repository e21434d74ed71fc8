package compute

import (
	"math"
	"math/big"
	"testing"
	"time"

	"github.com/upstatus/upstatus/pkg/types"
)

var now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

// almostEqual returns true if a and b are within epsilon of each other.
func almostEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) < epsilon
}

func ok(ago time.Duration, latency float64) types.Measurement {
	return types.Measurement{Timestamp: now.Add(-ago), Success: true, LatencyMs: latency}
}

func fail(ago time.Duration) types.Measurement {
	return types.Measurement{Timestamp: now.Add(-ago)}
}

func TestComputeWindows_Empty(t *testing.T) {
	res := Aggregator{}.ComputeWindows(nil, now)
	for _, w := range Windows {
		st := res.Get(w)
		if st.Uptime != 100 {
			t.Errorf("%s uptime: got %v, want 100", w, st.Uptime)
		}
		if st.ResponseTimeMs != 0 || st.MeanLatencyMs != 0 {
			t.Errorf("%s response time: got %d (%v), want 0", w, st.ResponseTimeMs, st.MeanLatencyMs)
		}
	}
	if res.DailyMinutesDown != 0 {
		t.Errorf("DailyMinutesDown: got %d", res.DailyMinutesDown)
	}
}

func TestComputeWindows_EightOfTenInLastDay(t *testing.T) {
	var ms []types.Measurement
	for i := 0; i < 10; i++ {
		ago := time.Duration(10-i) * time.Hour
		if i == 3 || i == 7 {
			ms = append(ms, fail(ago))
			continue
		}
		ms = append(ms, ok(ago, 500))
	}

	res := Aggregator{}.ComputeWindows(ms, now)
	if res.Day.Uptime != 80 {
		t.Errorf("day uptime: got %v, want 80", res.Day.Uptime)
	}
	if res.Day.ResponseTimeMs != 500 {
		t.Errorf("day response time: got %d, want 500", res.Day.ResponseTimeMs)
	}
	if res.Day.Checks != 10 || res.Day.Failures != 2 {
		t.Errorf("day counts: got %d/%d, want 10/2", res.Day.Checks, res.Day.Failures)
	}
	// Every window sees the same ten records.
	for _, w := range Windows {
		if got := res.Get(w).Uptime; got != 80 {
			t.Errorf("%s uptime: got %v, want 80", w, got)
		}
	}
}

func TestComputeWindows_WindowBoundaries(t *testing.T) {
	future := types.Measurement{Timestamp: now.Add(time.Hour)}
	ms := []types.Measurement{
		fail(400 * 24 * time.Hour), // all only
		ok(300*24*time.Hour, 100),  // year
		ok(20*24*time.Hour, 200),   // month
		fail(5 * 24 * time.Hour),   // week
		ok(24*time.Hour, 400),      // day, exactly on the cutoff
		ok(time.Hour, 600),         // day
		future,                     // ignored
	}
	res := Aggregator{}.ComputeWindows(ms, now)

	tests := []struct {
		w          Window
		wantChecks int
		wantUptime float64
		wantMean   float64
	}{
		{WindowDay, 2, 100, 500},
		{WindowWeek, 3, 66.67, 500},
		{WindowMonth, 4, 75, 400},
		{WindowYear, 5, 80, 325},
		{WindowAll, 6, 66.67, 325},
	}
	for _, tt := range tests {
		t.Run(string(tt.w), func(t *testing.T) {
			st := res.Get(tt.w)
			if st.Checks != tt.wantChecks {
				t.Errorf("checks: got %d, want %d", st.Checks, tt.wantChecks)
			}
			if !almostEqual(st.Uptime, tt.wantUptime, 1e-9) {
				t.Errorf("uptime: got %v, want %v", st.Uptime, tt.wantUptime)
			}
			if !almostEqual(st.MeanLatencyMs, tt.wantMean, 1e-9) {
				t.Errorf("mean latency: got %v, want %v", st.MeanLatencyMs, tt.wantMean)
			}
		})
	}
}

func TestComputeWindows_MembershipIsMonotonic(t *testing.T) {
	var ms []types.Measurement
	for i := 0; i < 500; i++ {
		ago := time.Duration(i*i) * 7 * time.Minute
		if i%3 == 0 {
			ms = append(ms, fail(ago))
		} else {
			ms = append(ms, ok(ago, float64(i)))
		}
	}
	res := Aggregator{}.ComputeWindows(ms, now)
	for i := 1; i < len(Windows); i++ {
		inner, outer := res.Get(Windows[i-1]), res.Get(Windows[i])
		if inner.Checks > outer.Checks {
			t.Errorf("%s has %d checks, more than %s with %d", Windows[i-1], inner.Checks, Windows[i], outer.Checks)
		}
		if inner.Failures > outer.Failures {
			t.Errorf("%s has %d failures, more than %s with %d", Windows[i-1], inner.Failures, Windows[i], outer.Failures)
		}
	}
	for _, w := range Windows {
		if u := res.Get(w).Uptime; u < 0 || u > 100 {
			t.Errorf("%s uptime %v out of [0, 100]", w, u)
		}
	}
}

func TestComputeWindows_Idempotent(t *testing.T) {
	ms := []types.Measurement{ok(3*time.Hour, 123.4), fail(2 * time.Hour), ok(time.Hour, 98.7)}
	a := Aggregator{}
	first := a.ComputeWindows(ms, now)
	second := a.ComputeWindows(ms, now)
	if first != second {
		t.Errorf("results differ:\n%+v\n%+v", first, second)
	}
}

func TestComputeWindows_UnsortedInputIsNotModified(t *testing.T) {
	ms := []types.Measurement{ok(time.Hour, 10), fail(3 * time.Hour), ok(2*time.Hour, 20)}
	first := ms[0]
	res := Aggregator{}.ComputeWindows(ms, now)
	if ms[0] != first {
		t.Error("input slice was reordered")
	}
	if res.Day.Checks != 3 {
		t.Errorf("checks: got %d, want 3", res.Day.Checks)
	}
}

func TestComputeWindows_SkipsMalformed(t *testing.T) {
	ms := []types.Measurement{
		{Timestamp: now.Add(-time.Hour), Success: true, LatencyMs: -5},
		{Success: true, LatencyMs: 5},
		{Timestamp: now.Add(-time.Hour), Success: true, LatencyMs: math.NaN()},
	}
	res := Aggregator{}.ComputeWindows(ms, now)
	if res.Day.Checks != 0 || res.Day.Uptime != 100 || res.Day.ResponseTimeMs != 0 {
		t.Errorf("all-malformed window should be empty: got %+v", res.Day)
	}
}

func TestComputeWindows_RoundsHalfUpAndFloorsLatency(t *testing.T) {
	// 2 of 3 successful → 66.666… → 66.67; latencies 100 and 100.9 → mean 100.45 → 100
	ms := []types.Measurement{ok(3*time.Hour, 100), ok(2*time.Hour, 100.9), fail(time.Hour)}
	res := Aggregator{}.ComputeWindows(ms, now)
	if res.Day.Uptime != 66.67 {
		t.Errorf("uptime: got %v, want 66.67", res.Day.Uptime)
	}
	if !almostEqual(res.Day.MeanLatencyMs, 100.45, 1e-9) {
		t.Errorf("mean latency: got %v", res.Day.MeanLatencyMs)
	}
	if res.Day.ResponseTimeMs != 100 {
		t.Errorf("response time: got %d, want 100", res.Day.ResponseTimeMs)
	}
}

func TestComputeWindows_AllFailed(t *testing.T) {
	res := Aggregator{}.ComputeWindows([]types.Measurement{fail(time.Hour), fail(2 * time.Hour)}, now)
	if res.Day.Uptime != 0 {
		t.Errorf("uptime: got %v, want 0", res.Day.Uptime)
	}
	if res.Day.ResponseTimeMs != 0 {
		t.Errorf("response time with no successes: got %d, want 0", res.Day.ResponseTimeMs)
	}
}

func TestMinutesDown_GapPolicy(t *testing.T) {
	ms := []types.Measurement{
		ok(60*time.Minute, 100),
		fail(50 * time.Minute), // down until the next check: 10m
		fail(40 * time.Minute), // 10m
		ok(30*time.Minute, 100),
		fail(90 * time.Second), // latest: until now, 1.5m
	}
	res := Aggregator{Downtime: DowntimeGap}.ComputeWindows(ms, now)
	if res.DailyMinutesDown != 21 {
		t.Errorf("DailyMinutesDown: got %d, want 21", res.DailyMinutesDown)
	}
}

func TestMinutesDown_IntervalPolicy(t *testing.T) {
	ms := []types.Measurement{
		fail(30 * time.Hour), // outside the day window
		fail(3 * time.Hour),
		ok(2*time.Hour, 100),
		fail(time.Hour),
	}
	a := Aggregator{Downtime: DowntimeInterval, CheckInterval: 5 * time.Minute}
	res := a.ComputeWindows(ms, now)
	if res.DailyMinutesDown != 10 {
		t.Errorf("DailyMinutesDown: got %d, want 10", res.DailyMinutesDown)
	}
}

func TestWindowDuration(t *testing.T) {
	tests := []struct {
		w    Window
		want time.Duration
	}{
		{WindowDay, 24 * time.Hour},
		{WindowWeek, 168 * time.Hour},
		{WindowMonth, 720 * time.Hour},
		{WindowYear, 8760 * time.Hour},
		{WindowAll, 0},
	}
	for _, tt := range tests {
		if got := tt.w.Duration(); got != tt.want {
			t.Errorf("%s: got %v, want %v", tt.w, got, tt.want)
		}
	}
}

func TestPercent(t *testing.T) {
	tests := []struct {
		part, whole int
		want        float64
	}{
		{23, 4000, 0.58},
		{41, 4000, 1.03},
		{1, 8, 12.5},
		{1, 800, 0.13},
		{2, 3, 66.67},
		{9999, 10000, 99.99},
		{199999, 200000, 100},
		{0, 7, 0},
		{7, 7, 100},
		{0, 0, 100},
	}
	for _, tt := range tests {
		if got := percent(tt.part, tt.whole); got != tt.want {
			t.Errorf("percent(%d, %d): got %v, want %v", tt.part, tt.whole, got, tt.want)
		}
	}
}

func TestPercent_MatchesExactHalfUp(t *testing.T) {
	half := big.NewRat(1, 2)
	for n := 1; n <= 1000; n++ {
		for k := 0; k <= n; k++ {
			// floor(10000*k/n + 1/2), exact
			r := new(big.Rat).SetFrac64(int64(10000*k), int64(n))
			r.Add(r, half)
			want := float64(new(big.Int).Quo(r.Num(), r.Denom()).Int64()) / 100
			if got := percent(k, n); got != want {
				t.Fatalf("percent(%d, %d): got %v, want %v", k, n, got, want)
			}
		}
	}
}
