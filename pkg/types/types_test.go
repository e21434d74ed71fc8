package types

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestMeasurementValidate(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name    string
		m       Measurement
		wantErr bool
	}{
		{"valid success", Measurement{Timestamp: ts, Success: true, LatencyMs: 120}, false},
		{"valid failure with zero latency", Measurement{Timestamp: ts}, false},
		{"zero timestamp", Measurement{Success: true, LatencyMs: 10}, true},
		{"negative latency", Measurement{Timestamp: ts, LatencyMs: -1}, true},
		{"NaN latency", Measurement{Timestamp: ts, LatencyMs: math.NaN()}, true},
		{"infinite latency", Measurement{Timestamp: ts, LatencyMs: math.Inf(1)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.m.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				var me *MalformedMeasurementError
				if !errors.As(err, &me) {
					t.Errorf("error type: got %T, want *MalformedMeasurementError", err)
				}
			}
			if tt.m.Valid() == tt.wantErr {
				t.Errorf("Valid() = %v, want %v", tt.m.Valid(), !tt.wantErr)
			}
		})
	}
}

func TestMalformedMeasurementError_Message(t *testing.T) {
	e := &MalformedMeasurementError{Index: 3, Reason: "bad timestamp"}
	if got := e.Error(); got != "malformed measurement at index 3: bad timestamp" {
		t.Errorf("Error(): got %q", got)
	}
}

func TestMeasurementCode(t *testing.T) {
	code := 503
	if c, ok := (Measurement{StatusCode: &code}).Code(); !ok || c != 503 {
		t.Errorf("Code(): got (%d, %v), want (503, true)", c, ok)
	}
	if _, ok := (Measurement{}).Code(); ok {
		t.Error("Code() on record without status: got ok=true")
	}
}

func TestTallyStatus(t *testing.T) {
	tests := []struct {
		name     string
		statuses []Status
		want     FleetStatus
	}{
		{"all up", []Status{StatusUp, StatusUp}, FleetOperational},
		{"unknown does not degrade the fleet", []Status{StatusUp, StatusUnknown}, FleetOperational},
		{"one degraded", []Status{StatusUp, StatusDegraded}, FleetDegraded},
		{"one down one degraded of three", []Status{StatusUp, StatusDown, StatusDegraded}, FleetPartial},
		{"all down", []Status{StatusDown, StatusDown}, FleetComplete},
		{"empty fleet", nil, FleetOperational},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var tally Tally
			for _, s := range tt.statuses {
				tally.Add(s)
			}
			if got := tally.Status(); got != tt.want {
				t.Errorf("Status(): got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTallySummaries(t *testing.T) {
	got := TallySummaries([]SiteSummary{
		{Slug: "a", Status: StatusUp},
		{Slug: "b", Status: StatusDown},
		{Slug: "c", Status: StatusDegraded},
		{Slug: "d", Status: StatusUnknown},
	})
	want := Tally{Total: 4, Up: 1, Down: 1, Degraded: 1, Unknown: 1}
	if got != want {
		t.Errorf("TallySummaries: got %+v, want %+v", got, want)
	}
}
