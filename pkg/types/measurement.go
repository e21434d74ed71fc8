package types

import (
	"fmt"
	"math"
	"time"
)

// Measurement is one probe result recorded by an external prober.
// Measurements are immutable once recorded.
type Measurement struct {
	// Timestamp is the instant the probe completed.
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`

	// Success is false when the probe failed outright (connection error,
	// timeout, refused).
	Success bool `json:"success" yaml:"success"`

	// LatencyMs is the observed response time in milliseconds. Never negative.
	LatencyMs float64 `json:"latencyMs" yaml:"latencyMs"`

	// StatusCode is the HTTP status returned by the target, if any.
	StatusCode *int `json:"statusCode,omitempty" yaml:"statusCode,omitempty"`
}

// MalformedMeasurementError reports a record that failed shape validation.
// Index is the position of the record in its source, or -1 when unknown.
type MalformedMeasurementError struct {
	Index  int
	Reason string
}

func (e *MalformedMeasurementError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("malformed measurement: %s", e.Reason)
	}
	return fmt.Sprintf("malformed measurement at index %d: %s", e.Index, e.Reason)
}

// Validate checks the basic shape of m. A zero timestamp and a negative or
// non-finite latency are rejected.
func (m Measurement) Validate() error {
	if m.Timestamp.IsZero() {
		return &MalformedMeasurementError{Index: -1, Reason: "missing timestamp"}
	}
	if math.IsNaN(m.LatencyMs) || math.IsInf(m.LatencyMs, 0) {
		return &MalformedMeasurementError{Index: -1, Reason: "latency is not a finite number"}
	}
	if m.LatencyMs < 0 {
		return &MalformedMeasurementError{Index: -1, Reason: fmt.Sprintf("negative latency %v", m.LatencyMs)}
	}
	return nil
}

// Valid reports whether m passes Validate.
func (m Measurement) Valid() bool { return m.Validate() == nil }

// Code returns the status code and whether one was recorded.
func (m Measurement) Code() (int, bool) {
	if m.StatusCode == nil {
		return 0, false
	}
	return *m.StatusCode, true
}
