package types

// Status is the classified health of one site.
type Status string

// Site status values. StatusUnknown means there is no data to classify and is
// never treated as up.
const (
	StatusUp       Status = "up"
	StatusDegraded Status = "degraded"
	StatusDown     Status = "down"
	StatusUnknown  Status = "unknown"
)

// FleetStatus summarises the statuses of every site in one run.
type FleetStatus string

// Fleet status values, in increasing order of severity.
const (
	FleetOperational FleetStatus = "operational"
	FleetDegraded    FleetStatus = "degraded"
	FleetPartial     FleetStatus = "partial_outage"
	FleetComplete    FleetStatus = "complete_outage"
)

// Tally counts site statuses across a fleet.
type Tally struct {
	Total    int `json:"total"`
	Up       int `json:"up"`
	Degraded int `json:"degraded"`
	Down     int `json:"down"`
	Unknown  int `json:"unknown"`
}

// Add records one site status.
func (t *Tally) Add(s Status) {
	t.Total++
	switch s {
	case StatusUp:
		t.Up++
	case StatusDegraded:
		t.Degraded++
	case StatusDown:
		t.Down++
	default:
		t.Unknown++
	}
}

// Status derives the fleet status from the counts.
//
//	no down, no degraded   → operational
//	no down, some degraded → degraded
//	every site down        → complete_outage
//	otherwise              → partial_outage
func (t Tally) Status() FleetStatus {
	switch {
	case t.Down == 0 && t.Degraded == 0:
		return FleetOperational
	case t.Down == 0:
		return FleetDegraded
	case t.Down == t.Total:
		return FleetComplete
	default:
		return FleetPartial
	}
}
