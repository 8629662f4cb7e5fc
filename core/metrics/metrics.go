package metrics

import "time"

// FareCheck represents one fare lookup result to be recorded.
type FareCheck struct {
	SweepID     string
	TripID      string
	Origin      string
	Destination string
	MinFare     float64
	MeanFare    float64
	Quotes      int
	Time        time.Time
}

// Dispatch represents one per-trip notification dispatch to be recorded.
type Dispatch struct {
	SweepID   string
	TripID    string
	Tokens    int
	Delivered int
	Rejected  int
	Latency   time.Duration
	Time      time.Time
}

// Sink records sweep observations for observability purposes.
type Sink interface {
	RecordFareCheck(checks []FareCheck) error
	RecordDispatch(dispatches []Dispatch) error
}

// NopSink implements Sink with no-op methods.
type NopSink struct{}

func (NopSink) RecordFareCheck([]FareCheck) error { return nil }
func (NopSink) RecordDispatch([]Dispatch) error   { return nil }
