package events

import "time"

// Event is the closed set of sweep lifecycle events carried by the bus. Kind
// returns a stable identifier used by bridges to route the event, e.g. as an
// MQTT topic suffix.
type Event interface {
	Kind() string
}

// FareCheckedEvent is published after a fare lookup yields quotes.
type FareCheckedEvent struct {
	SweepID     string
	TripID      string
	Origin      string
	Destination string
	TravelDate  time.Time
	MinFare     float64
	Quotes      int
}

func (FareCheckedEvent) Kind() string { return "fare_checked" }

// AlertsNotifiedEvent is published after a dispatch attempt for one trip.
type AlertsNotifiedEvent struct {
	SweepID  string
	TripID   string
	AlertIDs []string
	Tokens   int
	MinFare  float64
}

func (AlertsNotifiedEvent) Kind() string { return "alerts_notified" }

// TokenRejectedEvent is published when the push provider permanently rejects
// a token, so it can be cleaned up out-of-band.
type TokenRejectedEvent struct {
	Token  string
	Reason string
}

func (TokenRejectedEvent) Kind() string { return "token_rejected" }

// SweepCompletedEvent summarizes one sweep run.
type SweepCompletedEvent struct {
	SweepID  string
	Trips    int
	Failed   int
	Notified int
	Duration time.Duration
}

func (SweepCompletedEvent) Kind() string { return "sweep_completed" }
