package model

import "time"

// Quote is a single price observation returned by the fare source for a trip.
// One bus service can yield several quotes, one per fare class.
type Quote struct {
	Operator  string
	BusType   string
	Departure string
	Fare      float64
}

// Snapshot is the persisted record of the fares observed for a trip during one
// sweep. Snapshots are append-only and written whenever a lookup yields at
// least one quote, independent of alert outcomes.
type Snapshot struct {
	TripID    string
	Fare      float64 // minimum fare across all quotes
	MeanFare  float64
	Quotes    int
	Timestamp time.Time
}
