package model

import "time"

// City identifies a stop in the fare search network.
type City struct {
	Code string
	Name string
}

// Trip represents a monitored route on a specific travel date.
// The travel date is normalized to UTC midnight.
type Trip struct {
	ID          string
	Origin      City
	Destination City
	TravelDate  time.Time
}

// SearchDate formats the travel date the way the fare search API expects it,
// e.g. "25-Dec-2025".
func (t Trip) SearchDate() string {
	return t.TravelDate.UTC().Format("02-Jan-2006")
}

// Route returns a short human-readable route label.
func (t Trip) Route() string {
	return t.Origin.Code + "-" + t.Destination.Code
}
