package model

// Alert is a user's subscription to be notified when the minimum fare for a
// trip drops to or below the target price. The notified flag is one-way: once
// set it is never reset by the sweep engine, and notified alerts are excluded
// from the candidate set by the store's read filter.
type Alert struct {
	ID          string
	UserID      string
	TargetPrice float64
	// PushToken is the raw device token as stored. It may be empty,
	// unwrapped or stale; token resolution decides whether it is usable.
	PushToken string
	Notified  bool
}

// TripAlerts groups a candidate trip with its un-notified alerts for one sweep.
type TripAlerts struct {
	Trip   Trip
	Alerts []Alert
}
