package sweep

import (
	"context"
	"time"
)

// Record captures the decision taken for one trip during one sweep.
type Record struct {
	SweepID   string    `json:"sweep_id"`
	Timestamp time.Time `json:"timestamp"`
	TripID    string    `json:"trip_id"`
	Route     string    `json:"route"`
	MinFare   float64   `json:"min_fare"`
	MeanFare  float64   `json:"mean_fare"`
	Quotes    int       `json:"quotes"`
	AlertIDs  []string  `json:"alert_ids,omitempty"`
	Tokens    int       `json:"tokens"`
	Error     string    `json:"error,omitempty"`
}

// Query defines filters for retrieving journal records.
type Query struct {
	Start  time.Time
	End    time.Time
	TripID string
}

// Journal persists per-trip sweep records and supports querying.
type Journal interface {
	Append(ctx context.Context, rec Record) error
	Query(ctx context.Context, q Query) ([]Record, error)
	Close() error
}
