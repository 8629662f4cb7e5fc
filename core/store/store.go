package store

import (
	"context"
	"time"

	"github.com/ngworks1909/pulse-backend/core/model"
)

// Store is the persistence surface the sweep engine depends on. The CRUD
// backend owns the schema; the sweep engine only reads candidates and writes
// back fare snapshots and notified flags.
type Store interface {
	// PendingTrips returns trips whose travel date is today or later and
	// that carry at least one un-notified alert. The notified filter is
	// enforced here, not re-checked by the sweep engine.
	PendingTrips(ctx context.Context, today time.Time) ([]model.TripAlerts, error)
	// AppendSnapshot records the fares observed for a trip during one sweep.
	AppendSnapshot(ctx context.Context, snap model.Snapshot) error
	// MarkNotified sets notified=true for all given alerts in one write.
	MarkNotified(ctx context.Context, alertIDs []string) error
}

// SnapshotReader provides read access to persisted fare history.
type SnapshotReader interface {
	Snapshots(ctx context.Context, tripID string, from, to time.Time) ([]model.Snapshot, error)
}
