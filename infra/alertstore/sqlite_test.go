package alertstore

import (
	"context"
	"testing"
	"time"

	"github.com/ngworks1909/pulse-backend/core/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	st, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func seedTrip(t *testing.T, st *SQLiteStore, id string, travelDate time.Time, alerts ...model.Alert) {
	t.Helper()
	ctx := context.Background()
	trip := model.Trip{
		ID:          id,
		Origin:      model.City{Code: "HYD", Name: "Hyderabad"},
		Destination: model.City{Code: "BLR", Name: "Bangalore"},
		TravelDate:  travelDate,
	}
	if err := st.SaveTrip(ctx, trip); err != nil {
		t.Fatalf("save trip: %v", err)
	}
	for _, a := range alerts {
		if err := st.SaveUser(ctx, a.UserID, a.PushToken); err != nil {
			t.Fatalf("save user: %v", err)
		}
		if err := st.SaveAlert(ctx, id, a); err != nil {
			t.Fatalf("save alert: %v", err)
		}
	}
}

func TestPendingTripsFiltersDateAndNotified(t *testing.T) {
	st := newTestStore(t)
	today := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)

	seedTrip(t, st, "future", today.AddDate(0, 0, 24),
		model.Alert{ID: "a1", UserID: "u1", TargetPrice: 500, PushToken: "tok1"},
		model.Alert{ID: "a2", UserID: "u2", TargetPrice: 300, PushToken: "tok2", Notified: true},
	)
	seedTrip(t, st, "past", today.AddDate(0, 0, -1),
		model.Alert{ID: "a3", UserID: "u3", TargetPrice: 400, PushToken: "tok3"},
	)
	seedTrip(t, st, "quiet", today.AddDate(0, 0, 5),
		model.Alert{ID: "a4", UserID: "u4", TargetPrice: 200, PushToken: "tok4", Notified: true},
	)

	trips, err := st.PendingTrips(context.Background(), today)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(trips) != 1 {
		t.Fatalf("expected 1 candidate trip, got %d", len(trips))
	}
	ta := trips[0]
	if ta.Trip.ID != "future" || ta.Trip.Origin.Code != "HYD" {
		t.Fatalf("unexpected trip %+v", ta.Trip)
	}
	if len(ta.Alerts) != 1 || ta.Alerts[0].ID != "a1" || ta.Alerts[0].PushToken != "tok1" {
		t.Fatalf("unexpected alerts %+v", ta.Alerts)
	}
}

func TestPendingTripsSameDayIncluded(t *testing.T) {
	st := newTestStore(t)
	today := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)
	seedTrip(t, st, "today", today, model.Alert{ID: "a1", UserID: "u1", TargetPrice: 100, PushToken: "tok"})

	trips, err := st.PendingTrips(context.Background(), today)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(trips) != 1 {
		t.Fatalf("same-day trip must be a candidate, got %d trips", len(trips))
	}
}

func TestPendingTripsMissingUserTokenIsEmpty(t *testing.T) {
	st := newTestStore(t)
	today := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)
	ctx := context.Background()
	seedTrip(t, st, "t1", today.AddDate(0, 0, 2))
	// alert pointing at a user row that does not exist
	if err := st.SaveAlert(ctx, "t1", model.Alert{ID: "a1", UserID: "ghost", TargetPrice: 100}); err != nil {
		t.Fatalf("save alert: %v", err)
	}

	trips, err := st.PendingTrips(ctx, today)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(trips) != 1 || trips[0].Alerts[0].PushToken != "" {
		t.Fatalf("expected empty token for missing user, got %+v", trips)
	}
}

func TestMarkNotifiedBatch(t *testing.T) {
	st := newTestStore(t)
	today := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)
	seedTrip(t, st, "t1", today.AddDate(0, 0, 3),
		model.Alert{ID: "a1", UserID: "u1", TargetPrice: 500, PushToken: "tok1"},
		model.Alert{ID: "a2", UserID: "u2", TargetPrice: 400, PushToken: "tok2"},
		model.Alert{ID: "a3", UserID: "u3", TargetPrice: 300, PushToken: "tok3"},
	)

	if err := st.MarkNotified(context.Background(), []string{"a1", "a3"}); err != nil {
		t.Fatalf("mark: %v", err)
	}
	trips, err := st.PendingTrips(context.Background(), today)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(trips) != 1 || len(trips[0].Alerts) != 1 || trips[0].Alerts[0].ID != "a2" {
		t.Fatalf("expected only a2 pending, got %+v", trips)
	}
}

func TestMarkNotifiedEmptySet(t *testing.T) {
	st := newTestStore(t)
	if err := st.MarkNotified(context.Background(), nil); err != nil {
		t.Fatalf("empty mark should be a no-op, got %v", err)
	}
}

func TestSnapshotsAppendAndQuery(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2025, 12, 1, 10, 0, 0, 0, time.UTC)
	for i, fare := range []float64{480, 520, 450} {
		snap := model.Snapshot{TripID: "t1", Fare: fare, MeanFare: fare + 100, Quotes: 3, Timestamp: base.Add(time.Duration(i) * time.Hour)}
		if err := st.AppendSnapshot(ctx, snap); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	if err := st.AppendSnapshot(ctx, model.Snapshot{TripID: "t2", Fare: 999, MeanFare: 999, Quotes: 1, Timestamp: base}); err != nil {
		t.Fatalf("append: %v", err)
	}

	snaps, err := st.Snapshots(ctx, "t1", time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(snaps) != 3 {
		t.Fatalf("expected 3 snapshots, got %d", len(snaps))
	}
	if snaps[0].Fare != 480 || snaps[2].Fare != 450 {
		t.Fatalf("unexpected order %+v", snaps)
	}

	windowed, err := st.Snapshots(ctx, "t1", base.Add(30*time.Minute), base.Add(90*time.Minute))
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(windowed) != 1 || windowed[0].Fare != 520 {
		t.Fatalf("unexpected windowed result %+v", windowed)
	}
}
