// Package alertstore provides the SQLite-backed persistence for trips, alerts
// and fare snapshots. The CRUD surface owns trip and alert creation; the sweep
// engine only reads candidates and writes back snapshots and notified flags.
package alertstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ngworks1909/pulse-backend/core/model"
)

// SQLiteStore implements store.Store and store.SnapshotReader.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database at path and ensures schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	schema := `
    CREATE TABLE IF NOT EXISTS trips (
        trip_id TEXT PRIMARY KEY,
        origin_code TEXT NOT NULL,
        origin_name TEXT NOT NULL,
        dest_code TEXT NOT NULL,
        dest_name TEXT NOT NULL,
        travel_date INTEGER NOT NULL
    );
    CREATE TABLE IF NOT EXISTS users (
        user_id TEXT PRIMARY KEY,
        push_token TEXT
    );
    CREATE TABLE IF NOT EXISTS alerts (
        alert_id TEXT PRIMARY KEY,
        trip_id TEXT NOT NULL REFERENCES trips(trip_id),
        user_id TEXT NOT NULL REFERENCES users(user_id),
        target_price REAL NOT NULL,
        notified INTEGER NOT NULL DEFAULT 0
    );
    CREATE TABLE IF NOT EXISTS fare_snapshots (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        trip_id TEXT NOT NULL,
        fare REAL NOT NULL,
        mean_fare REAL NOT NULL,
        quotes INTEGER NOT NULL,
        ts INTEGER NOT NULL
    );
    CREATE INDEX IF NOT EXISTS idx_alerts_trip ON alerts(trip_id, notified);
    CREATE INDEX IF NOT EXISTS idx_snapshots_trip ON fare_snapshots(trip_id, ts);`
	if _, err := db.Exec(schema); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, fmt.Errorf("close db: %v (schema err: %w)", cerr, err)
		}
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// PendingTrips returns trips with travel_date >= today carrying at least one
// un-notified alert, each alert joined with its user's raw push token.
func (s *SQLiteStore) PendingTrips(ctx context.Context, today time.Time) ([]model.TripAlerts, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT t.trip_id, t.origin_code, t.origin_name, t.dest_code, t.dest_name, t.travel_date,
               a.alert_id, a.user_id, a.target_price, COALESCE(u.push_token, '')
        FROM trips t
        JOIN alerts a ON a.trip_id = t.trip_id AND a.notified = 0
        LEFT JOIN users u ON u.user_id = a.user_id
        WHERE t.travel_date >= ?
        ORDER BY t.trip_id`, today.Unix())
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []model.TripAlerts
	for rows.Next() {
		var (
			trip  model.Trip
			alert model.Alert
			date  int64
		)
		if err := rows.Scan(&trip.ID, &trip.Origin.Code, &trip.Origin.Name,
			&trip.Destination.Code, &trip.Destination.Name, &date,
			&alert.ID, &alert.UserID, &alert.TargetPrice, &alert.PushToken); err != nil {
			return nil, err
		}
		trip.TravelDate = time.Unix(date, 0).UTC()
		if len(out) == 0 || out[len(out)-1].Trip.ID != trip.ID {
			out = append(out, model.TripAlerts{Trip: trip})
		}
		out[len(out)-1].Alerts = append(out[len(out)-1].Alerts, alert)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// AppendSnapshot inserts one fare history row.
func (s *SQLiteStore) AppendSnapshot(ctx context.Context, snap model.Snapshot) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO fare_snapshots (trip_id, fare, mean_fare, quotes, ts) VALUES (?, ?, ?, ?, ?)`,
		snap.TripID, snap.Fare, snap.MeanFare, snap.Quotes, snap.Timestamp.Unix())
	return err
}

// MarkNotified flips notified for all given alerts in a single statement.
func (s *SQLiteStore) MarkNotified(ctx context.Context, alertIDs []string) error {
	if len(alertIDs) == 0 {
		return nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(alertIDs)), ",")
	args := make([]any, len(alertIDs))
	for i, id := range alertIDs {
		args[i] = id
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE alerts SET notified = 1 WHERE alert_id IN (`+placeholders+`)`, args...)
	return err
}

// Snapshots returns the fare history for a trip within [from, to]. Zero times
// disable the corresponding bound.
func (s *SQLiteStore) Snapshots(ctx context.Context, tripID string, from, to time.Time) ([]model.Snapshot, error) {
	query := `SELECT trip_id, fare, mean_fare, quotes, ts FROM fare_snapshots WHERE 1=1`
	var args []any
	if tripID != "" {
		query += ` AND trip_id = ?`
		args = append(args, tripID)
	}
	if !from.IsZero() {
		query += ` AND ts >= ?`
		args = append(args, from.Unix())
	}
	if !to.IsZero() {
		query += ` AND ts <= ?`
		args = append(args, to.Unix())
	}
	query += ` ORDER BY ts`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []model.Snapshot
	for rows.Next() {
		var (
			snap model.Snapshot
			ts   int64
		)
		if err := rows.Scan(&snap.TripID, &snap.Fare, &snap.MeanFare, &snap.Quotes, &ts); err != nil {
			return nil, err
		}
		snap.Timestamp = time.Unix(ts, 0).UTC()
		out = append(out, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// SaveTrip upserts a trip row. Used by the collaborator surface and tests.
func (s *SQLiteStore) SaveTrip(ctx context.Context, trip model.Trip) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO trips (trip_id, origin_code, origin_name, dest_code, dest_name, travel_date)
        VALUES (?, ?, ?, ?, ?, ?)
        ON CONFLICT(trip_id) DO UPDATE SET travel_date = excluded.travel_date`,
		trip.ID, trip.Origin.Code, trip.Origin.Name,
		trip.Destination.Code, trip.Destination.Name, trip.TravelDate.Unix())
	return err
}

// SaveUser upserts a user's push token.
func (s *SQLiteStore) SaveUser(ctx context.Context, userID, pushToken string) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO users (user_id, push_token) VALUES (?, ?)
        ON CONFLICT(user_id) DO UPDATE SET push_token = excluded.push_token`,
		userID, pushToken)
	return err
}

// SaveAlert inserts an alert row.
func (s *SQLiteStore) SaveAlert(ctx context.Context, tripID string, alert model.Alert) error {
	notified := 0
	if alert.Notified {
		notified = 1
	}
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO alerts (alert_id, trip_id, user_id, target_price, notified)
        VALUES (?, ?, ?, ?, ?)`,
		alert.ID, tripID, alert.UserID, alert.TargetPrice, notified)
	return err
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }
