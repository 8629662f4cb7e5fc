package fares

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ngworks1909/pulse-backend/core/model"
)

type memReader struct{ snaps []model.Snapshot }

func (m *memReader) Snapshots(ctx context.Context, tripID string, from, to time.Time) ([]model.Snapshot, error) {
	var res []model.Snapshot
	for _, s := range m.snaps {
		if tripID != "" && s.TripID != tripID {
			continue
		}
		if !from.IsZero() && s.Timestamp.Before(from) {
			continue
		}
		if !to.IsZero() && s.Timestamp.After(to) {
			continue
		}
		res = append(res, s)
	}
	return res, nil
}

func TestHandler_AuthAndFilters(t *testing.T) {
	base := time.Date(2025, 12, 1, 10, 0, 0, 0, time.UTC)
	reader := &memReader{snaps: []model.Snapshot{
		{TripID: "t1", Fare: 480, MeanFare: 600, Quotes: 3, Timestamp: base},
		{TripID: "t2", Fare: 900, MeanFare: 950, Quotes: 2, Timestamp: base},
	}}
	h := NewHandler(reader, "tok")

	req := httptest.NewRequest("GET", "/api/fares?trip_id=t1", nil)
	req.Header.Set("Authorization", "Bearer tok")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	var out []model.Snapshot
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(out) != 1 || out[0].TripID != "t1" || out[0].Fare != 480 {
		t.Fatalf("unexpected records %+v", out)
	}

	// unauthorized
	req = httptest.NewRequest("GET", "/api/fares", nil)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rr.Code)
	}
}

func TestHandler_TimeWindow(t *testing.T) {
	base := time.Date(2025, 12, 1, 10, 0, 0, 0, time.UTC)
	reader := &memReader{snaps: []model.Snapshot{
		{TripID: "t1", Fare: 480, Timestamp: base},
		{TripID: "t1", Fare: 450, Timestamp: base.Add(2 * time.Hour)},
	}}
	h := NewHandler(reader, "")

	url := "/api/fares?start=" + base.Add(time.Hour).Format(time.RFC3339)
	req := httptest.NewRequest("GET", url, nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	var out []model.Snapshot
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(out) != 1 || out[0].Fare != 450 {
		t.Fatalf("unexpected records %+v", out)
	}
}
