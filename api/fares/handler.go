// Package fares exposes persisted fare history over HTTP.
package fares

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ngworks1909/pulse-backend/core/store"
)

// NewHandler returns an HTTP handler exposing fare snapshots via
// GET /api/fares. Requests must include an Authorization header with
// "Bearer <token>" when token is non-empty. Supported query parameters:
// trip_id, start and end (RFC3339).
func NewHandler(reader store.SnapshotReader, token string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token != "" {
			auth := r.Header.Get("Authorization")
			if auth != "Bearer "+token {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		var from, to time.Time
		if s := r.URL.Query().Get("start"); s != "" {
			if t, err := time.Parse(time.RFC3339, s); err == nil {
				from = t
			}
		}
		if s := r.URL.Query().Get("end"); s != "" {
			if t, err := time.Parse(time.RFC3339, s); err == nil {
				to = t
			}
		}
		tripID := r.URL.Query().Get("trip_id")
		snaps, err := reader.Snapshots(r.Context(), tripID, from, to)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(snaps); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}
