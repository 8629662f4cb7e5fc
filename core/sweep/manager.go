package sweep

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ngworks1909/pulse-backend/core/events"
	"github.com/ngworks1909/pulse-backend/core/fare"
	"github.com/ngworks1909/pulse-backend/core/logger"
	"github.com/ngworks1909/pulse-backend/core/metrics"
	"github.com/ngworks1909/pulse-backend/core/model"
	"github.com/ngworks1909/pulse-backend/core/notify"
	"github.com/ngworks1909/pulse-backend/core/store"
	"github.com/ngworks1909/pulse-backend/internal/eventbus"
)

const defaultWorkers = 4

// Manager runs fare sweeps: it pulls candidate trips from the store, checks
// live fares, persists snapshots and dispatches push notifications to every
// alert whose target price is met, marking those alerts notified so the next
// sweep does not re-notify them.
type Manager struct {
	store    store.Store
	source   fare.Source
	notifier notify.Notifier
	sink     metrics.Sink
	bus      eventbus.EventBus
	log      logger.Logger
	workers  int

	mu      sync.Mutex
	journal Journal
	now     func() time.Time
}

// Result summarizes one sweep run.
type Result struct {
	SweepID  string
	Trips    int
	Failed   int
	Notified int
	Started  time.Time
	Duration time.Duration
}

// NewManager creates a new sweep manager. The store, fare source and notifier
// are mandatory. A nil sink disables metric recording, a nil bus disables
// event publication. workers bounds per-trip concurrency; zero or negative
// selects the default of four.
func NewManager(st store.Store, src fare.Source, n notify.Notifier, sink metrics.Sink, bus eventbus.EventBus, log logger.Logger, workers int) (*Manager, error) {
	if st == nil || src == nil || n == nil {
		return nil, fmt.Errorf("sweep: nil parameter provided to NewManager")
	}
	if sink == nil {
		sink = metrics.NopSink{}
	}
	if log == nil {
		log = nopLogger{}
	}
	if workers <= 0 {
		workers = defaultWorkers
	}
	return &Manager{
		store:    st,
		source:   src,
		notifier: n,
		sink:     sink,
		bus:      bus,
		log:      log,
		workers:  workers,
		now:      time.Now,
	}, nil
}

// SetJournal configures the journal used to persist per-trip sweep records.
func (m *Manager) SetJournal(j Journal) {
	m.mu.Lock()
	m.journal = j
	m.mu.Unlock()
}

// SetClock overrides the time source. Used by tests.
func (m *Manager) SetClock(now func() time.Time) {
	if now == nil {
		return
	}
	m.mu.Lock()
	m.now = now
	m.mu.Unlock()
}

// Close releases resources held by the manager.
func (m *Manager) Close() error {
	if m.bus != nil {
		m.bus.Close()
	}
	m.mu.Lock()
	j := m.journal
	m.mu.Unlock()
	if j != nil {
		return j.Close()
	}
	return nil
}

// Run executes one sweep for every tick received on the channel until the
// context is canceled or the channel is closed. Ticks arriving while a sweep
// is in progress are processed sequentially, never concurrently.
func (m *Manager) Run(ctx context.Context, ticks <-chan time.Time) {
	for {
		select {
		case _, ok := <-ticks:
			if !ok {
				return
			}
			m.Sweep(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// Sweep executes one full run. Trips are processed independently through a
// bounded worker pool; no single-trip failure aborts the run.
func (m *Manager) Sweep(ctx context.Context) Result {
	m.mu.Lock()
	clock := m.now
	m.mu.Unlock()

	started := clock()
	res := Result{SweepID: uuid.NewString(), Started: started}

	today := time.Date(started.UTC().Year(), started.UTC().Month(), started.UTC().Day(), 0, 0, 0, 0, time.UTC)
	trips, err := m.store.PendingTrips(ctx, today)
	if err != nil {
		m.log.Errorf("sweep %s: pending trips: %v", res.SweepID, err)
		return res
	}
	res.Trips = len(trips)
	pendingTrips.Set(float64(len(trips)))
	m.log.Infof("sweep %s: %d candidate trips", res.SweepID, len(trips))

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		sem = make(chan struct{}, m.workers)
	)
	for _, ta := range trips {
		wg.Add(1)
		sem <- struct{}{}
		go func(ta model.TripAlerts) {
			defer wg.Done()
			defer func() { <-sem }()
			notified, failed := m.sweepTrip(ctx, res.SweepID, ta)
			mu.Lock()
			if failed {
				res.Failed++
			}
			res.Notified += notified
			mu.Unlock()
		}(ta)
	}
	wg.Wait()

	res.Duration = time.Since(started)
	sweepDuration.Observe(res.Duration.Seconds())
	if m.bus != nil {
		m.bus.Publish(events.SweepCompletedEvent{
			SweepID:  res.SweepID,
			Trips:    res.Trips,
			Failed:   res.Failed,
			Notified: res.Notified,
			Duration: res.Duration,
		})
	}
	m.log.Infof("sweep %s: done, %d trips, %d failed, %d alerts notified", res.SweepID, res.Trips, res.Failed, res.Notified)
	return res
}

// sweepTrip processes a single trip and returns the number of alerts marked
// notified and whether the trip failed this sweep.
func (m *Manager) sweepTrip(ctx context.Context, sweepID string, ta model.TripAlerts) (int, bool) {
	trip := ta.Trip
	rec := Record{SweepID: sweepID, Timestamp: m.clock()(), TripID: trip.ID, Route: trip.Route()}

	quotes, err := m.source.Quotes(ctx, trip.Origin.Code, trip.Destination.Code, trip.SearchDate())
	if err != nil {
		tripsProcessed.WithLabelValues("lookup_failed").Inc()
		m.log.Warnf("sweep %s: fare lookup %s failed: %v", sweepID, trip.Route(), err)
		rec.Error = err.Error()
		m.appendJournal(ctx, rec)
		return 0, true
	}
	if len(quotes) == 0 {
		tripsProcessed.WithLabelValues("no_quotes").Inc()
		m.log.Infof("sweep %s: no quotes for %s on %s", sweepID, trip.Route(), trip.SearchDate())
		rec.Error = "no quotes"
		m.appendJournal(ctx, rec)
		return 0, true
	}

	minFare, meanFare, err := fare.Summary(quotes)
	if err != nil {
		// unreachable given the emptiness check above
		m.log.Errorf("sweep %s: evaluate %s: %v", sweepID, trip.Route(), err)
		return 0, true
	}
	rec.MinFare = minFare
	rec.MeanFare = meanFare
	rec.Quotes = len(quotes)

	// Fare history must not depend on alert outcomes: the snapshot is
	// written as soon as quotes exist. A failed write skips dispatch so the
	// trip is retried wholesale next sweep.
	now := m.clock()()
	snap := model.Snapshot{TripID: trip.ID, Fare: minFare, MeanFare: meanFare, Quotes: len(quotes), Timestamp: now}
	if err := m.store.AppendSnapshot(ctx, snap); err != nil {
		tripsProcessed.WithLabelValues("store_failed").Inc()
		m.log.Errorf("sweep %s: snapshot %s: %v", sweepID, trip.ID, err)
		rec.Error = err.Error()
		m.appendJournal(ctx, rec)
		return 0, true
	}
	if err := m.sink.RecordFareCheck([]metrics.FareCheck{{
		SweepID:     sweepID,
		TripID:      trip.ID,
		Origin:      trip.Origin.Code,
		Destination: trip.Destination.Code,
		MinFare:     minFare,
		MeanFare:    meanFare,
		Quotes:      len(quotes),
		Time:        now,
	}}); err != nil {
		m.log.Errorf("sweep %s: fare check metrics: %v", sweepID, err)
	}
	if m.bus != nil {
		m.bus.Publish(events.FareCheckedEvent{
			SweepID:     sweepID,
			TripID:      trip.ID,
			Origin:      trip.Origin.Code,
			Destination: trip.Destination.Code,
			TravelDate:  trip.TravelDate,
			MinFare:     minFare,
			Quotes:      len(quotes),
		})
	}

	tokens, alertIDs := m.satisfiedAlerts(ta.Alerts, minFare)
	rec.Tokens = len(tokens)
	if len(tokens) == 0 {
		tripsProcessed.WithLabelValues("ok").Inc()
		m.appendJournal(ctx, rec)
		return 0, false
	}

	msg := buildMessage(trip, minFare)
	start := time.Now()
	receipts, sendErr := m.notifier.Send(ctx, tokens, msg)
	latency := time.Since(start)
	dispatchLatency.Observe(latency.Seconds())
	if sendErr != nil {
		m.log.Warnf("sweep %s: push dispatch %s: %v", sweepID, trip.Route(), sendErr)
	}
	delivered, rejected := m.surfaceReceipts(receipts)

	// Policy: an alert is notified once its token was included in a
	// dispatch attempt, not once the provider confirms delivery. Failed
	// sends are not retried within the sweep; the flag still flips so the
	// same quote never notifies twice.
	if err := m.store.MarkNotified(ctx, alertIDs); err != nil {
		tripsProcessed.WithLabelValues("store_failed").Inc()
		m.log.Errorf("sweep %s: CRITICAL: mark notified failed for trip %s after dispatch attempt, alerts %v may be re-notified: %v",
			sweepID, trip.ID, alertIDs, err)
		rec.Error = err.Error()
		m.appendJournal(ctx, rec)
		return 0, true
	}
	alertsNotified.Add(float64(len(alertIDs)))
	tripsProcessed.WithLabelValues("ok").Inc()

	if err := m.sink.RecordDispatch([]metrics.Dispatch{{
		SweepID:   sweepID,
		TripID:    trip.ID,
		Tokens:    len(tokens),
		Delivered: delivered,
		Rejected:  rejected,
		Latency:   latency,
		Time:      m.clock()(),
	}}); err != nil {
		m.log.Errorf("sweep %s: dispatch metrics: %v", sweepID, err)
	}
	if m.bus != nil {
		m.bus.Publish(events.AlertsNotifiedEvent{
			SweepID:  sweepID,
			TripID:   trip.ID,
			AlertIDs: alertIDs,
			Tokens:   len(tokens),
			MinFare:  minFare,
		})
	}
	rec.AlertIDs = alertIDs
	m.appendJournal(ctx, rec)
	return len(alertIDs), false
}

// satisfiedAlerts partitions the trip's alerts against the minimum fare and
// resolves their tokens. Alerts without a usable token are excluded from both
// dispatch and the notified set, keeping them eligible for future sweeps.
// Tokens are deduplicated by normalized value.
func (m *Manager) satisfiedAlerts(alerts []model.Alert, minFare float64) ([]string, []string) {
	var (
		tokens   []string
		alertIDs []string
	)
	for _, a := range alerts {
		if minFare > a.TargetPrice {
			continue
		}
		tok, ok := notify.NormalizeToken(a.PushToken)
		if !ok {
			m.log.Debugf("alert %s: unusable push token, skipping", a.ID)
			continue
		}
		tokens = append(tokens, tok)
		alertIDs = append(alertIDs, a.ID)
	}
	return notify.DedupTokens(tokens), alertIDs
}

// surfaceReceipts publishes permanently rejected tokens for out-of-band
// cleanup and tallies outcomes.
func (m *Manager) surfaceReceipts(receipts []notify.Receipt) (delivered, rejected int) {
	for _, r := range receipts {
		switch r.Outcome {
		case notify.Delivered:
			delivered++
		case notify.RejectedPermanent:
			rejected++
			tokensRejected.Inc()
			m.log.Warnf("push token permanently rejected: %s", r.Reason)
			if m.bus != nil {
				m.bus.Publish(events.TokenRejectedEvent{Token: r.Token, Reason: r.Reason})
			}
		case notify.RejectedTransient:
			rejected++
			m.log.Debugf("push token transiently rejected: %s", r.Reason)
		}
	}
	return delivered, rejected
}

func (m *Manager) appendJournal(ctx context.Context, rec Record) {
	m.mu.Lock()
	j := m.journal
	m.mu.Unlock()
	if j == nil {
		return
	}
	if err := j.Append(ctx, rec); err != nil {
		m.log.Errorf("journal append: %v", err)
	}
}

func (m *Manager) clock() func() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// buildMessage builds the single per-trip notification shared by every
// recipient of that trip.
func buildMessage(trip model.Trip, minFare float64) notify.Message {
	return notify.Message{
		Title: "🚌 New Bus Available",
		Body: fmt.Sprintf("%s ➝ %s | ₹%.0f | %s",
			trip.Origin.Name, trip.Destination.Name, minFare, trip.TravelDate.UTC().Format("Mon Jan 2 2006")),
		Data: map[string]string{
			"type":        "bus_alert",
			"source":      trip.Origin.Name,
			"destination": trip.Destination.Name,
			"fare":        strconv.FormatFloat(minFare, 'f', -1, 64),
			"date":        trip.TravelDate.UTC().Format(time.RFC3339),
		},
	}
}

// nopLogger keeps the manager usable when no logger is wired.
type nopLogger struct{}

func (nopLogger) Debugf(string, ...any)         {}
func (nopLogger) Debugw(string, map[string]any) {}
func (nopLogger) Infof(string, ...any)          {}
func (nopLogger) Warnf(string, ...any)          {}
func (nopLogger) Errorf(string, ...any)         {}
