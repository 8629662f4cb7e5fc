package sweep

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	tripsProcessed  *prometheus.CounterVec
	alertsNotified  prometheus.Counter
	tokensRejected  prometheus.Counter
	dispatchLatency prometheus.Histogram
	sweepDuration   prometheus.Histogram
	pendingTrips    prometheus.Gauge
)

// newCollectors creates new metric collectors.
func newCollectors() (*prometheus.CounterVec, prometheus.Counter, prometheus.Counter, prometheus.Histogram, prometheus.Histogram, prometheus.Gauge) {
	trips := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sweep_trips_total",
			Help: "Number of trips processed per outcome",
		},
		[]string{"outcome"},
	)
	notified := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sweep_alerts_notified_total",
			Help: "Number of alerts marked notified after a dispatch attempt",
		},
	)
	rejected := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sweep_tokens_rejected_total",
			Help: "Number of push tokens permanently rejected by the provider",
		},
	)
	lat := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sweep_dispatch_latency_seconds",
			Help:    "Latency of push dispatch calls per trip",
			Buckets: prometheus.DefBuckets,
		},
	)
	dur := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sweep_duration_seconds",
			Help:    "Duration of a full sweep",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		},
	)
	pending := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "sweep_pending_trips",
			Help: "Number of candidate trips returned by the last store read",
		},
	)
	return trips, notified, rejected, lat, dur, pending
}

func init() {
	tripsProcessed, alertsNotified, tokensRejected, dispatchLatency, sweepDuration, pendingTrips = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers sweep metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(tripsProcessed, alertsNotified, tokensRejected, dispatchLatency, sweepDuration, pendingTrips)
}

// ResetMetrics reinitializes metrics collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	tripsProcessed, alertsNotified, tokensRejected, dispatchLatency, sweepDuration, pendingTrips = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
