// Package metrics provides the Prometheus and InfluxDB sinks for sweep
// observations, plus the fan-out and HTTP exposition helpers.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/ngworks1909/pulse-backend/core/metrics"
)

// PromSink records fare checks and dispatches in Prometheus metrics.
type PromSink struct {
	fareChecks *prometheus.CounterVec
	minFare    *prometheus.GaugeVec
	dispatches *prometheus.CounterVec
	latency    *prometheus.HistogramVec
}

// NewPromSink registers sweep metrics on the provided Prometheus registerer.
// If reg is nil, the default registerer is used. If the collectors are already
// registered, the existing ones are reused.
func NewPromSink(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	fareChecks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fare_checks_total",
		Help: "Total number of fare lookups recorded per route",
	}, []string{"origin", "destination"})
	minFare := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "fare_min_current",
		Help: "Latest observed minimum fare per route",
	}, []string{"origin", "destination"})
	dispatches := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "alert_dispatches_total",
		Help: "Total number of per-trip notification dispatches",
	}, []string{"trip_id"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "alert_dispatch_latency_seconds",
		Help:    "Time spent sending push notifications per trip",
		Buckets: prometheus.DefBuckets,
	}, []string{"trip_id"})

	if err := reg.Register(fareChecks); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			fareChecks = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(minFare); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			minFare = are.ExistingCollector.(*prometheus.GaugeVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(dispatches); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			dispatches = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(latency); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			latency = are.ExistingCollector.(*prometheus.HistogramVec)
		} else {
			return nil, err
		}
	}

	return &PromSink{fareChecks: fareChecks, minFare: minFare, dispatches: dispatches, latency: latency}, nil
}

// RecordFareCheck increments the route counter and updates the min fare gauge.
func (s *PromSink) RecordFareCheck(checks []coremetrics.FareCheck) error {
	for _, c := range checks {
		s.fareChecks.WithLabelValues(c.Origin, c.Destination).Inc()
		s.minFare.WithLabelValues(c.Origin, c.Destination).Set(c.MinFare)
	}
	return nil
}

// RecordDispatch increments the dispatch counter and observes latency.
func (s *PromSink) RecordDispatch(dispatches []coremetrics.Dispatch) error {
	for _, d := range dispatches {
		s.dispatches.WithLabelValues(d.TripID).Inc()
		s.latency.WithLabelValues(d.TripID).Observe(d.Latency.Seconds())
	}
	return nil
}
