package metrics

import coremetrics "github.com/ngworks1909/pulse-backend/core/metrics"

// MultiSink fans sweep observations out to multiple sinks.
type MultiSink struct {
	Sinks []coremetrics.Sink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...coremetrics.Sink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordFareCheck forwards to all sinks, returning the first error encountered.
func (m *MultiSink) RecordFareCheck(checks []coremetrics.FareCheck) error {
	for _, s := range m.Sinks {
		if err := s.RecordFareCheck(checks); err != nil {
			return err
		}
	}
	return nil
}

// RecordDispatch forwards to all sinks, returning the first error encountered.
func (m *MultiSink) RecordDispatch(dispatches []coremetrics.Dispatch) error {
	for _, s := range m.Sinks {
		if err := s.RecordDispatch(dispatches); err != nil {
			return err
		}
	}
	return nil
}
