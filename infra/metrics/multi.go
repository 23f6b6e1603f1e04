package metrics

import (
	coremetrics "github.com/kilianp07/tempnode/core/metrics"
	"github.com/kilianp07/tempnode/core/sensor"
)

// MultiSink fans records out to multiple sinks.
type MultiSink struct {
	Sinks []coremetrics.MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...coremetrics.MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordCommand forwards the record to all sinks, returning the first error
// encountered.
func (m *MultiSink) RecordCommand(result string) error {
	for _, s := range m.Sinks {
		if err := s.RecordCommand(result); err != nil {
			return err
		}
	}
	return nil
}

// RecordSample forwards the reading to all sinks.
func (m *MultiSink) RecordSample(r sensor.Reading) error {
	for _, s := range m.Sinks {
		if err := s.RecordSample(r); err != nil {
			return err
		}
	}
	return nil
}

// RecordInvocation forwards the invocation summary to all sinks.
func (m *MultiSink) RecordInvocation(inv coremetrics.Invocation) error {
	for _, s := range m.Sinks {
		if err := s.RecordInvocation(inv); err != nil {
			return err
		}
	}
	return nil
}
