package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/tempnode/core/metrics"
	"github.com/kilianp07/tempnode/core/sensor"
)

// PromSink records measurement events in Prometheus metrics.
type PromSink struct {
	commands    *prometheus.CounterVec
	samples     prometheus.Counter
	temperature prometheus.Gauge
	invocations *prometheus.HistogramVec
}

// NewPromSink registers the metrics on the default Prometheus registerer.
// The Prometheus server should be started separately with StartPromServer.
func NewPromSink() (coremetrics.MetricsSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (coremetrics.MetricsSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	commands := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "measure_commands_total",
		Help: "Total number of received measure commands by result",
	}, []string{"result"})
	samples := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "samples_published_total",
		Help: "Total number of published temperature samples",
	})
	temperature := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "temperature_celsius",
		Help: "Last published temperature",
	})
	invocations := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "measure_invocation_seconds",
		Help:    "Duration of a complete measure invocation",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})

	if err := reg.Register(commands); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			commands = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(samples); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			samples = are.ExistingCollector.(prometheus.Counter)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(temperature); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			temperature = are.ExistingCollector.(prometheus.Gauge)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(invocations); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			invocations = are.ExistingCollector.(*prometheus.HistogramVec)
		} else {
			return nil, err
		}
	}

	return &PromSink{
		commands:    commands,
		samples:     samples,
		temperature: temperature,
		invocations: invocations,
	}, nil
}

// RecordCommand increments the command counter for the result.
func (s *PromSink) RecordCommand(result string) error {
	s.commands.WithLabelValues(result).Inc()
	return nil
}

// RecordSample counts the sample and updates the temperature gauge.
func (s *PromSink) RecordSample(r sensor.Reading) error {
	s.samples.Inc()
	s.temperature.Set(r.Temperature)
	return nil
}

// RecordInvocation observes the invocation duration.
func (s *PromSink) RecordInvocation(inv coremetrics.Invocation) error {
	s.invocations.WithLabelValues(inv.Outcome).Observe(inv.Duration.Seconds())
	return nil
}
