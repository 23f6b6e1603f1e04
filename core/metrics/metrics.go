// Package metrics defines the sink interface measurement events are recorded
// through. Sinks like the Prometheus and InfluxDB implementations live in
// infra/metrics and can be combined with a multi sink.
package metrics

import (
	"errors"
	"time"

	"github.com/kilianp07/tempnode/core/sampling"
	"github.com/kilianp07/tempnode/core/sensor"
)

// Command results recorded by RecordCommand.
const (
	CommandAccepted = "accepted"
	CommandRejected = "rejected"
	CommandBusy     = "busy"
)

// Invocation outcomes recorded by RecordInvocation.
const (
	OutcomeOK             = "ok"
	OutcomeSensorFailure  = "sensor_failure"
	OutcomePublishFailure = "publish_failure"
)

// Config defines settings for metrics sinks.
type Config struct {
	PrometheusEnabled bool   `json:"prometheus_enabled"`
	PrometheusPort    string `json:"prometheus_port"`
	InfluxEnabled     bool   `json:"influx_enabled"`
	InfluxURL         string `json:"influx_url"`
	InfluxToken       string `json:"influx_token"`
	InfluxOrg         string `json:"influx_org"`
	InfluxBucket      string `json:"influx_bucket"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.PrometheusPort == "" {
		c.PrometheusPort = ":9090"
	}
}

// Invocation summarizes one finished measure command.
type Invocation struct {
	Amount    int
	Published int
	Duration  time.Duration
	Outcome   string
}

// MetricsSink records measurement events.
type MetricsSink interface {
	// RecordCommand counts a received command by result.
	RecordCommand(result string) error
	// RecordSample records one published reading.
	RecordSample(r sensor.Reading) error
	// RecordInvocation records a finished invocation.
	RecordInvocation(inv Invocation) error
}

// NopSink discards all records.
type NopSink struct{}

func (NopSink) RecordCommand(string) error        { return nil }
func (NopSink) RecordSample(sensor.Reading) error { return nil }
func (NopSink) RecordInvocation(Invocation) error { return nil }

// OutcomeOf classifies the error returned by a sampling loop.
func OutcomeOf(err error) string {
	if err == nil {
		return OutcomeOK
	}
	var lerr *sampling.LoopError
	if errors.As(err, &lerr) && lerr.Stage == sampling.StagePublish {
		return OutcomePublishFailure
	}
	return OutcomeSensorFailure
}
