// Package app wires the configuration into a runnable measurement service:
// sensor driver, MQTT connectivity, metrics sinks and the command agent.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/kilianp07/tempnode/config"
	"github.com/kilianp07/tempnode/core/agent"
	coremetrics "github.com/kilianp07/tempnode/core/metrics"
	"github.com/kilianp07/tempnode/core/sampling"
	"github.com/kilianp07/tempnode/core/sensor"
	"github.com/kilianp07/tempnode/infra/logger"
	"github.com/kilianp07/tempnode/infra/metrics"
	"github.com/kilianp07/tempnode/infra/mqtt"
	"github.com/kilianp07/tempnode/internal/eventbus"
)

// latePublisher lets the agent exist before the MQTT client it publishes
// through does, so that commands delivered right after the broker
// subscription always reach a fully constructed agent. Set must be called
// before the agent runs.
type latePublisher struct {
	mu  sync.Mutex
	pub sampling.Publisher
}

func (p *latePublisher) Set(pub sampling.Publisher) {
	p.mu.Lock()
	p.pub = pub
	p.mu.Unlock()
}

func (p *latePublisher) Publish(r sensor.Reading) error {
	p.mu.Lock()
	pub := p.pub
	p.mu.Unlock()
	if pub == nil {
		return errors.New("publisher not bound")
	}
	return pub.Publish(r)
}

// Service owns the agent and its collaborators.
type Service struct {
	agent  *agent.Agent
	client *mqtt.Client
	bus    *eventbus.Bus[agent.Event]
	sink   coremetrics.MetricsSink
	log    logger.Logger

	promEnabled bool
	promPort    string
}

// New creates a Service from the configuration and connects to the broker.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	drv, err := cfg.Sensor.NewDriver()
	if err != nil {
		return nil, fmt.Errorf("sensor driver: %w", err)
	}

	var sinks []coremetrics.MetricsSink
	if cfg.Metrics.PrometheusEnabled {
		sink, err := metrics.NewPromSink()
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, sink)
	}
	if cfg.Metrics.InfluxEnabled {
		sink := metrics.NewInfluxSinkWithFallback(
			cfg.Metrics.InfluxURL,
			cfg.Metrics.InfluxToken,
			cfg.Metrics.InfluxOrg,
			cfg.Metrics.InfluxBucket,
		)
		sinks = append(sinks, sink)
	}
	var sink coremetrics.MetricsSink = coremetrics.NopSink{}
	if len(sinks) == 1 {
		sink = sinks[0]
	} else if len(sinks) > 1 {
		sink = metrics.NewMultiSink(sinks...)
	}

	svc := &Service{
		bus:         eventbus.New[agent.Event](),
		sink:        sink,
		log:         logg,
		promEnabled: cfg.Metrics.PrometheusEnabled,
		promPort:    cfg.Metrics.PrometheusPort,
	}

	// The agent is built before the MQTT client so that commands delivered
	// as soon as the subscription is live land in its queue; the publisher
	// is bound once the client exists, before the agent runs.
	lp := &latePublisher{}
	ag := agent.New(cfg.Agent, drv, lp, svc.bus, logger.New("agent"))
	svc.agent = ag

	client, err := mqtt.NewClient(cfg.MQTT, func(payload string) {
		_ = ag.Submit(payload)
	})
	if err != nil {
		return nil, fmt.Errorf("mqtt client: %w", err)
	}
	svc.client = client

	pub, err := mqtt.NewReadingPublisher(client, cfg.MQTT)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("reading publisher: %w", err)
	}
	lp.Set(pub)
	return svc, nil
}

// Run starts the service and blocks until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	events := s.bus.Subscribe()
	go s.pumpEvents(events)
	go s.agent.Run(ctx)
	if s.promEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.promPort); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	s.log.Infof("agent running")
	<-ctx.Done()
	return nil
}

// pumpEvents forwards agent lifecycle events to the metrics sink.
func (s *Service) pumpEvents(events <-chan agent.Event) {
	for e := range events {
		var err error
		switch ev := e.(type) {
		case agent.CommandRejected:
			result := coremetrics.CommandRejected
			if errors.Is(ev.Err, agent.ErrBusy) {
				result = coremetrics.CommandBusy
			}
			err = s.sink.RecordCommand(result)
		case agent.CommandStarted:
			err = s.sink.RecordCommand(coremetrics.CommandAccepted)
		case agent.SamplePublished:
			err = s.sink.RecordSample(ev.Reading)
		case agent.CommandFinished:
			err = s.sink.RecordInvocation(coremetrics.Invocation{
				Amount:    ev.Request.Amount,
				Published: ev.Published,
				Duration:  ev.Duration,
				Outcome:   coremetrics.OutcomeOf(ev.Err),
			})
		}
		if err != nil {
			s.log.Errorf("record metric: %v", err)
		}
	}
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	s.bus.Close()
	if s.client != nil {
		s.client.Close()
	}
	if closer, ok := s.sink.(interface{ Close() }); ok {
		closer.Close()
	}
	return nil
}
