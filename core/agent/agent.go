// Package agent runs measure commands sequentially. Incoming payloads are
// parsed and queued on a bounded channel drained by a single goroutine, so at
// most one sampling loop is in flight and the sensor and publisher are never
// shared between invocations. A command arriving while the queue is full is
// rejected as busy.
package agent

import (
	"context"
	"errors"
	"time"

	"github.com/kilianp07/tempnode/core/command"
	"github.com/kilianp07/tempnode/core/logger"
	"github.com/kilianp07/tempnode/core/sampling"
	"github.com/kilianp07/tempnode/core/sensor"
	"github.com/kilianp07/tempnode/internal/eventbus"
)

// ErrBusy is returned by Submit when the command queue is full.
var ErrBusy = errors.New("command queue full")

// DefaultQueueSize bounds the backlog of accepted commands.
const DefaultQueueSize = 4

// Config holds the tunables of the agent.
type Config struct {
	// QueueSize bounds the number of accepted commands waiting for
	// execution. Zero selects DefaultQueueSize.
	QueueSize int `json:"queue_size"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.QueueSize <= 0 {
		c.QueueSize = DefaultQueueSize
	}
}

// Agent accepts raw command payloads and executes them one at a time.
type Agent struct {
	cmds  chan command.Command
	loop  *sampling.Loop
	bus   *eventbus.Bus[Event]
	log   logger.Logger
	start time.Time
	now   func() time.Time
}

// New creates an Agent sampling from drv and publishing through pub. Events
// are emitted on bus; bus and log may be nil.
func New(cfg Config, drv sensor.Driver, pub sampling.Publisher, bus *eventbus.Bus[Event], log logger.Logger) *Agent {
	cfg.SetDefaults()
	if log == nil {
		log = logger.NopLogger{}
	}
	a := &Agent{
		cmds:  make(chan command.Command, cfg.QueueSize),
		bus:   bus,
		log:   log,
		start: time.Now(),
		now:   time.Now,
	}
	a.loop = &sampling.Loop{
		Driver: drv,
		Publisher: sampling.PublisherFunc(func(r sensor.Reading) error {
			if err := pub.Publish(r); err != nil {
				return err
			}
			a.publish(SamplePublished{Reading: r})
			return nil
		}),
		Uptime: func() time.Duration { return a.now().Sub(a.start) },
	}
	return a
}

// SetSleeper overrides the inter-sample delay primitive. Intended for tests.
func (a *Agent) SetSleeper(s sampling.Sleeper) { a.loop.Sleeper = s }

// Submit parses the raw payload and queues the command for execution. Parse
// failures and a full queue reject only this command; the agent keeps
// accepting subsequent ones.
func (a *Agent) Submit(raw string) error {
	cmd, err := command.Parse(raw)
	if err != nil {
		a.log.Warnf("rejected command %q: %v", raw, err)
		a.publish(CommandRejected{Raw: raw, Err: err})
		return err
	}
	select {
	case a.cmds <- cmd:
		a.log.Debugf("queued %s: %d samples, %v delay", cmd.Kind, cmd.Measure.Amount, cmd.Measure.Delay)
		return nil
	default:
		a.log.Warnf("rejected command %q: %v", raw, ErrBusy)
		a.publish(CommandRejected{Raw: raw, Err: ErrBusy})
		return ErrBusy
	}
}

// Run drains the queue until ctx is cancelled. A failed invocation aborts
// only itself.
func (a *Agent) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case cmd := <-a.cmds:
			a.execute(cmd)
		}
	}
}

func (a *Agent) execute(cmd command.Command) {
	req := cmd.Measure
	a.publish(CommandStarted{Request: req})
	start := a.now()

	err := a.loop.Run(req)

	published := req.Amount
	if err != nil {
		var lerr *sampling.LoopError
		if errors.As(err, &lerr) {
			published = lerr.Sample
		}
		a.log.Errorf("measure aborted after %d/%d samples: %v", published, req.Amount, err)
	} else {
		a.log.Infof("measure done: %d samples", req.Amount)
	}
	a.publish(CommandFinished{
		Request:   req,
		Published: published,
		Duration:  a.now().Sub(start),
		Err:       err,
	})
}

func (a *Agent) publish(e Event) {
	if a.bus != nil {
		a.bus.Publish(e)
	}
}
