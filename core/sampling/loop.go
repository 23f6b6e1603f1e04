// Package sampling implements the timed measurement loop that answers a
// measure command: read the sensor, publish the reading, wait, repeat.
package sampling

import (
	"time"

	"github.com/kilianp07/tempnode/core/command"
	"github.com/kilianp07/tempnode/core/sensor"
)

// Publisher delivers one reading to the response channel.
type Publisher interface {
	Publish(sensor.Reading) error
}

// PublisherFunc adapts a plain function to the Publisher interface.
type PublisherFunc func(sensor.Reading) error

// Publish implements Publisher.
func (f PublisherFunc) Publish(r sensor.Reading) error { return f(r) }

// Sleeper suspends the calling goroutine for the given duration. The loop
// uses it for the inter-sample delay so tests can substitute a recorder.
type Sleeper interface {
	Sleep(time.Duration)
}

// StdSleeper blocks with time.Sleep.
type StdSleeper struct{}

// Sleep implements Sleeper.
func (StdSleeper) Sleep(d time.Duration) { time.Sleep(d) }

// Loop executes measure requests against a sensor driver and a publisher.
// The zero values of Sleeper and Uptime default to time.Sleep and a constant
// zero uptime.
type Loop struct {
	Driver    sensor.Driver
	Publisher Publisher
	Sleeper   Sleeper
	// Uptime reports how long the agent has been running; its value is
	// stamped on every reading.
	Uptime func() time.Duration
}

// Run performs exactly req.Amount iterations in order: read one temperature,
// publish it with the remaining count, then sleep req.Delay unless this was
// the last sample. The first failure aborts the remaining iterations; samples
// already published are not retracted.
func (l *Loop) Run(req command.MeasureRequest) error {
	sleep := l.Sleeper
	if sleep == nil {
		sleep = StdSleeper{}
	}
	for i := 0; i < req.Amount; i++ {
		temp, err := l.Driver.ReadTemperature()
		if err != nil {
			return &LoopError{Stage: StageSensor, Sample: i, Err: err}
		}
		r := sensor.Reading{
			Remaining:   req.Amount - 1 - i,
			Temperature: temp,
		}
		if l.Uptime != nil {
			r.Uptime = l.Uptime()
		}
		if err := l.Publisher.Publish(r); err != nil {
			return &LoopError{Stage: StagePublish, Sample: i, Err: err}
		}
		if i < req.Amount-1 && req.Delay > 0 {
			sleep.Sleep(req.Delay)
		}
	}
	return nil
}
