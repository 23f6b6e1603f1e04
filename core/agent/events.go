package agent

import (
	"time"

	"github.com/kilianp07/tempnode/core/command"
	"github.com/kilianp07/tempnode/core/sensor"
)

// Event is emitted on the agent bus as commands move through their lifecycle.
type Event interface{ isEvent() }

// CommandRejected reports a command that never started: either the payload
// failed to parse or the queue was full (Err is ErrBusy).
type CommandRejected struct {
	Raw string
	Err error
}

// CommandStarted reports an invocation leaving the queue.
type CommandStarted struct {
	Request command.MeasureRequest
}

// SamplePublished reports one reading delivered to the response topic.
type SamplePublished struct {
	Reading sensor.Reading
}

// CommandFinished reports the outcome of an invocation. Published counts the
// samples that went out before Err, if any.
type CommandFinished struct {
	Request   command.MeasureRequest
	Published int
	Duration  time.Duration
	Err       error
}

func (CommandRejected) isEvent() {}
func (CommandStarted) isEvent()  {}
func (SamplePublished) isEvent() {}
func (CommandFinished) isEvent() {}
