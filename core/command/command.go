package command

import "time"

// Kind identifies the command carried by a Command value.
type Kind int

const (
	// KindMeasure requests a timed series of temperature samples.
	KindMeasure Kind = iota
)

// String returns the wire name of the command kind.
func (k Kind) String() string {
	switch k {
	case KindMeasure:
		return "measure"
	default:
		return "unknown"
	}
}

// MeasureRequest describes one sampling invocation: how many samples to take
// and how long to wait between consecutive samples.
type MeasureRequest struct {
	Amount int
	Delay  time.Duration
}

// Command is a tagged variant over the supported command kinds. Only the
// payload matching Kind is meaningful.
type Command struct {
	Kind    Kind
	Measure MeasureRequest
}
