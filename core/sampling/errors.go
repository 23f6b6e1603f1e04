package sampling

import "fmt"

// Stage identifies which step of an iteration failed.
type Stage int

const (
	// StageSensor covers failures reading the temperature driver.
	StageSensor Stage = iota
	// StagePublish covers failures delivering a reading to the publisher.
	StagePublish
)

// String returns a short name for the stage.
func (s Stage) String() string {
	switch s {
	case StageSensor:
		return "sensor"
	case StagePublish:
		return "publish"
	default:
		return "unknown"
	}
}

// LoopError reports the failure that aborted a sampling invocation. Sample is
// the zero-based index of the iteration that failed.
type LoopError struct {
	Stage  Stage
	Sample int
	Err    error
}

// Error implements the error interface.
func (e *LoopError) Error() string {
	return fmt.Sprintf("%s failure at sample %d: %v", e.Stage, e.Sample, e.Err)
}

// Unwrap returns the underlying cause.
func (e *LoopError) Unwrap() error { return e.Err }
