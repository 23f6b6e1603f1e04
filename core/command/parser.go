// Package command defines the textual command grammar understood by the
// measurement agent and its parser. Commands arrive as UTF-8 payloads of the
// form "<name>:<arg1>,<arg2>,..." on the command topic; today the only kind
// is "measure:<amount>,<delay_ms>".
package command

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrUnknownCommand is returned when the command name is not recognized.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrMalformedArguments is returned when the argument list has the wrong
	// arity or a token is not a base-10 unsigned integer.
	ErrMalformedArguments = errors.New("malformed arguments")
	// ErrInvalidAmount is returned when the requested sample count is zero.
	ErrInvalidAmount = errors.New("invalid amount")
)

// Parse converts a raw command string into a Command. It is a pure function:
// a failed parse leaves no partial state and never returns a partially valid
// command. The command name is matched case-sensitively.
func Parse(raw string) (Command, error) {
	name, rest, hasArgs := strings.Cut(raw, ":")
	if name != KindMeasure.String() {
		return Command{}, fmt.Errorf("%w: %q", ErrUnknownCommand, name)
	}
	if !hasArgs {
		return Command{}, fmt.Errorf("%w: expected 2 arguments, got 0", ErrMalformedArguments)
	}
	args := strings.Split(rest, ",")
	if len(args) != 2 {
		return Command{}, fmt.Errorf("%w: expected 2 arguments, got %d", ErrMalformedArguments, len(args))
	}
	amount, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil {
		return Command{}, fmt.Errorf("%w: amount %q is not an unsigned integer", ErrMalformedArguments, args[0])
	}
	delayMS, err := strconv.ParseUint(args[1], 10, 32)
	if err != nil {
		return Command{}, fmt.Errorf("%w: delay %q is not an unsigned integer", ErrMalformedArguments, args[1])
	}
	if amount == 0 {
		return Command{}, fmt.Errorf("%w: nothing to measure", ErrInvalidAmount)
	}
	return Command{
		Kind: KindMeasure,
		Measure: MeasureRequest{
			Amount: int(amount),
			Delay:  time.Duration(delayMS) * time.Millisecond,
		},
	}, nil
}
