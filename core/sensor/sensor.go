// Package sensor defines the temperature reading model, the driver contract
// hardware backends implement, and the millivolt to degree calibration used
// to turn raw ADC voltages into temperatures.
package sensor

import "time"

// Reading is one published sample. Remaining counts down to zero over an
// invocation, Uptime is the agent uptime at sampling time.
type Reading struct {
	Remaining   int           `json:"remaining"`
	Temperature float64       `json:"temperature"`
	Uptime      time.Duration `json:"-"`
}

// Driver reads the current temperature in degrees Celsius. Implementations
// own the underlying hardware access and may fail on any read.
type Driver interface {
	ReadTemperature() (float64, error)
}

// DriverFunc adapts a plain function to the Driver interface.
type DriverFunc func() (float64, error)

// ReadTemperature implements Driver.
func (f DriverFunc) ReadTemperature() (float64, error) { return f() }
