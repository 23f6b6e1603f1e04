package sensor

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// Reference values of the stock thermistor circuit: 0 degrees at 2100 mV and
// 50 degrees at 1558 mV.
var defaultPoints = []Point{
	{Millivolts: 2100, Celsius: 0},
	{Millivolts: 1558, Celsius: 50},
}

// Point is one calibration measurement pairing an ADC voltage with a known
// temperature.
type Point struct {
	Millivolts float64 `json:"millivolts"`
	Celsius    float64 `json:"celsius"`
}

// Calibration maps ADC millivolts to degrees Celsius along a fitted line.
type Calibration struct {
	slope     float64
	intercept float64
}

// NewCalibration fits a least-squares line through the given points. At least
// two points with distinct voltages are required.
func NewCalibration(points []Point) (Calibration, error) {
	if len(points) < 2 {
		return Calibration{}, fmt.Errorf("calibration requires at least 2 points, got %d", len(points))
	}
	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i] = p.Millivolts
		ys[i] = p.Celsius
	}
	intercept, slope := stat.LinearRegression(xs, ys, nil, false)
	if math.IsNaN(slope) || math.IsInf(slope, 0) || slope == 0 {
		return Calibration{}, fmt.Errorf("calibration points are degenerate")
	}
	return Calibration{slope: slope, intercept: intercept}, nil
}

// DefaultCalibration returns the mapping for the stock thermistor circuit.
func DefaultCalibration() Calibration {
	c, err := NewCalibration(defaultPoints)
	if err != nil {
		panic(err)
	}
	return c
}

// Celsius converts an ADC voltage in millivolts to degrees Celsius.
func (c Calibration) Celsius(millivolts float64) float64 {
	return c.intercept + c.slope*millivolts
}

// Millivolts inverts the mapping, returning the voltage a given temperature
// corresponds to. Used by the simulated driver.
func (c Calibration) Millivolts(celsius float64) float64 {
	return (celsius - c.intercept) / c.slope
}
