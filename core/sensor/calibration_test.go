package sensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCalibration_ReferencePoints(t *testing.T) {
	c := DefaultCalibration()
	assert.InDelta(t, 0.0, c.Celsius(2100), 1e-9)
	assert.InDelta(t, 50.0, c.Celsius(1558), 1e-9)
	// Halfway voltage lands halfway between the reference temperatures.
	assert.InDelta(t, 25.0, c.Celsius((2100+1558)/2.0), 1e-9)
}

func TestCalibration_RoundTrip(t *testing.T) {
	c := DefaultCalibration()
	for _, temp := range []float64{-5, 0, 21.5, 50, 80} {
		assert.InDelta(t, temp, c.Celsius(c.Millivolts(temp)), 1e-9)
	}
}

func TestNewCalibration_FitsSyntheticLine(t *testing.T) {
	// Points on y = -0.1x + 210 with no noise.
	pts := []Point{
		{Millivolts: 1000, Celsius: 110},
		{Millivolts: 1500, Celsius: 60},
		{Millivolts: 2000, Celsius: 10},
		{Millivolts: 2100, Celsius: 0},
	}
	c, err := NewCalibration(pts)
	require.NoError(t, err)
	assert.InDelta(t, 85.0, c.Celsius(1250), 1e-9)
}

func TestNewCalibration_Errors(t *testing.T) {
	_, err := NewCalibration([]Point{{Millivolts: 2100}})
	assert.Error(t, err)

	_, err = NewCalibration([]Point{
		{Millivolts: 2100, Celsius: 0},
		{Millivolts: 2100, Celsius: 50},
	})
	assert.Error(t, err)
}
