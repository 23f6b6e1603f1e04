package config

import (
	"fmt"

	coresensor "github.com/kilianp07/tempnode/core/sensor"
	"github.com/kilianp07/tempnode/infra/sensor"
)

// Sensor driver modes.
const (
	SensorModeSim = "sim"
	SensorModeIIO = "iio"
)

// SensorConfig selects and configures the temperature driver.
type SensorConfig struct {
	// Mode selects the driver backend: "sim" or "iio".
	Mode string           `json:"mode"`
	Sim  sensor.SimConfig `json:"sim"`
	IIO  sensor.IIOConfig `json:"iio"`
	// Calibration overrides the default millivolt to degree mapping. At
	// least two points are required when set.
	Calibration []coresensor.Point `json:"calibration"`
}

// SetDefaults applies sane defaults.
func (c *SensorConfig) SetDefaults() {
	if c.Mode == "" {
		c.Mode = SensorModeSim
	}
	c.Sim.SetDefaults()
}

// Validate checks mandatory fields.
func (c SensorConfig) Validate() error {
	switch c.Mode {
	case SensorModeSim:
	case SensorModeIIO:
		if err := c.IIO.Validate(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown sensor mode %q", c.Mode)
	}
	if len(c.Calibration) == 1 {
		return fmt.Errorf("calibration requires at least 2 points")
	}
	return nil
}

// NewCalibration builds the configured calibration, falling back to the
// default mapping when no points are given.
func (c SensorConfig) NewCalibration() (coresensor.Calibration, error) {
	if len(c.Calibration) == 0 {
		return coresensor.DefaultCalibration(), nil
	}
	return coresensor.NewCalibration(c.Calibration)
}

// NewDriver builds the configured driver.
func (c SensorConfig) NewDriver() (coresensor.Driver, error) {
	switch c.Mode {
	case SensorModeSim:
		return sensor.NewSim(c.Sim), nil
	case SensorModeIIO:
		cal, err := c.NewCalibration()
		if err != nil {
			return nil, err
		}
		return sensor.NewIIO(c.IIO, cal)
	default:
		return nil, fmt.Errorf("unknown sensor mode %q", c.Mode)
	}
}
