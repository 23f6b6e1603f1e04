package sensor

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	coresensor "github.com/kilianp07/tempnode/core/sensor"
)

// IIOConfig locates the ADC channel in the Linux industrial-I/O sysfs tree.
type IIOConfig struct {
	// Device is the sysfs directory of the ADC, for example
	// /sys/bus/iio/devices/iio:device0.
	Device string `json:"device"`
	// Channel selects the in_voltageN pair of files.
	Channel int `json:"channel"`
}

// Validate checks mandatory fields.
func (c IIOConfig) Validate() error {
	if c.Device == "" {
		return fmt.Errorf("iio device path is required")
	}
	if c.Channel < 0 {
		return fmt.Errorf("iio channel must not be negative")
	}
	return nil
}

// IIO reads an ADC channel through sysfs and converts the voltage to degrees
// with a calibration. The raw count is multiplied by the channel scale file
// when present, yielding millivolts; without a scale file the raw value is
// taken as millivolts.
type IIO struct {
	rawPath   string
	scalePath string
	cal       coresensor.Calibration
}

// NewIIO creates a sysfs-backed driver.
func NewIIO(cfg IIOConfig, cal coresensor.Calibration) (*IIO, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	prefix := fmt.Sprintf("in_voltage%d", cfg.Channel)
	return &IIO{
		rawPath:   filepath.Join(cfg.Device, prefix+"_raw"),
		scalePath: filepath.Join(cfg.Device, prefix+"_scale"),
		cal:       cal,
	}, nil
}

// ReadTemperature implements the driver contract.
func (d *IIO) ReadTemperature() (float64, error) {
	raw, err := readSysfsFloat(d.rawPath)
	if err != nil {
		return 0, fmt.Errorf("read adc: %w", err)
	}
	scale := 1.0
	if s, err := readSysfsFloat(d.scalePath); err == nil {
		scale = s
	}
	return d.cal.Celsius(raw * scale), nil
}

func readSysfsFloat(path string) (float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(string(data)), 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", path, err)
	}
	return v, nil
}
