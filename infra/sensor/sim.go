// Package sensor provides the temperature driver implementations: a seedable
// random-walk simulator and a Linux industrial-I/O ADC reader.
package sensor

import (
	"errors"
	"math/rand"
	"sync"
	"time"
)

// ErrSimulatedFailure is returned by the simulator when failure injection
// triggers.
var ErrSimulatedFailure = errors.New("simulated sensor failure")

// SimConfig holds parameters for the simulated driver.
type SimConfig struct {
	StartCelsius float64 `json:"start_celsius"`
	MinCelsius   float64 `json:"min_celsius"`
	MaxCelsius   float64 `json:"max_celsius"`
	StepCelsius  float64 `json:"step_celsius"`
	// FailRate is the probability in [0,1] that a read fails.
	FailRate float64 `json:"fail_rate"`
	// Seed fixes the random source; zero seeds from the clock.
	Seed int64 `json:"seed"`
}

// SetDefaults applies sane defaults.
func (c *SimConfig) SetDefaults() {
	if c.StartCelsius == 0 && c.MinCelsius == 0 && c.MaxCelsius == 0 {
		c.StartCelsius = 21
		c.MinCelsius = 15
		c.MaxCelsius = 30
	}
	if c.StepCelsius == 0 {
		c.StepCelsius = 0.2
	}
}

// Sim is a Driver producing a bounded random walk around room temperature.
type Sim struct {
	mu  sync.Mutex
	cfg SimConfig
	cur float64
	rng *rand.Rand
}

// NewSim creates a simulated driver.
func NewSim(cfg SimConfig) *Sim {
	cfg.SetDefaults()
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Sim{
		cfg: cfg,
		cur: cfg.StartCelsius,
		rng: rand.New(rand.NewSource(seed)),
	}
}

// ReadTemperature implements the driver contract.
func (s *Sim) ReadTemperature() (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cfg.FailRate > 0 && s.rng.Float64() < s.cfg.FailRate {
		return 0, ErrSimulatedFailure
	}
	s.cur += (s.rng.Float64()*2 - 1) * s.cfg.StepCelsius
	if s.cur < s.cfg.MinCelsius {
		s.cur = s.cfg.MinCelsius
	}
	if s.cur > s.cfg.MaxCelsius {
		s.cur = s.cfg.MaxCelsius
	}
	return s.cur, nil
}
