package metrics

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kilianp07/tempnode/core/sampling"
)

func TestOutcomeOf(t *testing.T) {
	assert.Equal(t, OutcomeOK, OutcomeOf(nil))
	assert.Equal(t, OutcomeSensorFailure, OutcomeOf(&sampling.LoopError{
		Stage: sampling.StageSensor,
		Err:   errors.New("adc"),
	}))
	assert.Equal(t, OutcomePublishFailure, OutcomeOf(&sampling.LoopError{
		Stage: sampling.StagePublish,
		Err:   errors.New("broker"),
	}))
	// A bare error without stage information counts as a sensor failure.
	assert.Equal(t, OutcomeSensorFailure, OutcomeOf(errors.New("boom")))
}

func TestConfigDefaults(t *testing.T) {
	var cfg Config
	cfg.SetDefaults()
	assert.Equal(t, ":9090", cfg.PrometheusPort)
}
