package logger

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoggerMethods(t *testing.T) {
	assert.NoError(t, os.Setenv("APP_ENV", "dev"))
	defer func() { assert.NoError(t, os.Unsetenv("APP_ENV")) }()
	l := New("test")
	if l == nil {
		t.Fatalf("nil logger")
	}
	l.Debugf("debug %d", 1)
	l.Debugw("debug", map[string]any{"k": 1})
	l.Infof("info %s", "test")
	l.Warnf("warn")
	l.Errorf("error")
}

func TestLoggerLevelFromEnv(t *testing.T) {
	assert.NoError(t, os.Setenv("LOG_LEVEL", "error"))
	defer func() { assert.NoError(t, os.Unsetenv("LOG_LEVEL")) }()
	l := New("test")
	l.Infof("suppressed")
	l.Errorf("visible")
}
