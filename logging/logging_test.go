package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewWritesKeyValues(t *testing.T) {
	var buf bytes.Buffer
	log := New("debug", &buf)

	log.Debugw("event decoded", "hook", "INPUT")
	_ = log.Sync()

	out := buf.String()
	assert.Contains(t, out, "event decoded")
	assert.Contains(t, out, "INPUT")
}

func TestNewRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New("warn", &buf)

	log.Infow("hidden")
	log.Warnw("shown")
	_ = log.Sync()

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestNewUnknownLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	log := New("chatty", &buf)

	log.Debugw("debug line")
	log.Infow("info line")
	_ = log.Sync()

	assert.NotContains(t, buf.String(), "debug line")
	assert.Contains(t, buf.String(), "info line")
}
