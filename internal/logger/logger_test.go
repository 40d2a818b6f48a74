package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewWithWriter_JSONLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "WARN", "json")

	log.Info().Msg("hidden")
	log.Warn().Str("board_id", "7").Msg("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"board_id":"7"`)
	assert.Contains(t, out, `"level":"warn"`)
}

func TestNewWithWriter_BadLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "chatty", "json")

	log.Debug().Msg("debug line")
	log.Info().Msg("info line")

	assert.NotContains(t, buf.String(), "debug line")
	assert.Contains(t, buf.String(), "info line")
}
