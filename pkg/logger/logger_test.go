package logger

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestNew_ParsesLevel(t *testing.T) {
	log := New("debug", false)
	assert.Equal(t, zerolog.DebugLevel, log.GetLevel())
}

func TestNew_UnknownLevelFallsBackToInfo(t *testing.T) {
	log := New("verbose", false)
	assert.Equal(t, zerolog.InfoLevel, log.GetLevel())

	log = New("", true)
	assert.Equal(t, zerolog.InfoLevel, log.GetLevel())
}

func TestNew_BoundLoggerEmitsEvents(t *testing.T) {
	log := New("disabled", true)
	log.Error().Str("k", "v").Msg("suppressed")
	assert.Equal(t, zerolog.Disabled, log.GetLevel())
}
