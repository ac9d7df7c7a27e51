package logging

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestSetup_Level(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	Setup("debug", "production")
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())

	Setup("WARN", "development")
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())

	Setup("nonsense", "test")
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}
