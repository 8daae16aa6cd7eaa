package logger

import (
	"testing"

	"estate_market_backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew_RespectsLevel(t *testing.T) {
	l, err := New(&config.Config{GinMode: "release", LogLevel: "warn", LogFormat: "json"})
	require.NoError(t, err)

	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, l.Core().Enabled(zapcore.WarnLevel))
}

func TestParseLevel_DefaultsToInfo(t *testing.T) {
	assert.Equal(t, zapcore.InfoLevel, parseLevel("nonsense"))
	assert.Equal(t, zapcore.DebugLevel, parseLevel("DEBUG"))
}

func TestParseLevel_AcceptsWarningAlias(t *testing.T) {
	assert.Equal(t, zapcore.WarnLevel, parseLevel(" Warning "))
	assert.Equal(t, zapcore.InfoLevel, parseLevel(""))
}
