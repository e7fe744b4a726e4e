package logger_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/emirkoc/shortlink/internal/logger"
)

func TestNewIsNop(t *testing.T) {
	l := logger.New()
	require.NotNil(t, l.Log)
	// nop core logs nothing at any level
	require.False(t, l.Log.Core().Enabled(zapcore.ErrorLevel))
}

func TestInit(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		t.Run(level, func(t *testing.T) {
			l := logger.New()
			require.NoError(t, l.Init(level))

			lvl, err := zapcore.ParseLevel(level)
			require.NoError(t, err)
			require.True(t, l.Log.Core().Enabled(lvl))
		})
	}
}

func TestInitFiltersBelowLevel(t *testing.T) {
	l := logger.New()
	require.NoError(t, l.Init("warn"))
	require.False(t, l.Log.Core().Enabled(zapcore.DebugLevel))
	require.False(t, l.Log.Core().Enabled(zapcore.InfoLevel))
	require.True(t, l.Log.Core().Enabled(zapcore.ErrorLevel))
}

func TestInitUnknownLevel(t *testing.T) {
	l := logger.New()
	require.Error(t, l.Init("loud"))
}
