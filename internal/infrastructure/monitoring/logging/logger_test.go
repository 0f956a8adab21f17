package logging

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/praxis-legal/docketcalc/internal/config"
)

func observedLogger(level zapcore.Level) (Logger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return NewLoggerFromCore(core), logs
}

func TestLogger_EmitsFields(t *testing.T) {
	log, logs := observedLogger(zapcore.DebugLevel)

	log.Info("deadline calculated",
		String("jurisdiction", "state"),
		Int("base_days", 20),
		Bool("rolled", true),
		Date("final_date", time.Date(2024, time.January, 29, 0, 0, 0, 0, time.UTC)),
	)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "deadline calculated", entries[0].Message)

	fields := entries[0].ContextMap()
	assert.Equal(t, "state", fields["jurisdiction"])
	assert.Equal(t, int64(20), fields["base_days"])
	assert.Equal(t, true, fields["rolled"])
	assert.Equal(t, "2024-01-29", fields["final_date"])
}

func TestLogger_LevelFiltering(t *testing.T) {
	log, logs := observedLogger(zapcore.WarnLevel)

	log.Debug("noise")
	log.Info("routine")
	log.Warn("attention")
	log.Error("failure")

	assert.Equal(t, 2, logs.Len())
}

func TestLogger_WithAttachesToChildren(t *testing.T) {
	log, logs := observedLogger(zapcore.InfoLevel)

	child := log.With(String("trigger_type", "complaint_served"))
	child.Info("evaluating")
	log.Info("plain")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "complaint_served", entries[0].ContextMap()["trigger_type"])
	assert.NotContains(t, entries[1].ContextMap(), "trigger_type")
}

func TestLogger_Named(t *testing.T) {
	log, logs := observedLogger(zapcore.InfoLevel)

	log.Named("engine").Named("cascade").Info("previewed")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "engine.cascade", entries[0].LoggerName)
}

func TestErr_Field(t *testing.T) {
	log, logs := observedLogger(zapcore.InfoLevel)

	log.Error("boom", Err(errors.New("calendar scan exhausted")))
	log.Error("quiet", Err(nil))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "calendar scan exhausted", entries[0].ContextMap()["error"])
	assert.Equal(t, "<nil>", entries[1].ContextMap()["error"])
}

func TestNewLogger_BuildsFromConfig(t *testing.T) {
	for _, cfg := range []config.LogConfig{
		{Level: "debug", Format: "text", Output: "stderr"},
		{Level: "info", Format: "json", Output: "stdout"},
		{},
	} {
		log, err := NewLogger(cfg)
		require.NoError(t, err)
		assert.NotNil(t, log)
	}
}

func TestDefault_SwapIsSafe(t *testing.T) {
	original := Default()
	defer SetDefault(original)

	log, logs := observedLogger(zapcore.InfoLevel)
	SetDefault(log)
	Default().Info("through the default")

	assert.Equal(t, 1, logs.Len())

	// nil must not clobber the default.
	SetDefault(nil)
	assert.NotNil(t, Default())
}
