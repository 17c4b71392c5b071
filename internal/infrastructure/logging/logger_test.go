package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/GriffinCanCode/Metrology/internal/infrastructure/config"
)

func TestNew(t *testing.T) {
	logger, err := New(DefaultConfig())
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))

	_, err = New(Config{Level: "loud", OutputPaths: []string{"stdout"}})
	assert.Error(t, err)
}

func TestFromConfig(t *testing.T) {
	cfg := FromConfig(config.LogConfig{Level: "debug", Development: true})
	assert.Equal(t, []string{"stdout"}, cfg.OutputPaths)
	assert.True(t, cfg.Development)

	cfg = FromConfig(config.LogConfig{Level: "warn"}, "stderr")
	assert.Equal(t, []string{"stderr"}, cfg.OutputPaths)

	logger, err := New(cfg)
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
}

func TestToolFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := &Logger{Logger: zap.New(core)}

	logger.Component("workspace").Tool("uncertainty.series.add", "req_1").Debug("reading added")
	logger.Tool("uncertainty.coverage", "").Info("no request id")

	entries := logs.AllUntimed()
	require.Len(t, entries, 2)
	assert.Equal(t, "workspace", entries[0].LoggerName)
	assert.Equal(t, "uncertainty.series.add", entries[0].ContextMap()["tool"])
	assert.Equal(t, "req_1", entries[0].ContextMap()["request_id"])
	assert.NotContains(t, entries[1].ContextMap(), "request_id")
}

func TestNop(t *testing.T) {
	assert.NotPanics(t, func() { NewNop().Component("x").Info("discarded") })
}
