package cli

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"finvision/internal/config"
	"finvision/internal/log"
)

func TestSetupLogger(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	logger := SetupLogger(&config.Config{LogLevel: "debug", LogFormat: "json"}, log.ComponentWorker)
	assert.Equal(t, log.ComponentWorker, logger.Component())
	assert.True(t, logger.Enabled(t.Context(), slog.LevelDebug))
	assert.Same(t, logger.Logger, slog.Default())
}

func TestSetupLoggerInvalidLevelFallsBack(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	logger := SetupLogger(&config.Config{LogLevel: "loud"}, log.ComponentApp)
	assert.True(t, logger.Enabled(t.Context(), slog.LevelInfo))
	assert.False(t, logger.Enabled(t.Context(), slog.LevelDebug))
}

func TestSignalContextCancel(t *testing.T) {
	ctx, cancel := SignalContext(log.New(log.DefaultConfig()))
	cancel()
	<-ctx.Done()
	assert.Error(t, ctx.Err())
}
