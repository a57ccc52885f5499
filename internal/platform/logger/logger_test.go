package logger

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/aywengo/kafka-schema-reg-mcp-sub002/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup_ValidLevels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", "DEBUG", "Info"} {
		logger, err := Setup(config.ServerConfig{Port: 8000, LogLevel: level})
		require.NoError(t, err, "level %q", level)
		assert.NotNil(t, logger)
	}
}

func TestSetup_InvalidLevelFallsBack(t *testing.T) {
	logger, err := Setup(config.ServerConfig{Port: 8000, LogLevel: "verbose"})
	require.NoError(t, err)
	require.NotNil(t, logger)

	// Fallback level is info: debug is suppressed, info is not.
	assert.False(t, logger.Enabled(context.Background(), slog.LevelDebug))
	assert.True(t, logger.Enabled(context.Background(), slog.LevelInfo))
}

func TestFromContext(t *testing.T) {
	base := slog.New(slog.NewTextHandler(os.Stdout, nil))

	ctx := WithContext(context.Background(), base)
	assert.Same(t, base, FromContext(ctx))

	// Without an attached logger the default is returned.
	assert.NotNil(t, FromContext(context.Background()))
}
