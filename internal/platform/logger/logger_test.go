// Package logger_test contains tests for the logger package
package logger_test

import (
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/phrazzld/task-tracker/internal/config"
	"github.com/phrazzld/task-tracker/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupWithWriter(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	testCases := []struct {
		name       string
		level      string
		debugShown bool
		infoShown  bool
	}{
		{name: "debug level", level: "debug", debugShown: true, infoShown: true},
		{name: "info level", level: "info", debugShown: false, infoShown: true},
		{name: "uppercase warn", level: "WARN", debugShown: false, infoShown: false},
		{name: "invalid level falls back to info", level: "chatty", debugShown: false, infoShown: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			buf := &logger.TestLogBuffer{}

			l, err := logger.SetupWithWriter(config.ServerConfig{LogLevel: tc.level}, buf)
			require.NoError(t, err)
			require.NotNil(t, l)

			l.Debug("debug message")
			l.Info("info message")
			l.Error("error message", "component", "test")

			assert.Equal(t, tc.debugShown, strings.Contains(buf.String(), "debug message"))
			assert.Equal(t, tc.infoShown, strings.Contains(buf.String(), "info message"))
			logger.AssertLogField(t, buf, "component", "test")
			assert.Same(t, l, slog.Default(), "Setup should install the logger as default")
		})
	}
}

func TestParseLevel(t *testing.T) {
	level, ok := logger.ParseLevel(" Warning ")
	assert.True(t, ok)
	assert.Equal(t, slog.LevelWarn, level)

	level, ok = logger.ParseLevel("")
	assert.False(t, ok)
	assert.Equal(t, slog.LevelInfo, level)
}

func TestContextLogger(t *testing.T) {
	t.Run("empty context has no logger", func(t *testing.T) {
		assert.Nil(t, logger.FromContext(context.Background()))
	})

	t.Run("stored logger is returned", func(t *testing.T) {
		l, _ := logger.GetTestLogger(t)
		ctx := logger.WithLogger(context.Background(), l)
		assert.Same(t, l, logger.FromContext(ctx))
		assert.Same(t, l, logger.FromContextOrDefault(ctx, slog.Default()))
	})

	t.Run("fallbacks", func(t *testing.T) {
		fallback, _ := logger.GetTestLogger(t)
		assert.Same(t, fallback, logger.FromContextOrDefault(context.Background(), fallback))
		assert.Same(t, slog.Default(), logger.FromContextOrDefault(context.Background(), nil))
	})
}

func TestWithRequestID(t *testing.T) {
	ctx, buf := logger.NewTestContext(t)
	ctx = logger.WithRequestID(ctx, "req-123")

	assert.Equal(t, "req-123", logger.RequestIDFromContext(ctx))

	logger.FromContext(ctx).Info("handled")
	logger.AssertLogField(t, buf, "request_id", "req-123")
	logger.AssertLogContains(t, buf, "handled")

	assert.Empty(t, logger.RequestIDFromContext(context.Background()))
}
