package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/potluckhq/potluck/config"
)

func TestNewLogger(t *testing.T) {
	t.Run("creates logger with JSON format and stdout output", func(t *testing.T) {
		cfg := &config.LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		}

		logger, err := NewLogger(cfg)
		require.NoError(t, err)
		require.NotNil(t, logger)

		logger.Info("test message")
		assert.NoError(t, logger.Sync())
	})

	t.Run("creates logger with file output", func(t *testing.T) {
		tmpDir := t.TempDir()
		logFile := filepath.Join(tmpDir, "test.log")

		cfg := &config.LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "file",
			FilePath: logFile,
		}

		logger, err := NewLogger(cfg)
		require.NoError(t, err)

		logger.Info("test file message")
		require.NoError(t, logger.Close())

		content, err := os.ReadFile(logFile)
		require.NoError(t, err)
		assert.Contains(t, string(content), "test file message")
	})

	t.Run("defaults to info level for invalid level", func(t *testing.T) {
		cfg := &config.LoggingConfig{
			Level:  "invalid",
			Format: "json",
			Output: "stdout",
		}

		logger, err := NewLogger(cfg)
		require.NoError(t, err)
		require.NotNil(t, logger)
	})
}

func TestLogLevelFiltering(t *testing.T) {
	tmpDir := t.TempDir()
	logFile := filepath.Join(tmpDir, "filtering_test.log")

	cfg := &config.LoggingConfig{
		Level:    "warn",
		Format:   "json",
		Output:   "file",
		FilePath: logFile,
	}

	logger, err := NewLogger(cfg)
	require.NoError(t, err)

	logger.Debug("debug message - should not appear")
	logger.Info("info message - should not appear")
	logger.Warn("warn message - should appear")
	logger.Error("error message - should appear")

	require.NoError(t, logger.Close())

	content, err := os.ReadFile(logFile)
	require.NoError(t, err)

	logContent := string(content)
	assert.NotContains(t, logContent, "debug message")
	assert.NotContains(t, logContent, "info message")
	assert.Contains(t, logContent, "warn message")
	assert.Contains(t, logContent, "error message")
}

func TestJSONFormat(t *testing.T) {
	tmpDir := t.TempDir()
	logFile := filepath.Join(tmpDir, "json_test.log")

	cfg := &config.LoggingConfig{
		Level:    "info",
		Format:   "json",
		Output:   "file",
		FilePath: logFile,
	}

	logger, err := NewLogger(cfg)
	require.NoError(t, err)

	logger.Info("test json message",
		zap.String("party_id", "party123"),
		zap.Int("seats", 7),
	)

	require.NoError(t, logger.Close())

	content, err := os.ReadFile(logFile)
	require.NoError(t, err)

	var logEntry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(content), &logEntry))

	assert.Equal(t, "info", logEntry["level"])
	assert.Equal(t, "test json message", logEntry["message"])
	assert.Equal(t, "party123", logEntry["party_id"])
	assert.Equal(t, float64(7), logEntry["seats"])
	assert.NotEmpty(t, logEntry["timestamp"])
}

func TestTraceIDInLogs(t *testing.T) {
	tmpDir := t.TempDir()
	logFile := filepath.Join(tmpDir, "trace_test.log")

	cfg := &config.LoggingConfig{
		Level:    "info",
		Format:   "json",
		Output:   "file",
		FilePath: logFile,
	}

	logger, err := NewLogger(cfg)
	require.NoError(t, err)

	traceID := "trace-abc-123"
	ctx := context.WithValue(context.Background(), TraceIDKey, traceID)

	logger.InfoContext(ctx, "message with trace ID")

	require.NoError(t, logger.Close())

	content, err := os.ReadFile(logFile)
	require.NoError(t, err)

	var logEntry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(content), &logEntry))

	assert.Equal(t, traceID, logEntry["trace_id"])
}

func TestWithContext(t *testing.T) {
	logger, err := NewDevelopmentLogger()
	require.NoError(t, err)

	t.Run("extracts trace ID from context", func(t *testing.T) {
		ctx := context.WithValue(context.Background(), TraceIDKey, "context-trace-456")

		loggerWithContext := logger.WithContext(ctx)
		require.NotNil(t, loggerWithContext)
		assert.NotEqual(t, logger, loggerWithContext)
	})

	t.Run("returns original logger when no trace ID in context", func(t *testing.T) {
		loggerWithContext := logger.WithContext(context.Background())
		assert.Equal(t, logger, loggerWithContext)
	})
}

func TestWithFieldsChaining(t *testing.T) {
	tmpDir := t.TempDir()
	logFile := filepath.Join(tmpDir, "chaining_test.log")

	cfg := &config.LoggingConfig{
		Level:    "info",
		Format:   "json",
		Output:   "file",
		FilePath: logFile,
	}

	logger, err := NewLogger(cfg)
	require.NoError(t, err)

	logger1 := logger.WithFields(zap.String("service", "admission"))
	logger2 := logger1.WithTraceID("trace-chain-456")

	logger2.Info("chained logger message")

	require.NoError(t, logger.Close())

	content, err := os.ReadFile(logFile)
	require.NoError(t, err)

	var logEntry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(content), &logEntry))

	assert.Equal(t, "admission", logEntry["service"])
	assert.Equal(t, "trace-chain-456", logEntry["trace_id"])
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"debug", "debug"},
		{"info", "info"},
		{"warn", "warn"},
		{"error", "error"},
		{"fatal", "fatal"},
		{"invalid", "info"},
		{"", "info"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, parseLogLevel(tt.expected), parseLogLevel(tt.input))
		})
	}
}
