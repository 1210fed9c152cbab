// internal/observability/logger_test.go
package observability

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/xkilldash9x/seleniumshift/internal/config"
)

func bufferSink() (*bytes.Buffer, zapcore.WriteSyncer) {
	var buf bytes.Buffer
	return &buf, zapcore.AddSync(&buf)
}

func TestNewLogger(t *testing.T) {
	t.Run("should colorize console levels", func(t *testing.T) {
		buf, sink := bufferSink()
		logger, err := NewLogger(config.LoggerConfig{Level: "debug", Format: "console", ServiceName: "shift", Colors: config.ColorConfig{Info: "blue"}}, sink)
		require.NoError(t, err)

		logger.Named("planner").Info("Plan built")
		logger.Warn("Careful")
		out := buf.String()
		assert.Contains(t, out, colorMap["blue"]+"INFO"+colorReset)
		assert.Contains(t, out, colorMap["yellow"]+"WARN"+colorReset, "unset levels use the default palette")
		assert.Contains(t, out, "shift.planner.")
		assert.Contains(t, out, "Plan built")
	})

	t.Run("should emit json", func(t *testing.T) {
		buf, sink := bufferSink()
		logger, err := NewLogger(config.LoggerConfig{Level: "info", Format: "json", ServiceName: "JSONTest"}, sink)
		require.NoError(t, err)
		logger.Warn("Compiler missing", zap.String("binary", "javac"))

		var entry map[string]interface{}
		require.NoError(t, jsoniter.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "warn", entry["level"])
		assert.Equal(t, "JSONTest", entry["logger"])
		assert.Equal(t, "Compiler missing", entry["msg"])
		assert.Equal(t, "javac", entry["binary"])
	})

	t.Run("should respect the level", func(t *testing.T) {
		buf, sink := bufferSink()
		logger, err := NewLogger(config.LoggerConfig{Level: "warn", Format: "json"}, sink)
		require.NoError(t, err)
		logger.Info("hidden")
		assert.Empty(t, buf.String())
	})

	t.Run("should also write to a log file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "shift.log")
		_, sink := bufferSink()
		logger, err := NewLogger(config.LoggerConfig{Level: "debug", Format: "console", LogFile: path, MaxSize: 1}, sink)
		require.NoError(t, err)
		logger.Error("This should go to the file.")
		require.NoError(t, logger.Sync())

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(content), `"msg":"This should go to the file."`)
	})

	t.Run("should reject bad settings", func(t *testing.T) {
		_, sink := bufferSink()
		_, err := NewLogger(config.LoggerConfig{Level: "loud"}, sink)
		assert.ErrorContains(t, err, "invalid log level")
		_, err = NewLogger(config.LoggerConfig{Format: "xml"}, sink)
		assert.ErrorContains(t, err, "unknown log format")
	})
}

func TestInitialize(t *testing.T) {
	t.Run("should only initialize once", func(t *testing.T) {
		ResetForTest()
		defer ResetForTest()
		buf, sink := bufferSink()

		require.NoError(t, Initialize(config.LoggerConfig{Level: "info", ServiceName: "First"}, sink))
		first := GetLogger()
		require.NoError(t, Initialize(config.LoggerConfig{Level: "debug", ServiceName: "Second"}, sink))
		assert.Same(t, first, GetLogger())

		GetLogger().Info("test")
		assert.True(t, strings.Contains(buf.String(), "First"))
		assert.False(t, strings.Contains(buf.String(), "Second"))
	})

	t.Run("should surface configuration errors", func(t *testing.T) {
		ResetForTest()
		defer ResetForTest()
		_, sink := bufferSink()
		assert.Error(t, Initialize(config.LoggerConfig{Format: "xml"}, sink))
		assert.Nil(t, globalLogger.Load())
	})
}

func TestGetLogger(t *testing.T) {
	ResetForTest()
	defer ResetForTest()
	logger := GetLogger()
	require.NotNil(t, logger)
	assert.Nil(t, globalLogger.Load(), "the fallback is not stored")
}
