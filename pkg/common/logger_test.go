package common

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	_ "liyu1981.xyz/maintenance-service/pkg/testing"
)

func TestLoggingCapture(t *testing.T) {
	var buf bytes.Buffer
	SetTestCaptureLogger(&buf, zapcore.InfoLevel)

	logger := GetLogger()
	logger.Info("Test log message", zap.String("key", "value"))

	logOutput := buf.String()
	if !strings.Contains(logOutput, "Test log message") {
		t.Errorf("expected log output to contain message, got: %s", logOutput)
	}
}

func TestGetLoggerWith_NameAndCategory(t *testing.T) {
	var buf bytes.Buffer
	SetTestCaptureLogger(&buf, zapcore.InfoLevel)

	GetLoggerWith(LoggerNameMaintenanceCore, zap.String(LoggerFieldCategory, LoggerCategoryDevice)).
		Info("Device created", zap.Uint("id", 7))

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "maintenance_core", line["logger"])
	assert.Equal(t, "device", line["category"])
	assert.Equal(t, "Device created", line["msg"])
	assert.Equal(t, 7.0, line["id"])
}

func TestCaptureLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	SetTestCaptureLogger(&buf, zapcore.WarnLevel)

	GetLogger().Info("quiet")
	assert.Empty(t, buf.String())

	GetLogger().Warn("loud")
	assert.Contains(t, buf.String(), "loud")
}
