package common

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogLevel_String(t *testing.T) {
	cases := []struct {
		level LogLevel
		want  string
	}{
		{DebugLevel, "DEBUG"},
		{InfoLevel, "INFO"},
		{WarnLevel, "WARN"},
		{ErrorLevel, "ERROR"},
		{LogLevel(99), "UNKNOWN"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.level.String())
	}
}

func TestLogger_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "sched", WarnLevel)

	logger.Info("should not appear %d", 1)
	logger.Warn("should appear %d", 2)

	out := buf.String()
	assert.NotContains(t, out, "should not appear")
	assert.Contains(t, out, "should appear 2")
}

func TestLogger_EmitsStructuredFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "sched", DebugLevel)
	logger.Info("spawned worker on %s", "rt-1")

	var record map[string]interface{}
	line := strings.TrimSpace(buf.String())
	require.NoError(t, json.Unmarshal([]byte(line), &record))
	assert.Equal(t, "sched", record["component"])
	assert.Equal(t, "spawned worker on rt-1", record["message"])
}

func TestLogger_With(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "sched", DebugLevel)
	derived := logger.With("app_id", "app-1")
	derived.Info("hello")

	var record map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "app-1", record["app_id"])
}

func TestLogger_SetLevelGetLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "", InfoLevel)
	assert.Equal(t, InfoLevel, logger.GetLevel())
	logger.SetLevel(ErrorLevel)
	assert.Equal(t, ErrorLevel, logger.GetLevel())

	logger.Warn("dropped")
	assert.Empty(t, buf.String())
}
