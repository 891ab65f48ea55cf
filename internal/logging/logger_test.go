package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{" warn ", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"verbose", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseLevel(tt.input))
		})
	}
}

func TestNew_JSON(t *testing.T) {
	t.Setenv("TK_DEBUG", "")
	var buf bytes.Buffer
	logger := New("info", "json", &buf)

	logger.Debug("dropped")
	logger.Info("task created", "taskId", 7)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var record map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &record))
	assert.Equal(t, "task created", record["msg"])
	assert.Equal(t, float64(7), record["taskId"])
}

func TestNew_TextWithDebugOverride(t *testing.T) {
	t.Setenv("TK_DEBUG", "1")
	var buf bytes.Buffer
	logger := New("error", "text", &buf)

	logger.Debug("visible in debug mode")

	assert.Contains(t, buf.String(), "visible in debug mode")
	assert.Contains(t, buf.String(), "level=DEBUG")
}
