package log

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
		in   string
		want slog.Level
		ok   bool
	}{
		{"debug", LevelDebug, true},
		{"INFO", LevelInfo, true},
		{"warning", LevelWarn, true},
		{" error ", LevelError, true},
		{"verbose", LevelInfo, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseLevel(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestLazyLogger_FollowsSetup(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })
	t.Setenv(EnvLevel, "")

	logger := Logger("test/component")

	var first bytes.Buffer
	Setup(Options{Output: &first, Level: "info", Format: "json"})
	logger.Info("hello", "k", "v")
	logger.Debug("hidden")

	line := strings.TrimSpace(first.String())
	require.NotEmpty(t, line)
	assert.NotContains(t, line, "hidden")

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &rec))
	assert.Equal(t, "test/component", rec["component"])
	assert.Equal(t, "v", rec["k"])
	assert.Contains(t, rec, "ts")

	// 切换输出后，同一个 LazyLogger 写入新目标
	var second bytes.Buffer
	SetOutputWithLevel(&second, LevelDebug)
	logger.Debug("now visible")
	assert.Contains(t, second.String(), "now visible")
	assert.NotContains(t, first.String(), "now visible")
}

func TestSetup_EnvOverridesLevel(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })
	t.Setenv(EnvLevel, "debug")

	var buf bytes.Buffer
	Setup(Options{Output: &buf, Level: "error"})
	Logger("env").Debug("debug line")

	assert.Contains(t, buf.String(), "debug line")
}
