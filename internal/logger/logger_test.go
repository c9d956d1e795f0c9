package logger

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewDisabledDiscards(t *testing.T) {
	l := New(Options{})
	require.False(t, l.Enabled(t.Context(), slog.LevelError))
}

func TestNewWritesText(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Enabled: true, Output: &buf, Level: slog.LevelDebug})
	l.Debug("grow chunk", "index", 3)
	require.Contains(t, buf.String(), "grow chunk")
	require.Contains(t, buf.String(), "index=3")
}

func TestFromEnvLevels(t *testing.T) {
	require.False(t, fromEnv("").Enabled(t.Context(), slog.LevelError))
	require.False(t, fromEnv("off").Enabled(t.Context(), slog.LevelError))
	require.True(t, fromEnv("debug").Enabled(t.Context(), slog.LevelDebug))
	require.False(t, fromEnv("warn").Enabled(t.Context(), slog.LevelInfo))
	require.True(t, fromEnv("warn").Enabled(t.Context(), slog.LevelWarn))
}

func TestOr(t *testing.T) {
	custom := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	require.Same(t, custom, Or(custom))
	require.Same(t, L, Or(nil))
}
