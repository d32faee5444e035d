package logger

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_Disabled(t *testing.T) {
	require.NoError(t, Init(Options{Enabled: false}))
	assert.False(t, L.Enabled(context.Background(), slog.LevelError))
}

func TestInit_WritesJSONFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Init(Options{Enabled: true, LogDir: dir, Level: slog.LevelDebug}))
	t.Cleanup(func() { _ = Close() })

	Debug("resource loaded", "path", "ui/font.png", "bytes", 128)
	require.NoError(t, Close())

	name := filepath.Join(dir, logPrefix+time.Now().Format(dateLayout)+logSuffix)
	data, err := os.ReadFile(name)
	require.NoError(t, err)

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(string(data))), &rec))
	assert.Equal(t, "resource loaded", rec["msg"])
	assert.Equal(t, "DEBUG", rec["level"])
	assert.Equal(t, "ui/font.png", rec["path"])
	assert.EqualValues(t, 128, rec["bytes"])
}

func TestInit_LevelFilters(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Init(Options{Enabled: true, LogDir: dir, Level: slog.LevelWarn}))
	t.Cleanup(func() { _ = Close() })

	assert.False(t, L.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, L.Enabled(context.Background(), slog.LevelWarn))
}

func TestCleanOldLogs(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	old := logPrefix + "2024-01-01" + logSuffix
	recent := logPrefix + "2024-02-20" + logSuffix
	foreign := "other-2020-01-01.log"
	garbled := logPrefix + "yesterday" + logSuffix
	for _, name := range []string{old, recent, foreign, garbled} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}

	cleanOldLogs(dir, now)

	assert.NoFileExists(t, filepath.Join(dir, old))
	assert.FileExists(t, filepath.Join(dir, recent))
	assert.FileExists(t, filepath.Join(dir, foreign))
	assert.FileExists(t, filepath.Join(dir, garbled))
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
		err  bool
	}{
		{"debug", slog.LevelDebug, false},
		{"DEBUG", slog.LevelDebug, false},
		{"", slog.LevelInfo, false},
		{"info", slog.LevelInfo, false},
		{"warning", slog.LevelWarn, false},
		{" error ", slog.LevelError, false},
		{"verbose", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.err {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
