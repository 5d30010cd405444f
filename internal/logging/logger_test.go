package logging

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_InfoOmitsTimeAndDebug(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, slog.LevelInfo)
	log.Debug("hidden")
	log.Info("searching", "query", "cancer")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.NotContains(t, out, "time=")
	assert.NotContains(t, out, "run_id=")
	assert.Contains(t, out, "level=INFO msg=searching query=cancer")
}

func TestNew_DebugAddsRunID(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, slog.LevelDebug)
	log.Debug("processing paper", "pmid", "1")

	out := buf.String()
	assert.Contains(t, out, "time=")
	assert.Contains(t, out, "level=DEBUG")
	require.Contains(t, out, "run_id=")

	var id string
	for _, field := range bytes.Fields(buf.Bytes()) {
		if v, ok := bytes.CutPrefix(field, []byte("run_id=")); ok {
			id = string(v)
		}
	}
	_, err := uuid.Parse(id)
	assert.NoError(t, err)
}

func TestNew_WarnLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, slog.LevelWarn)
	log.Info("quiet")
	log.Warn("fallback")
	assert.NotContains(t, buf.String(), "quiet")
	assert.Contains(t, buf.String(), "level=WARN msg=fallback")
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" DEBUG ": slog.LevelDebug,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}
