package logging

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RecordsEntries(t *testing.T) {
	var out bytes.Buffer
	logger, buf := New(Options{Level: "debug", Format: "json", Output: &out, BufferSize: 10})

	logger.Error("API request failed",
		Context("API"),
		slog.String("url", "/cam/accounts"),
		slog.Int("status", 500),
		Stack("goroutine 1"),
	)

	entries := buf.Entries("")
	require.Len(t, entries, 1)
	e := entries[0]
	assert.Equal(t, "error", e.Level)
	assert.Equal(t, "API request failed", e.Message)
	assert.Equal(t, "API", e.Context)
	assert.Equal(t, "goroutine 1", e.Stack)
	assert.Equal(t, "/cam/accounts", e.Data["url"])
	assert.EqualValues(t, 500, e.Data["status"])
	assert.NotContains(t, e.Data, ContextKey)
	assert.False(t, e.Timestamp.IsZero())

	assert.Contains(t, out.String(), `"msg":"API request failed"`)
}

func TestNew_LevelGatesDebug(t *testing.T) {
	var out bytes.Buffer
	logger, buf := New(Options{Level: "info", Output: &out})

	logger.Debug("api request")
	logger.Info("ready")

	require.Equal(t, 1, buf.Len())
	assert.Equal(t, "ready", buf.Entries("")[0].Message)
}

func TestHandler_AttrsAndGroups(t *testing.T) {
	var out bytes.Buffer
	logger, buf := New(Options{Format: "text", Output: &out})

	logger.With(Context("Network"), slog.String("tenant", "acme")).
		WithGroup("req").
		Warn("slow", slog.String("id", "r1"))

	e := buf.Entries("")[0]
	assert.Equal(t, "warn", e.Level)
	assert.Equal(t, "Network", e.Context)
	assert.Equal(t, "acme", e.Data["tenant"])
	assert.Equal(t, "r1", e.Data["req.id"])
}

func TestHandler_SerializeFallback(t *testing.T) {
	logger, buf := New(Options{Output: &bytes.Buffer{}})

	logger.Info("odd", slog.Any("fn", func() {}), slog.Any("ch", make(chan int)))

	e := buf.Entries("")[0]
	fallback, ok := e.Data["fn"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "failed to serialize data", fallback["error"])
	assert.NotEmpty(t, fallback["original"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("bogus"))
}
