// Package logging provides the process logger: a slog handler that records
// every entry into an in-memory ring buffer, mirrors it to the console and,
// when a Shipper is attached, queues it for a remote collector.
package logging

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Attribute keys with special meaning to Handler.
const (
	ContextKey = "context"
	StackKey   = "stack"
)

// Entry is one recorded log line.
type Entry struct {
	Level     string         `json:"level"`
	Message   string         `json:"message"`
	Timestamp time.Time      `json:"timestamp"`
	Context   string         `json:"context,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
	Stack     string         `json:"stack,omitempty"`
}

// Context tags an entry with the subsystem that produced it ("API",
// "Retry", "Network").
func Context(name string) slog.Attr {
	return slog.String(ContextKey, name)
}

// Stack attaches a stack trace to an entry.
func Stack(stack string) slog.Attr {
	return slog.String(StackKey, stack)
}

// LevelName renders a slog level the way entries store it.
func LevelName(l slog.Level) string {
	return strings.ToLower(l.String())
}

// ParseLevel maps debug|info|warn|error to a slog level. Unknown values
// are info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// serialize returns v if it can be encoded as JSON, otherwise a
// placeholder describing the failure.
func serialize(v any) any {
	if err, ok := v.(error); ok {
		return err.Error()
	}
	if _, err := json.Marshal(v); err != nil {
		return map[string]any{
			"error":    "failed to serialize data",
			"original": fmt.Sprintf("%v", v),
		}
	}
	return v
}
