// Package report turns classified failures into user notifications, log
// entries and failure statistics.
package report

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/Havens-blog/e-cam-web/internal/domain"
)

// Severity selects how prominently a notification is shown.
type Severity string

const (
	// SeverityPersistent stays until dismissed (auth problems).
	SeverityPersistent Severity = "persistent"
	// SeverityToast is a dismissible timed message.
	SeverityToast Severity = "toast"
	// SeverityLightweight is an inline hint (validation).
	SeverityLightweight Severity = "lightweight"
)

// NotificationDuration is how long timed notifications stay visible.
const NotificationDuration = 5 * time.Second

// Notification is what the user sees for one failure.
type Notification struct {
	Severity   Severity         `json:"severity"`
	Type       domain.ErrorType `json:"type"`
	Title      string           `json:"title"`
	Message    string           `json:"message"`
	Suggestion string           `json:"suggestion,omitempty"`
	Retryable  bool             `json:"retryable"`
	Duration   time.Duration    `json:"duration"`
	Closable   bool             `json:"closable"`
}

// Notifier displays notifications.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, n Notification)

// Notify implements Notifier.
func (f NotifierFunc) Notify(ctx context.Context, n Notification) { f(ctx, n) }

// SeverityFor maps an error type to its notification severity.
func SeverityFor(t domain.ErrorType) Severity {
	switch t {
	case domain.ErrorTypeAuth:
		return SeverityPersistent
	case domain.ErrorTypeValidation:
		return SeverityLightweight
	default:
		return SeverityToast
	}
}

// NotificationFor builds the notification for info. The message is the
// summary followed by the details when present.
func NotificationFor(info *domain.ErrorInfo) Notification {
	msg := info.Message
	if info.Details != "" && info.Details != info.Message {
		msg = msg + ": " + info.Details
	}

	n := Notification{
		Severity:   SeverityFor(info.Type),
		Type:       info.Type,
		Title:      info.Message,
		Message:    msg,
		Suggestion: info.Suggestion,
		Retryable:  info.CanRetry,
		Closable:   true,
	}
	if n.Severity != SeverityPersistent {
		n.Duration = NotificationDuration
	}
	return n
}

// LogNotifier writes notifications to a logger. It suits headless use.
type LogNotifier struct {
	Logger *slog.Logger
}

// Notify implements Notifier.
func (l LogNotifier) Notify(ctx context.Context, n Notification) {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.LogAttrs(ctx, slog.LevelInfo, "notification",
		slog.String("severity", string(n.Severity)),
		slog.String("type", string(n.Type)),
		slog.String("message", n.Message),
		slog.Bool("retryable", n.Retryable),
	)
}

// WriterNotifier prints one line per notification, e.g. to stderr.
type WriterNotifier struct {
	W io.Writer
}

// Notify implements Notifier.
func (w WriterNotifier) Notify(_ context.Context, n Notification) {
	line := fmt.Sprintf("[%s] %s", n.Type, n.Message)
	if n.Suggestion != "" {
		line += " (" + n.Suggestion + ")"
	}
	if n.Retryable {
		line += " [retryable]"
	}
	fmt.Fprintln(w.W, line)
}

// Recorder keeps every notification in memory.
type Recorder struct {
	mu  sync.Mutex
	got []Notification
}

// Notify implements Notifier.
func (r *Recorder) Notify(_ context.Context, n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, n)
}

// Notifications returns a copy of what was recorded.
func (r *Recorder) Notifications() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.got...)
}

// Reset forgets recorded notifications.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = nil
}
