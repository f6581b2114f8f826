package report

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/Havens-blog/e-cam-web/internal/domain"
	"github.com/Havens-blog/e-cam-web/internal/logging"
)

// Reporter is the single exit point for terminal failures: one
// notification and one log entry each.
type Reporter struct {
	notifier Notifier
	logger   *slog.Logger
	stats    *Stats
}

// Option configures a Reporter.
type Option func(*Reporter)

// WithStats records every reported failure in s.
func WithStats(s *Stats) Option {
	return func(r *Reporter) { r.stats = s }
}

// NewReporter creates a reporter. A nil notifier discards notifications and
// a nil logger uses slog.Default.
func NewReporter(notifier Notifier, logger *slog.Logger, opts ...Option) *Reporter {
	if notifier == nil {
		notifier = NotifierFunc(func(context.Context, Notification) {})
	}
	if logger == nil {
		logger = slog.Default()
	}
	r := &Reporter{notifier: notifier, logger: logger}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Report notifies and logs info. It never panics.
func (r *Reporter) Report(ctx context.Context, info *domain.ErrorInfo) {
	if info == nil {
		return
	}
	if r.stats != nil {
		r.stats.Record(info)
	}
	r.log(ctx, info)
	r.notify(ctx, info)
}

// Stats returns the attached statistics, or nil.
func (r *Reporter) Stats() *Stats {
	return r.stats
}

// LevelFor is the log level used for a failure type.
func LevelFor(t domain.ErrorType) slog.Level {
	switch t {
	case domain.ErrorTypeValidation, domain.ErrorTypeNotFound, domain.ErrorTypeBusiness:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}

func (r *Reporter) log(ctx context.Context, info *domain.ErrorInfo) {
	attrs := []slog.Attr{
		logging.Context("API"),
		slog.String("type", string(info.Type)),
		slog.String("message", info.Message),
		slog.Bool("can_retry", info.CanRetry),
	}
	if info.Code != 0 {
		attrs = append(attrs, slog.Int("code", info.Code))
	}
	if info.Status != 0 {
		attrs = append(attrs, slog.Int("status", info.Status))
	}
	if info.Details != "" {
		attrs = append(attrs, slog.String("details", info.Details))
	}
	if info.URL != "" {
		attrs = append(attrs, slog.String("url", info.URL))
	}
	if cause := info.Unwrap(); cause != nil {
		attrs = append(attrs, slog.String("error", cause.Error()))
	}
	r.logger.LogAttrs(ctx, LevelFor(info.Type), "API request failed", attrs...)
}

func (r *Reporter) notify(ctx context.Context, info *domain.ErrorInfo) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.LogAttrs(ctx, slog.LevelError, "notifier panicked",
				logging.Context("API"),
				slog.String("panic", fmt.Sprint(p)),
				logging.Stack(string(debug.Stack())),
			)
		}
	}()
	r.notifier.Notify(ctx, NotificationFor(info))
}
