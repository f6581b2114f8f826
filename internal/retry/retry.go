// Package retry repeats API calls that failed with a retryable
// classification, backing off exponentially between attempts.
package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/Havens-blog/e-cam-web/internal/classify"
	"github.com/Havens-blog/e-cam-web/internal/domain"
	"github.com/Havens-blog/e-cam-web/internal/logging"
)

const (
	DefaultMaxRetries = 3
	DefaultDelay      = time.Second
	DefaultMaxDelay   = 30 * time.Second
)

// Options configures Do.
type Options struct {
	// MaxRetries is the number of attempts after the first one. Zero or
	// less disables retries.
	MaxRetries int

	// Delay is the wait before the first retry. It doubles each time.
	Delay time.Duration

	// MaxDelay caps a single wait.
	MaxDelay time.Duration

	Logger *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	if o.Delay <= 0 {
		o.Delay = DefaultDelay
	}
	if o.MaxDelay <= 0 {
		o.MaxDelay = DefaultMaxDelay
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// Do calls fn until it succeeds, fails with a non-retryable error or runs
// out of attempts. The error returned is the last one fn returned. When ctx
// ends during a wait, the last classified failure is returned, or the
// context error classified when fn never failed with one.
func Do[T any](ctx context.Context, fn func(context.Context) (T, error), opts Options) (T, error) {
	opts = opts.withDefaults()

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = opts.Delay
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxInterval = opts.MaxDelay

	attempt := 0
	var last *domain.ErrorInfo
	op := func() (T, error) {
		res, err := fn(ctx)
		if info, ok := domain.AsErrorInfo(err); ok {
			last = info
		}
		if err != nil && !classify.IsRetryable(err) {
			return res, backoff.Permanent(err)
		}
		return res, err
	}
	notify := func(err error, wait time.Duration) {
		attempt++
		opts.Logger.LogAttrs(ctx, slog.LevelWarn,
			fmt.Sprintf("API retry attempt %d/%d", attempt, opts.MaxRetries),
			logging.Context("Retry"),
			slog.String("error", err.Error()),
			slog.Duration("wait", wait),
		)
	}

	res, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(opts.MaxRetries+1)),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(notify),
	)
	if err == nil {
		return res, nil
	}

	var perm *backoff.PermanentError
	if errors.As(err, &perm) {
		err = perm.Unwrap()
	}
	if ctx.Err() != nil {
		if _, ok := domain.AsErrorInfo(err); !ok {
			if last != nil {
				return res, last
			}
			return res, classify.Transport(err)
		}
	}
	return res, err
}

// Wrap turns fn into a function that retries per opts.
func Wrap[T any](fn func(context.Context) (T, error), opts Options) func(context.Context) (T, error) {
	return func(ctx context.Context) (T, error) {
		return Do(ctx, fn, opts)
	}
}
