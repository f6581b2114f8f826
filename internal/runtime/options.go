package runtime

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Havens-blog/e-cam-web/internal/report"
	"github.com/Havens-blog/e-cam-web/internal/storage"
)

// Option is a functional option for configuring a Runtime.
type Option func(*Runtime) error

// WithNotifier sets where user notifications go. The default logs them.
func WithNotifier(n report.Notifier) Option {
	return func(r *Runtime) error {
		if n == nil {
			return errors.New("notifier is nil")
		}
		r.notifier = n
		return nil
	}
}

// WithHTTPClient sets the HTTP client used for API calls and for the HTTP
// log collector.
func WithHTTPClient(c *http.Client) Option {
	return func(r *Runtime) error {
		if c == nil {
			return errors.New("http client is nil")
		}
		r.httpClient = c
		return nil
	}
}

// WithRegistry registers the failure counter on reg.
func WithRegistry(reg prometheus.Registerer) Option {
	return func(r *Runtime) error {
		r.registry = reg
		return nil
	}
}

// WithLogOutput sets where the process logger writes. Defaults to stderr.
func WithLogOutput(w io.Writer) Option {
	return func(r *Runtime) error {
		r.logOutput = w
		return nil
	}
}

// WithTraceOutput sets where spans are exported when telemetry is enabled.
func WithTraceOutput(w io.Writer) Option {
	return func(r *Runtime) error {
		r.traceOutput = w
		return nil
	}
}

// WithBackend uses b instead of the backend named by storage.type. The
// runtime takes ownership and closes it.
func WithBackend(b storage.Backend) Option {
	return func(r *Runtime) error {
		if b == nil {
			return errors.New("storage backend is nil")
		}
		r.backend = b
		return nil
	}
}

// WithBaseURL overrides api.base_url, e.g. to point at an in-process mock.
func WithBaseURL(url string) Option {
	return func(r *Runtime) error {
		r.baseURL = url
		return nil
	}
}

// WithFallbackLogger sets the logger that receives log shipping failures.
func WithFallbackLogger(l *slog.Logger) Option {
	return func(r *Runtime) error {
		r.fallback = l
		return nil
	}
}
