// Package runtime assembles the client stack (logging, failure reporting,
// persisted state, the request client and the API services) from a loaded
// configuration and manages its lifecycle.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Havens-blog/e-cam-web/internal/api/cam"
	"github.com/Havens-blog/e-cam-web/internal/api/cmdb"
	"github.com/Havens-blog/e-cam-web/internal/api/iam"
	"github.com/Havens-blog/e-cam-web/internal/config"
	"github.com/Havens-blog/e-cam-web/internal/logging"
	"github.com/Havens-blog/e-cam-web/internal/report"
	"github.com/Havens-blog/e-cam-web/internal/request"
	"github.com/Havens-blog/e-cam-web/internal/retry"
	"github.com/Havens-blog/e-cam-web/internal/storage"
	"github.com/Havens-blog/e-cam-web/internal/storage/memory"
	"github.com/Havens-blog/e-cam-web/internal/storage/redis"
	"github.com/Havens-blog/e-cam-web/internal/storage/sqlite"
	"github.com/Havens-blog/e-cam-web/internal/telemetry"
)

// Runtime owns every long-lived component of the client.
type Runtime struct {
	// Services
	CAM  *cam.Client
	CMDB *cmdb.Client
	IAM  *iam.Client

	cfg      *config.Config
	logger   *slog.Logger
	logs     *logging.Buffer
	shipper  *logging.Shipper
	sink     io.Closer
	stats    *report.Stats
	reporter *report.Reporter
	backend  storage.Backend
	store    *storage.Store
	client   *request.Client

	// Set by options
	notifier    report.Notifier
	httpClient  *http.Client
	registry    prometheus.Registerer
	logOutput   io.Writer
	traceOutput io.Writer
	baseURL     string
	fallback    *slog.Logger

	shutdownTracer func(context.Context) error

	mu     sync.Mutex
	closed bool
}

// New builds a Runtime from cfg. Components created before a failure are
// released before New returns the error.
func New(cfg *config.Config, opts ...Option) (*Runtime, error) {
	if cfg == nil {
		return nil, errors.New("config required")
	}
	r := &Runtime{cfg: cfg}

	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, fmt.Errorf("apply option: %w", err)
		}
	}
	if r.logOutput == nil {
		r.logOutput = os.Stderr
	}
	if r.httpClient == nil {
		r.httpClient = &http.Client{}
	}
	if r.baseURL == "" {
		r.baseURL = cfg.API.BaseURL
	}

	if err := r.init(); err != nil {
		r.release(context.Background())
		return nil, err
	}
	return r, nil
}

func (r *Runtime) init() error {
	cfg := r.cfg

	if !cfg.IsDevelopment() && cfg.Collector.Enabled {
		if err := r.initShipper(); err != nil {
			return fmt.Errorf("init log shipper: %w", err)
		}
	}

	r.logger, r.logs = logging.New(logging.Options{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     r.logOutput,
		BufferSize: cfg.Log.BufferSize,
		Shipper:    r.shipper,
	})

	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(cfg.Telemetry.ServiceName, r.traceOutput, r.logger)
		if err != nil {
			return fmt.Errorf("init tracer: %w", err)
		}
		r.shutdownTracer = shutdown
		hc := *r.httpClient
		hc.Transport = telemetry.Transport(hc.Transport)
		r.httpClient = &hc
	}

	if r.notifier == nil {
		r.notifier = report.LogNotifier{Logger: r.logger}
	}
	r.stats = report.NewStats(r.registry)
	r.reporter = report.NewReporter(r.notifier, r.logger, report.WithStats(r.stats))

	if r.backend == nil {
		backend, err := openBackend(cfg)
		if err != nil {
			return fmt.Errorf("open %s storage: %w", cfg.Storage.Type, err)
		}
		r.backend = backend
	}
	r.store = storage.NewStore(r.backend,
		storage.WithPrefix(cfg.Storage.Prefix),
		storage.WithExpiry(cfg.Expiry()),
	)
	if err := r.seedAuth(); err != nil {
		return err
	}

	copts := []request.ClientOption{
		request.WithHTTPClient(r.httpClient),
		request.WithTimeout(cfg.API.Timeout),
		request.WithAuth(r.store),
		request.WithLogger(r.logger),
		request.WithReporter(r.reporter),
	}
	for k, v := range cfg.API.Headers {
		copts = append(copts, request.WithHeader(k, v))
	}
	r.client = request.NewClient(r.baseURL, copts...)

	r.CAM = cam.NewClient(r.client)
	r.CMDB = cmdb.NewClient(r.client)
	r.IAM = iam.NewClient(r.client)

	r.logger.Debug("runtime initialized",
		slog.String("mode", cfg.Mode),
		slog.String("base_url", r.client.BaseURL()),
		slog.String("storage", cfg.Storage.Type),
		slog.Bool("shipping", r.shipper != nil),
	)
	return nil
}

func (r *Runtime) initShipper() error {
	c := r.cfg.Collector

	var sink logging.Sink
	switch c.Type {
	case "nats":
		s, err := logging.DialNATS(c.URL, c.Subject)
		if err != nil {
			return err
		}
		sink, r.sink = s, s
	default:
		sink = logging.NewHTTPSink(c.URL, r.httpClient)
	}

	r.shipper = logging.NewShipper(sink, logging.ShipperOptions{
		QueueSize: c.QueueSize,
		BatchSize: c.BatchSize,
		Rate:      c.Rate,
		Burst:     c.Burst,
		Fallback:  r.fallback,
	})
	return nil
}

func openBackend(cfg *config.Config) (storage.Backend, error) {
	s := cfg.Storage
	switch s.Type {
	case "sqlite":
		return sqlite.New(s.Path)
	case "redis":
		ctx, cancel := context.WithTimeout(context.Background(), cfg.API.Timeout)
		defer cancel()
		return redis.New(ctx, redis.Options{
			Addr:     s.RedisAddr,
			Password: s.RedisPassword,
			DB:       s.RedisDB,
		})
	default:
		return memory.New(), nil
	}
}

// seedAuth persists credentials given in configuration so they win over
// whatever an earlier session left behind.
func (r *Runtime) seedAuth() error {
	ctx := context.Background()
	if tok := r.cfg.Auth.Token; tok != "" {
		if err := r.store.SetToken(ctx, tok); err != nil {
			return fmt.Errorf("store configured token: %w", err)
		}
	}
	if tenant := r.cfg.Auth.TenantID; tenant != "" {
		if err := r.store.SetTenantID(ctx, tenant); err != nil {
			return fmt.Errorf("store configured tenant: %w", err)
		}
	}
	return nil
}

// Config returns the configuration the runtime was built from.
func (r *Runtime) Config() *config.Config { return r.cfg }

// Logger returns the process logger.
func (r *Runtime) Logger() *slog.Logger { return r.logger }

// Logs returns the in-memory log buffer.
func (r *Runtime) Logs() *logging.Buffer { return r.logs }

// Stats returns the failure counters.
func (r *Runtime) Stats() *report.Stats { return r.stats }

// Store returns the persisted client state.
func (r *Runtime) Store() *storage.Store { return r.store }

// Client returns the shared request client.
func (r *Runtime) Client() *request.Client { return r.client }

// Shipper returns the log shipper, or nil when logs stay local.
func (r *Runtime) Shipper() *logging.Shipper { return r.shipper }

// RetryOptions returns the configured retry policy.
func (r *Runtime) RetryOptions() retry.Options {
	return retry.Options{
		MaxRetries: r.cfg.Retry.MaxRetries,
		Delay:      r.cfg.Retry.Delay,
		Logger:     r.logger,
	}
}

// Retry calls fn under rt's retry policy.
func Retry[T any](ctx context.Context, rt *Runtime, fn func(context.Context) (T, error)) (T, error) {
	return retry.Do(ctx, fn, rt.RetryOptions())
}

// Close flushes pending log entries and releases storage and telemetry.
// It is safe to call more than once.
func (r *Runtime) Close(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	return r.release(ctx)
}

func (r *Runtime) release(ctx context.Context) error {
	var errs []error
	if r.shipper != nil {
		if err := r.shipper.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("flush log shipper: %w", err))
		}
	}
	if r.sink != nil {
		if err := r.sink.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close log sink: %w", err))
		}
	}
	if r.backend != nil {
		if err := r.backend.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close storage: %w", err))
		}
	}
	if r.shutdownTracer != nil {
		if err := r.shutdownTracer(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown tracer: %w", err))
		}
	}
	return errors.Join(errs...)
}
