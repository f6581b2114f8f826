// Package request is the transport of the CAM client: it dispatches
// descriptors, runs the hook chain and hands every failure to the
// classifier and reporter before returning it.
package request

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Havens-blog/e-cam-web/internal/classify"
	"github.com/Havens-blog/e-cam-web/internal/domain"
	"github.com/Havens-blog/e-cam-web/internal/envelope"
	"github.com/Havens-blog/e-cam-web/internal/logging"
	"github.com/Havens-blog/e-cam-web/internal/report"
)

const (
	// DefaultBaseURL is used when no base URL is configured.
	DefaultBaseURL = "/api/v1"

	// DefaultTimeout bounds a call unless the descriptor overrides it.
	DefaultTimeout = 30 * time.Second

	// HeaderTenantID selects the tenant on the backend.
	HeaderTenantID = "X-Tenant-ID"

	tracerName = "github.com/Havens-blog/e-cam-web/internal/request"
)

// ClientOption configures the client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout sets the default per-call timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithHeader adds a header sent with every call.
func WithHeader(key, value string) ClientOption {
	return func(c *Client) {
		c.header.Set(key, value)
	}
}

// WithInterceptors sets the instance-level hooks.
func WithInterceptors(i Interceptors) ClientOption {
	return func(c *Client) {
		c.instance = i
	}
}

// WithNormalizer sets the envelope normalizer used as the default one-shot
// response hook.
func WithNormalizer(n envelope.Normalizer) ClientOption {
	return func(c *Client) {
		c.normalizer = n
	}
}

// WithGroup selects the normalizer for a backend group.
func WithGroup(g envelope.Group) ClientOption {
	return func(c *Client) {
		c.group = g
		c.normalizer = envelope.For(g)
	}
}

// WithAuth sets the credential source.
func WithAuth(p domain.AuthProvider) ClientOption {
	return func(c *Client) {
		c.auth = p
	}
}

// WithRequestID sets the request id generator.
func WithRequestID(gen func() string) ClientOption {
	return func(c *Client) {
		c.newRequestID = gen
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithReporter sets where failures are reported.
func WithReporter(r *report.Reporter) ClientOption {
	return func(c *Client) {
		c.reporter = r
	}
}

// WithTracer sets the tracer used for per-call spans.
func WithTracer(t trace.Tracer) ClientOption {
	return func(c *Client) {
		c.tracer = t
	}
}

// Client dispatches descriptors against one base URL.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	timeout      time.Duration
	header       http.Header
	instance     Interceptors
	group        envelope.Group
	normalizer   envelope.Normalizer
	auth         domain.AuthProvider
	newRequestID func() string
	logger       *slog.Logger
	reporter     *report.Reporter
	tracer       trace.Tracer
}

// NewClient creates a new client.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		httpClient:   http.DefaultClient,
		timeout:      DefaultTimeout,
		header:       http.Header{"Content-Type": []string{"application/json"}},
		group:        envelope.GroupGeneric,
		normalizer:   envelope.Passthrough{},
		newRequestID: NewRequestID,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.reporter == nil {
		c.reporter = report.NewReporter(nil, c.logger)
	}
	if c.tracer == nil {
		c.tracer = otel.Tracer(tracerName)
	}
	return c
}

// With derives a client sharing this one's configuration.
func (c *Client) With(opts ...ClientOption) *Client {
	cp := *c
	cp.header = c.header.Clone()
	for _, opt := range opts {
		opt(&cp)
	}
	return &cp
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// Group returns the backend group of this client.
func (c *Client) Group() envelope.Group { return c.group }

// Request performs one call. On success it returns the canonical data of a
// JSON response, or the raw body of a binary one. Every failure is
// reported once and returned as a *domain.ErrorInfo.
func (c *Client) Request(ctx context.Context, desc Descriptor) ([]byte, error) {
	d := desc.clone()

	ctx, span := c.tracer.Start(ctx, "cam.request",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", d.Method),
			attribute.String("cam.url", d.URL),
			attribute.String("cam.group", string(c.group)),
		),
	)
	defer span.End()

	if GetRequestID(ctx) == "" {
		ctx = ContextWithRequestID(ctx, c.newRequestID())
	}

	timeout := c.timeout
	if d.Timeout > 0 {
		timeout = d.Timeout
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	for _, hook := range []RequestHook{c.instance.Request, c.globalRequest, d.onceRequest()} {
		if hook == nil {
			continue
		}
		if err := hook(ctx, d); err != nil {
			return nil, c.fail(ctx, span, hookError(err), d)
		}
	}

	start := time.Now()
	resp, err := c.send(ctx, d)
	if err != nil {
		return nil, c.fail(ctx, span, classify.Transport(err), d)
	}
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	if d.ResponseType.Binary() {
		for _, hook := range []ResponseHook{d.onceResponse(nil), c.instance.Response} {
			if hook == nil {
				continue
			}
			if err := hook(ctx, resp); err != nil {
				return nil, c.fail(ctx, span, hookError(err), d)
			}
		}
		c.logResponse(ctx, resp, d, time.Since(start))
		return resp.Body, nil
	}

	for _, hook := range []ResponseHook{d.onceResponse(c.normalizer), c.instance.Response} {
		if hook == nil {
			continue
		}
		if err := hook(ctx, resp); err != nil {
			return nil, c.fail(ctx, span, hookError(err), d)
		}
	}

	data, info := classify.Outcome(resp.Body)
	if info != nil {
		return nil, c.fail(ctx, span, info, d)
	}
	c.logResponse(ctx, resp, d, time.Since(start))
	return data, nil
}

func (c *Client) logResponse(ctx context.Context, resp *Response, d *Descriptor, took time.Duration) {
	c.logger.LogAttrs(ctx, slog.LevelDebug, "api response",
		logging.Context("API"),
		slog.Int("status", resp.StatusCode),
		slog.String("url", d.URL),
		slog.String("request_id", GetRequestID(ctx)),
		slog.Duration("duration", took),
	)
}

// Get performs a GET.
func (c *Client) Get(ctx context.Context, d Descriptor) ([]byte, error) {
	d.Method = http.MethodGet
	return c.Request(ctx, d)
}

// Post performs a POST.
func (c *Client) Post(ctx context.Context, d Descriptor) ([]byte, error) {
	d.Method = http.MethodPost
	return c.Request(ctx, d)
}

// Put performs a PUT.
func (c *Client) Put(ctx context.Context, d Descriptor) ([]byte, error) {
	d.Method = http.MethodPut
	return c.Request(ctx, d)
}

// Delete performs a DELETE.
func (c *Client) Delete(ctx context.Context, d Descriptor) ([]byte, error) {
	d.Method = http.MethodDelete
	return c.Request(ctx, d)
}

// Patch performs a PATCH.
func (c *Client) Patch(ctx context.Context, d Descriptor) ([]byte, error) {
	d.Method = http.MethodPatch
	return c.Request(ctx, d)
}

// globalRequest attaches credentials and the request id.
func (c *Client) globalRequest(ctx context.Context, d *Descriptor) error {
	for k, v := range c.header {
		if _, set := d.Header[k]; !set {
			d.Header[k] = append([]string(nil), v...)
		}
	}

	if c.auth != nil {
		ac, err := c.auth.AuthContext(ctx)
		if err != nil {
			return fmt.Errorf("failed to load credentials: %w", err)
		}
		if ac.Token != "" {
			d.Header.Set("Authorization", "Bearer "+ac.Token)
		}
		if ac.TenantID != "" && d.Header.Get(HeaderTenantID) == "" {
			d.Header.Set(HeaderTenantID, ac.TenantID)
		}
	}

	requestID := GetRequestID(ctx)
	d.Header.Set(HeaderRequestID, requestID)

	c.logger.LogAttrs(ctx, slog.LevelDebug, "api request",
		logging.Context("API"),
		slog.String("method", d.Method),
		slog.String("url", d.URL),
		slog.String("params", d.Params.Encode()),
		slog.String("request_id", requestID),
	)
	return nil
}

func (c *Client) send(ctx context.Context, d *Descriptor) (*Response, error) {
	target, err := c.resolve(d)
	if err != nil {
		return nil, err
	}

	body, contentType, err := encodeBody(d.Body)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, d.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header = d.Header.Clone()
	if contentType != "" && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if body == nil {
		httpReq.Header.Del("Content-Type")
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &classify.HTTPError{
			StatusCode: resp.StatusCode,
			Body:       respBody,
			URL:        d.URL,
		}
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       respBody,
		Descriptor: d,
	}, nil
}

func (c *Client) resolve(d *Descriptor) (string, error) {
	raw := d.URL
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = c.baseURL + "/" + strings.TrimPrefix(raw, "/")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("failed to parse url %q: %w", raw, err)
	}
	if len(d.Params) > 0 {
		q := u.Query()
		for k, vs := range d.Params {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

func encodeBody(body any) (io.Reader, string, error) {
	switch b := body.(type) {
	case nil:
		return nil, "", nil
	case []byte:
		return bytes.NewReader(b), "application/octet-stream", nil
	case string:
		return strings.NewReader(b), "text/plain; charset=utf-8", nil
	case io.Reader:
		return b, "application/octet-stream", nil
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, "", fmt.Errorf("failed to marshal request: %w", err)
		}
		return bytes.NewReader(data), "application/json", nil
	}
}

// fail reports info once, marks the span and returns info as the call
// error.
func (c *Client) fail(ctx context.Context, span trace.Span, info *domain.ErrorInfo, d *Descriptor) error {
	if info.URL == "" {
		info.URL = d.URL
	}
	span.RecordError(info)
	span.SetStatus(codes.Error, info.Message)
	span.SetAttributes(attribute.String("error.type", string(info.Type)))

	c.reporter.Report(ctx, info)
	return info
}

func hookError(err error) *domain.ErrorInfo {
	if info, ok := domain.AsErrorInfo(err); ok {
		return info
	}
	return domain.NewErrorInfo(domain.ErrorTypeUnknown, "请求处理失败").
		WithDetails(err.Error()).
		WithRetry(false).
		WithCause(err)
}

func (d *Descriptor) onceRequest() RequestHook {
	if d.Once == nil {
		return nil
	}
	return d.Once.Request
}

func (d *Descriptor) onceResponse(fallback envelope.Normalizer) ResponseHook {
	if d.Once != nil && d.Once.Response != nil {
		return d.Once.Response
	}
	if fallback == nil {
		return nil
	}
	return NormalizeHook(fallback)
}

// NormalizeHook adapts a normalizer into a response hook.
func NormalizeHook(n envelope.Normalizer) ResponseHook {
	return func(_ context.Context, r *Response) error {
		body, err := n.Normalize(r.Body)
		if err != nil {
			return err
		}
		r.Body = body
		return nil
	}
}
