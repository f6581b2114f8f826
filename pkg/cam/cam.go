// Package cam provides the public API for embedding the CAM client.
// This is the stable API for external consumers.
package cam

import (
	"context"

	"github.com/Havens-blog/e-cam-web/internal/config"
	"github.com/Havens-blog/e-cam-web/internal/domain"
	"github.com/Havens-blog/e-cam-web/internal/report"
	"github.com/Havens-blog/e-cam-web/internal/runtime"
)

// CAM is the assembled client. See internal/runtime.Runtime for details.
type CAM = runtime.Runtime

// Option is a functional option for configuring a CAM.
type Option = runtime.Option

// Config is the loaded client configuration.
type Config = config.Config

// New assembles a client from cfg.
// Example:
//
//	cfg, err := cam.LoadConfig("config.yaml")
//	...
//	c, err := cam.New(cfg, cam.WithNotifier(cam.WriterNotifier{W: os.Stderr}))
//	defer c.Close(ctx)
var New = runtime.New

// LoadConfig reads configuration from path and CAM_ environment variables.
var LoadConfig = config.Load

// ErrorInfo is the failure value every API call returns.
type ErrorInfo = domain.ErrorInfo

// AsErrorInfo extracts the *ErrorInfo from an error returned by an API call.
var AsErrorInfo = domain.AsErrorInfo

// Notifications
type (
	Notification   = report.Notification
	Notifier       = report.Notifier
	NotifierFunc   = report.NotifierFunc
	Severity       = report.Severity
	WriterNotifier = report.WriterNotifier
	LogNotifier    = report.LogNotifier
)

const (
	SeverityPersistent  = report.SeverityPersistent
	SeverityToast       = report.SeverityToast
	SeverityLightweight = report.SeverityLightweight
)

// Configuration options
var (
	WithNotifier       = runtime.WithNotifier
	WithHTTPClient     = runtime.WithHTTPClient
	WithRegistry       = runtime.WithRegistry
	WithLogOutput      = runtime.WithLogOutput
	WithTraceOutput    = runtime.WithTraceOutput
	WithBackend        = runtime.WithBackend
	WithBaseURL        = runtime.WithBaseURL
	WithFallbackLogger = runtime.WithFallbackLogger
)

// Retry calls fn under c's configured retry policy.
func Retry[T any](ctx context.Context, c *CAM, fn func(context.Context) (T, error)) (T, error) {
	return runtime.Retry(ctx, c, fn)
}
