// Package classify turns transport failures and business envelopes into
// domain.ErrorInfo values.
package classify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"syscall"

	"github.com/Havens-blog/e-cam-web/internal/domain"
)

// HTTPError is the transport error for a response with a non-2xx status.
type HTTPError struct {
	StatusCode int
	Body       []byte
	URL        string
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	return fmt.Sprintf("request failed with status code %d", e.StatusCode)
}

// Transport classifies an error raised while sending a request or reading
// its response. Branches are tried in order: HTTP status, cancel, timeout,
// network, cors, unknown. A failure matching both timeout and network is a
// timeout.
func Transport(err error) *domain.ErrorInfo {
	if err == nil {
		return nil
	}
	if info, ok := domain.AsErrorInfo(err); ok {
		return info
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return Status(httpErr.StatusCode, httpErr.Body, httpErr.URL).WithCause(err)
	}

	switch {
	case errors.Is(err, context.Canceled):
		return domain.NewErrorInfo(domain.ErrorTypeUnknown, "请求已取消").
			WithDetails(err.Error()).
			WithRetry(false).
			WithCause(err)

	case isTimeout(err):
		return domain.NewErrorInfo(domain.ErrorTypeTimeout, "请求超时").
			WithDetails("服务器响应时间过长").
			WithSuggestion("请稍后重试或检查网络速度").
			WithRetry(true).
			WithCause(err)

	case isNetwork(err):
		return domain.NewErrorInfo(domain.ErrorTypeNetwork, "网络连接失败").
			WithDetails("无法连接到服务器").
			WithSuggestion("请检查您的网络连接是否正常").
			WithRetry(true).
			WithCause(err)

	case isCORS(err):
		return domain.NewErrorInfo(domain.ErrorTypeCORS, "跨域请求被阻止").
			WithDetails("CORS 策略阻止了请求").
			WithSuggestion("请联系管理员检查服务器 CORS 配置").
			WithRetry(false).
			WithCause(err)
	}

	return domain.NewErrorInfo(domain.ErrorTypeUnknown, "未知错误").
		WithDetails(err.Error()).
		WithSuggestion("请刷新页面重试").
		WithRetry(true).
		WithCause(err)
}

// IsRetryable reports whether err carries a retryable classification.
func IsRetryable(err error) bool {
	info, ok := domain.AsErrorInfo(err)
	return ok && info.CanRetry
}

// isTimeout detects deadline and timeout failures. It must run before
// isNetwork because timeouts also surface as *net.OpError.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "timeout") ||
		strings.Contains(msg, "timed out") ||
		strings.Contains(msg, "econnaborted")
}

func isNetwork(err error) bool {
	var (
		opErr  *net.OpError
		dnsErr *net.DNSError
	)
	switch {
	case errors.As(err, &opErr),
		errors.As(err, &dnsErr),
		errors.Is(err, syscall.ECONNREFUSED),
		errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, syscall.EPIPE),
		errors.Is(err, io.ErrUnexpectedEOF),
		errors.Is(err, io.EOF):
		return true
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "network error") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "no such host") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "network is unreachable")
}

func isCORS(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "cors") || strings.Contains(msg, "cross-origin")
}
