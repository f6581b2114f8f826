package classify

import (
	"encoding/json"

	"github.com/Havens-blog/e-cam-web/internal/domain"
	"github.com/Havens-blog/e-cam-web/internal/envelope"
)

// Outcome applies the global success check to a normalized body. Codes 0
// and 200 succeed and yield the data field. Any other code is a business
// failure. A body without a code never passed through a normalizer and is
// reported as a format error.
func Outcome(body []byte) (json.RawMessage, *domain.ErrorInfo) {
	env, err := envelope.Parse(body)
	if err != nil || !env.HasCode() {
		return nil, formatError(err)
	}

	code, numeric := env.Code()
	if numeric && (code == 0 || code == 200) {
		return env.Data(), nil
	}

	msg := env.Message()
	if msg == "" {
		msg = "Error"
	}
	return nil, Business(code, msg)
}

// Business builds the error for a non-success business code.
func Business(code int, msg string) *domain.ErrorInfo {
	return domain.NewErrorInfo(domain.ErrorTypeBusiness, msg).
		WithCode(code).
		WithRetry(false)
}

func formatError(cause error) *domain.ErrorInfo {
	info := domain.NewErrorInfo(domain.ErrorTypeUnknown, "接口响应格式错误").
		WithDetails("invalid response format").
		WithRetry(false)
	if cause != nil {
		info.WithCause(cause)
	}
	return info
}
