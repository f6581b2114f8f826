package classify

import (
	"fmt"
	"net/http"

	"github.com/Havens-blog/e-cam-web/internal/domain"
	"github.com/Havens-blog/e-cam-web/internal/envelope"
)

type statusRule struct {
	errType    domain.ErrorType
	message    string
	details    string
	suggestion string
	canRetry   bool
}

var statusTable = map[int]statusRule{
	http.StatusBadRequest: {
		errType:    domain.ErrorTypeValidation,
		message:    "请求参数错误",
		details:    "请求错误",
		suggestion: "请检查输入后重试",
	},
	http.StatusUnauthorized: {
		errType:    domain.ErrorTypeAuth,
		message:    "认证失败",
		details:    "您的登录已过期",
		suggestion: "请重新登录",
	},
	http.StatusForbidden: {
		errType:    domain.ErrorTypeAuth,
		message:    "权限不足",
		details:    "您没有权限访问此资源",
		suggestion: "请联系管理员获取权限",
	},
	http.StatusNotFound: {
		errType:    domain.ErrorTypeNotFound,
		message:    "API 端点不存在",
		suggestion: "请检查 API 配置或联系技术支持",
	},
	http.StatusRequestTimeout: {
		errType:    domain.ErrorTypeTimeout,
		message:    "请求超时",
		details:    "服务器响应时间过长",
		suggestion: "请稍后重试或检查网络速度",
		canRetry:   true,
	},
	http.StatusTooManyRequests: {
		errType:    domain.ErrorTypeBusiness,
		message:    "请求过于频繁",
		details:    "请求次数超过限制",
		suggestion: "请稍后重试",
		canRetry:   true,
	},
	http.StatusInternalServerError: {
		errType:    domain.ErrorTypeBusiness,
		message:    "服务器错误",
		suggestion: "请稍后重试或联系系统管理员",
		canRetry:   true,
	},
	http.StatusBadGateway: {
		errType:    domain.ErrorTypeNetwork,
		message:    "网关错误",
		suggestion: "请稍后重试或联系系统管理员",
		canRetry:   true,
	},
	http.StatusServiceUnavailable: {
		errType:    domain.ErrorTypeNetwork,
		message:    "服务不可用",
		suggestion: "请稍后重试或联系系统管理员",
		canRetry:   true,
	},
	http.StatusGatewayTimeout: {
		errType:    domain.ErrorTypeTimeout,
		message:    "网关超时",
		suggestion: "请稍后重试或联系系统管理员",
		canRetry:   true,
	},
}

// Status classifies an HTTP status using the fixed table. A message or msg
// in the error body overrides the default details.
func Status(status int, body []byte, url string) *domain.ErrorInfo {
	rule, ok := statusTable[status]
	if !ok {
		rule = statusRule{
			errType:    domain.ErrorTypeUnknown,
			message:    "请求失败",
			details:    fmt.Sprintf("HTTP %d", status),
			suggestion: "请重试或联系技术支持",
			canRetry:   status >= 500,
		}
	}

	details := rule.details
	switch status {
	case http.StatusNotFound:
		details = "请求的资源未找到: " + url
	case http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		details = fmt.Sprintf("服务器返回 %d 错误", status)
	}
	if msg := bodyMessage(body); msg != "" {
		details = msg
	}

	return domain.NewErrorInfo(rule.errType, rule.message).
		WithCode(status).
		WithStatus(status).
		WithDetails(details).
		WithSuggestion(rule.suggestion).
		WithRetry(rule.canRetry).
		WithURL(url)
}

func bodyMessage(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	env, err := envelope.Parse(body)
	if err != nil || !env.IsObject() {
		return ""
	}
	return env.Message()
}
