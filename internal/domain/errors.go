// Package domain provides the canonical response and error types shared by
// the CAM client layers.
package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents the category of a failed API call.
type ErrorType string

const (
	// ErrorTypeNetwork indicates the request never got a response.
	ErrorTypeNetwork ErrorType = "network"

	// ErrorTypeAuth indicates an authentication or permission failure.
	ErrorTypeAuth ErrorType = "auth"

	// ErrorTypeBusiness indicates the backend rejected the operation.
	ErrorTypeBusiness ErrorType = "business"

	// ErrorTypeValidation indicates the request parameters were invalid.
	ErrorTypeValidation ErrorType = "validation"

	// ErrorTypeTimeout indicates the request or gateway timed out.
	ErrorTypeTimeout ErrorType = "timeout"

	// ErrorTypeCORS indicates a cross-origin rejection.
	ErrorTypeCORS ErrorType = "cors"

	// ErrorTypeNotFound indicates the resource does not exist.
	ErrorTypeNotFound ErrorType = "notfound"

	// ErrorTypeUnknown is everything else.
	ErrorTypeUnknown ErrorType = "unknown"
)

// ErrorInfo is the single failure value returned by every API call.
type ErrorInfo struct {
	// Type is the category of error
	Type ErrorType `json:"type"`

	// Code is the business or HTTP code, 0 when absent
	Code int `json:"code,omitempty"`

	// Status is the HTTP status of the response, 0 when there was none
	Status int `json:"status,omitempty"`

	// Message is the human-readable summary
	Message string `json:"message"`

	// Details carries the backend message or the underlying error text
	Details string `json:"details,omitempty"`

	// Suggestion is a hint for the user on what to do next
	Suggestion string `json:"suggestion,omitempty"`

	// CanRetry reports whether repeating the call may succeed
	CanRetry bool `json:"canRetry"`

	// URL is the request URL, for logging
	URL string `json:"url,omitempty"`

	cause error
}

// Error implements the error interface.
func (e *ErrorInfo) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Type))
	if e.Code != 0 {
		fmt.Fprintf(&b, " (%d)", e.Code)
	}
	b.WriteString(": ")
	b.WriteString(e.Message)
	if e.Details != "" && e.Details != e.Message {
		b.WriteString(": ")
		b.WriteString(e.Details)
	}
	return b.String()
}

// Unwrap returns the transport error this info was derived from, if any.
func (e *ErrorInfo) Unwrap() error {
	return e.cause
}

// NewErrorInfo creates a new error info.
func NewErrorInfo(errType ErrorType, message string) *ErrorInfo {
	return &ErrorInfo{
		Type:    errType,
		Message: message,
	}
}

// WithCode sets the business or HTTP code.
func (e *ErrorInfo) WithCode(code int) *ErrorInfo {
	e.Code = code
	return e
}

// WithStatus sets the HTTP status.
func (e *ErrorInfo) WithStatus(status int) *ErrorInfo {
	e.Status = status
	return e
}

// WithDetails sets the details text.
func (e *ErrorInfo) WithDetails(details string) *ErrorInfo {
	e.Details = details
	return e
}

// WithSuggestion sets the user hint.
func (e *ErrorInfo) WithSuggestion(suggestion string) *ErrorInfo {
	e.Suggestion = suggestion
	return e
}

// WithRetry marks whether the failure is retryable.
func (e *ErrorInfo) WithRetry(canRetry bool) *ErrorInfo {
	e.CanRetry = canRetry
	return e
}

// WithURL records the request URL.
func (e *ErrorInfo) WithURL(url string) *ErrorInfo {
	e.URL = url
	return e
}

// WithCause records the underlying error.
func (e *ErrorInfo) WithCause(err error) *ErrorInfo {
	e.cause = err
	return e
}

// WithMessage returns a copy of e carrying msg as its message. The receiver
// is left untouched so a shared value can be re-labelled per call site.
func (e *ErrorInfo) WithMessage(msg string) *ErrorInfo {
	cp := *e
	if msg != "" {
		cp.Message = msg
	}
	return &cp
}

// AsErrorInfo extracts an *ErrorInfo from err's chain.
func AsErrorInfo(err error) (*ErrorInfo, bool) {
	var info *ErrorInfo
	if errors.As(err, &info) {
		return info, true
	}
	return nil, false
}
