package request

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

// RequestIDKey is the context key for the id of the outgoing request.
const RequestIDKey contextKey = "request_id"

// HeaderRequestID carries the request id on the wire.
const HeaderRequestID = "X-Request-ID"

// NewRequestID returns a random request id.
func NewRequestID() string {
	return uuid.New().String()
}

// ContextWithRequestID stores id in ctx.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

// GetRequestID retrieves the request ID from context.
// Returns an empty string if no request ID is set.
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}
