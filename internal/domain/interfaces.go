package domain

import (
	"context"
)

// AuthContext is the credential pair attached to every outgoing request.
type AuthContext struct {
	Token    string
	TenantID string
}

// AuthProvider supplies the current credentials. The request layer reads it
// before each call and never writes back.
type AuthProvider interface {
	AuthContext(ctx context.Context) (AuthContext, error)
}

// StaticAuth is a fixed AuthProvider.
type StaticAuth AuthContext

// AuthContext implements AuthProvider.
func (s StaticAuth) AuthContext(context.Context) (AuthContext, error) {
	return AuthContext(s), nil
}
