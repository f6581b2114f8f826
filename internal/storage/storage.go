// Package storage persists client state (credentials, tenant selection and
// cached store snapshots) behind a small key/value Backend.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrClosed is returned by backends after Close.
var ErrClosed = errors.New("storage: backend closed")

// Backend is a key/value store with per-key expiry. A zero ttl means the
// key never expires.
type Backend interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
