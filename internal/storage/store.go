package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Havens-blog/e-cam-web/internal/domain"
)

const (
	// DefaultPrefix namespaces every key.
	DefaultPrefix = "cam_"

	// DefaultExpiry is how long persisted values live.
	DefaultExpiry = 7 * 24 * time.Hour

	// DefaultTenantID is used when no tenant was selected.
	DefaultTenantID = "default"

	KeyToken    = "token"
	KeyTenantID = "tenantId"
)

// Snapshot names for cached store state.
const (
	SnapshotUser     = "cam-user"
	SnapshotAccounts = "cam-accounts"
	SnapshotAssets   = "cam-assets"
	SnapshotApp      = "cam-app"
)

// Store is the client state boundary. It implements domain.AuthProvider so
// the request layer can read credentials without knowing where they live.
type Store struct {
	backend Backend
	prefix  string
	expiry  time.Duration
}

var _ domain.AuthProvider = (*Store)(nil)

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithPrefix overrides the key prefix.
func WithPrefix(prefix string) StoreOption {
	return func(s *Store) { s.prefix = prefix }
}

// WithExpiry overrides the value lifetime.
func WithExpiry(d time.Duration) StoreOption {
	return func(s *Store) { s.expiry = d }
}

// NewStore wraps backend.
func NewStore(backend Backend, opts ...StoreOption) *Store {
	s := &Store{backend: backend, prefix: DefaultPrefix, expiry: DefaultExpiry}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) key(name string) string { return s.prefix + name }

// Token returns the stored bearer token, or "".
func (s *Store) Token(ctx context.Context) (string, error) {
	v, ok, err := s.backend.Get(ctx, s.key(KeyToken))
	if err != nil {
		return "", fmt.Errorf("failed to read token: %w", err)
	}
	if !ok {
		return "", nil
	}
	return string(v), nil
}

// SetToken stores the bearer token.
func (s *Store) SetToken(ctx context.Context, token string) error {
	if err := s.backend.Set(ctx, s.key(KeyToken), []byte(token), s.expiry); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}
	return nil
}

// ClearToken removes the bearer token.
func (s *Store) ClearToken(ctx context.Context) error {
	if err := s.backend.Delete(ctx, s.key(KeyToken)); err != nil {
		return fmt.Errorf("failed to clear token: %w", err)
	}
	return nil
}

// TenantID returns the selected tenant, or DefaultTenantID.
func (s *Store) TenantID(ctx context.Context) (string, error) {
	v, ok, err := s.backend.Get(ctx, s.key(KeyTenantID))
	if err != nil {
		return "", fmt.Errorf("failed to read tenant: %w", err)
	}
	if !ok || len(v) == 0 {
		return DefaultTenantID, nil
	}
	return string(v), nil
}

// SetTenantID selects a tenant.
func (s *Store) SetTenantID(ctx context.Context, tenantID string) error {
	if err := s.backend.Set(ctx, s.key(KeyTenantID), []byte(tenantID), s.expiry); err != nil {
		return fmt.Errorf("failed to store tenant: %w", err)
	}
	return nil
}

// AuthContext implements domain.AuthProvider.
func (s *Store) AuthContext(ctx context.Context) (domain.AuthContext, error) {
	token, err := s.Token(ctx)
	if err != nil {
		return domain.AuthContext{}, err
	}
	tenant, err := s.TenantID(ctx)
	if err != nil {
		return domain.AuthContext{}, err
	}
	return domain.AuthContext{Token: token, TenantID: tenant}, nil
}

// SaveSnapshot stores v as JSON under name.
func (s *Store) SaveSnapshot(ctx context.Context, name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot %s: %w", name, err)
	}
	if err := s.backend.Set(ctx, s.key(name), data, s.expiry); err != nil {
		return fmt.Errorf("failed to store snapshot %s: %w", name, err)
	}
	return nil
}

// LoadSnapshot decodes the snapshot stored under name into v. ok is false
// when there is none.
func (s *Store) LoadSnapshot(ctx context.Context, name string, v any) (bool, error) {
	data, ok, err := s.backend.Get(ctx, s.key(name))
	if err != nil {
		return false, fmt.Errorf("failed to read snapshot %s: %w", name, err)
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("failed to decode snapshot %s: %w", name, err)
	}
	return true, nil
}

// DeleteSnapshot removes a snapshot.
func (s *Store) DeleteSnapshot(ctx context.Context, name string) error {
	if err := s.backend.Delete(ctx, s.key(name)); err != nil {
		return fmt.Errorf("failed to delete snapshot %s: %w", name, err)
	}
	return nil
}

// Close closes the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}
