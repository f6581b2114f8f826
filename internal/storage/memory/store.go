package memory

import (
	"context"
	"sync"
	"time"

	"github.com/Havens-blog/e-cam-web/internal/storage"
)

type item struct {
	value     []byte
	expiresAt time.Time
}

// Store is an in-memory implementation of storage.Backend
type Store struct {
	mu     sync.RWMutex
	items  map[string]item
	now    func() time.Time
	closed bool
}

var _ storage.Backend = (*Store)(nil)

// New creates a new in-memory store
func New() *Store {
	return &Store{
		items: make(map[string]item),
		now:   time.Now,
	}
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, false, storage.ErrClosed
	}
	it, exists := s.items[key]
	if !exists {
		return nil, false, nil
	}
	if !it.expiresAt.IsZero() && !s.now().Before(it.expiresAt) {
		return nil, false, nil
	}
	return append([]byte(nil), it.value...), true, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return storage.ErrClosed
	}
	it := item{value: append([]byte(nil), value...)}
	if ttl > 0 {
		it.expiresAt = s.now().Add(ttl)
	}
	s.items[key] = it
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return storage.ErrClosed
	}
	delete(s.items, key)
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.items = nil
	return nil
}
