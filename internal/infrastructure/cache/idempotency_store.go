package cache

import (
	"context"
	"sync"
	"time"
)

// IdempotencyStore remembers client-supplied idempotency keys so a
// retried create is not executed twice. Claim is atomic: exactly one of
// two concurrent callers with the same key wins.
type IdempotencyStore interface {
	// Claim records the key with a TTL. Returns true if the key was newly
	// claimed, false if another request already holds it.
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Release drops a claimed key, allowing a clean retry after the
	// claiming request failed before committing.
	Release(ctx context.Context, key string) error
}

// InMemoryIdempotencyStore is a single-instance implementation for tests
// and single-node deployments.
type InMemoryIdempotencyStore struct {
	mu      sync.Mutex
	claimed map[string]time.Time // key -> claim expiration
}

// NewInMemoryIdempotencyStore creates a new in-memory idempotency store
func NewInMemoryIdempotencyStore() *InMemoryIdempotencyStore {
	return &InMemoryIdempotencyStore{claimed: make(map[string]time.Time)}
}

// Claim records the key if it is not already held
func (s *InMemoryIdempotencyStore) Claim(_ context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if expiration, exists := s.claimed[key]; exists && time.Now().Before(expiration) {
		return false, nil
	}
	s.claimed[key] = time.Now().Add(ttl)
	return true, nil
}

// Release drops a claimed key
func (s *InMemoryIdempotencyStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.claimed, key)
	return nil
}

var _ IdempotencyStore = (*InMemoryIdempotencyStore)(nil)
