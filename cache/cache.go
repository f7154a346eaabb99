package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/devmarvs/secureheaders/security"
)

// Store caches resolved header sets by key.
type Store interface {
	Get(ctx context.Context, key string) ([]security.Header, bool, error)
	Set(ctx context.Context, key string, headers []security.Header, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// MemoryOptions configures an in-process store.
type MemoryOptions struct {
	DefaultTTL      time.Duration
	CleanupInterval time.Duration
}

// MemoryStore keeps header sets in process memory.
type MemoryStore struct {
	items *gocache.Cache
}

// NewMemory builds an in-process store. A zero DefaultTTL keeps entries
// until deleted.
func NewMemory(options MemoryOptions) *MemoryStore {
	ttl := options.DefaultTTL
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	cleanup := options.CleanupInterval
	if cleanup <= 0 && options.DefaultTTL > 0 {
		cleanup = 2 * options.DefaultTTL
	}
	return &MemoryStore{items: gocache.New(ttl, cleanup)}
}

// Get returns a copy of the cached headers.
func (s *MemoryStore) Get(ctx context.Context, key string) ([]security.Header, bool, error) {
	value, ok := s.items.Get(key)
	if !ok {
		return nil, false, nil
	}
	headers, ok := value.([]security.Header)
	if !ok {
		s.items.Delete(key)
		return nil, false, nil
	}
	return append([]security.Header(nil), headers...), true, nil
}

// Set stores a copy of headers. A zero ttl uses the store default.
func (s *MemoryStore) Set(ctx context.Context, key string, headers []security.Header, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = gocache.DefaultExpiration
	}
	s.items.Set(key, append([]security.Header(nil), headers...), ttl)
	return nil
}

// Delete removes a key.
func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.items.Delete(key)
	return nil
}

// Len returns the number of cached entries, including expired ones not yet
// cleaned up.
func (s *MemoryStore) Len() int {
	return s.items.ItemCount()
}
