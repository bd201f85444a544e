package trailblog

import (
	"context"
	"fmt"
	"sync"
)

// Cache key shapes. Keys carry an explicit delimiter so a state code and an
// id can never collapse into the same key by concatenation.
const cacheKeyTop = "top"

// CacheKeyTop is the key for the global recent-posts entry.
func CacheKeyTop() string {
	return cacheKeyTop
}

// CacheKeyState is the key for a per-state listing entry.
func CacheKeyState(state string) string {
	return fmt.Sprintf("state:%s", state)
}

// CacheKeyPost is the key for a single-post entry.
func CacheKeyPost(state string, id int64) string {
	return fmt.Sprintf("post:%s:%d", state, id)
}

// CacheStore is a plain key-value layer in front of the post store. Entries
// have no TTL; they live until a write refreshes them or the backend evicts
// them under memory pressure. A vanished entry is never an error beyond
// ErrCacheMiss; readers fall back to the store.
type CacheStore interface {
	// Get returns the value for a key, or ErrCacheMiss if absent.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores a value for a key, replacing any prior value.
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes a key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
	// Clear removes all entries.
	Clear(ctx context.Context) error
	// Close closes the cache store.
	Close() error
}

// MemoryCacheStore implements CacheStore with an in-process map.
type MemoryCacheStore struct {
	entries map[string][]byte
	mu      sync.RWMutex
}

// NewMemoryCacheStore creates a new MemoryCacheStore.
func NewMemoryCacheStore() *MemoryCacheStore {
	return &MemoryCacheStore{
		entries: make(map[string][]byte),
	}
}

// Get returns the value for a key, or ErrCacheMiss if absent.
func (m *MemoryCacheStore) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.entries[key]
	if !ok {
		return nil, ErrCacheMiss
	}
	return value, nil
}

// Set stores a value for a key. Last write wins.
func (m *MemoryCacheStore) Set(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = value
	return nil
}

// Delete removes a key.
func (m *MemoryCacheStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, key)
	return nil
}

// Clear removes all entries.
func (m *MemoryCacheStore) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = make(map[string][]byte)
	return nil
}

// Close closes the cache store.
func (m *MemoryCacheStore) Close() error {
	return nil
}
