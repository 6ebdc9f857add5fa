package cache

import (
	"context"
	"sync"
	"time"

	"crypto-price-service/internal/model"
)

type memoryEntry struct {
	value     model.CachedPrice
	expiresAt time.Time
}

// MemoryCache is an in-memory Cache implementation with per-entry expiry.
type MemoryCache struct {
	mutex   sync.RWMutex
	entries map[string]memoryEntry
}

// NewMemoryCache creates a new in-memory price cache instance
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
	}
}

// Set stores a price record under key with the given TTL
func (mc *MemoryCache) Set(ctx context.Context, key string, value model.CachedPrice, ttl time.Duration) error {
	mc.mutex.Lock()
	defer mc.mutex.Unlock()

	mc.entries[key] = memoryEntry{
		value:     value,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

// Get retrieves a cached price record if it exists and has not expired
func (mc *MemoryCache) Get(ctx context.Context, key string) (model.CachedPrice, bool, error) {
	mc.mutex.RLock()
	entry, exists := mc.entries[key]
	mc.mutex.RUnlock()

	if !exists {
		return model.CachedPrice{}, false, nil
	}

	if time.Now().After(entry.expiresAt) {
		mc.mutex.Lock()
		// Re-check under the write lock: a concurrent Set may have renewed it.
		if current, ok := mc.entries[key]; ok && time.Now().After(current.expiresAt) {
			delete(mc.entries, key)
		}
		mc.mutex.Unlock()
		return model.CachedPrice{}, false, nil
	}

	return entry.value, true, nil
}

// Clear removes all cached price records
func (mc *MemoryCache) Clear(ctx context.Context) error {
	mc.mutex.Lock()
	defer mc.mutex.Unlock()

	mc.entries = make(map[string]memoryEntry)
	return nil
}

// Size returns the number of cached price records
func (mc *MemoryCache) Size(ctx context.Context) (int, error) {
	mc.mutex.RLock()
	defer mc.mutex.RUnlock()

	return len(mc.entries), nil
}

// Close closes any connections and cleans up resources (no-op for in-memory)
func (mc *MemoryCache) Close() error {
	return nil
}
