package cache

import (
	"context"
	"time"

	"crypto-price-service/internal/logger"
	"crypto-price-service/internal/metrics"
	"crypto-price-service/internal/model"
)

// InstrumentedCache wraps any Cache implementation with metrics and logging
type InstrumentedCache struct {
	cache   Cache
	backend string
}

// NewInstrumentedCache creates a new instrumented cache wrapper
func NewInstrumentedCache(cache Cache, backend string) *InstrumentedCache {
	return &InstrumentedCache{
		cache:   cache,
		backend: backend,
	}
}

// Set stores a price record under key with the given TTL
func (ic *InstrumentedCache) Set(ctx context.Context, key string, value model.CachedPrice, ttl time.Duration) error {
	start := time.Now()
	defer func() {
		metrics.RecordCacheOperation(ic.backend, "set", time.Since(start))
	}()

	return ic.cache.Set(ctx, key, value, ttl)
}

// Get retrieves a cached price record if it exists
func (ic *InstrumentedCache) Get(ctx context.Context, key string) (model.CachedPrice, bool, error) {
	start := time.Now()

	value, found, err := ic.cache.Get(ctx, key)

	duration := time.Since(start)
	metrics.RecordCacheOperation(ic.backend, "get", duration)

	if err == nil {
		if found {
			metrics.RecordCacheHit(ic.backend)
		} else {
			metrics.RecordCacheMiss(ic.backend)
		}
		logger.LogCacheOperation(ctx, "get", ic.backend, key, found, duration)
	}

	return value, found, err
}

// Clear removes all cached price records
func (ic *InstrumentedCache) Clear(ctx context.Context) error {
	start := time.Now()
	defer func() {
		metrics.RecordCacheOperation(ic.backend, "clear", time.Since(start))
	}()

	return ic.cache.Clear(ctx)
}

// Size returns the number of cached price records
func (ic *InstrumentedCache) Size(ctx context.Context) (int, error) {
	start := time.Now()
	defer func() {
		metrics.RecordCacheOperation(ic.backend, "size", time.Since(start))
	}()

	return ic.cache.Size(ctx)
}

// Close closes any connections and cleans up resources
func (ic *InstrumentedCache) Close() error {
	return ic.cache.Close()
}
