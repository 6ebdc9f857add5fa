package cache

import (
	"context"
	"time"

	"crypto-price-service/internal/model"
)

// Cache is a TTL key-value store for cached prices. Implementations expire
// entries on their own schedule; the resolver still re-checks the value's
// embedded LastUpdated against the configured TTL on every read, so backend
// expiry and value freshness act as independent safety nets.
type Cache interface {
	// Get retrieves a cached price record if the backend still holds it.
	Get(ctx context.Context, key string) (model.CachedPrice, bool, error)

	// Set stores a price record under key with the given TTL.
	Set(ctx context.Context, key string, value model.CachedPrice, ttl time.Duration) error

	// Clear removes all cached price records.
	Clear(ctx context.Context) error

	// Size returns the number of cached price records.
	Size(ctx context.Context) (int, error)

	// Close closes any connections and cleans up resources.
	Close() error
}

// Config holds configuration for cache implementations
type Config struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}
