package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"crypto-price-service/internal/model"

	"github.com/avast/retry-go/v4"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "crypto_price:"

// RedisCache manages cached prices using Redis.
type RedisCache struct {
	client *redis.Client
	prefix string
}

// NewRedisCache creates a new Redis-backed price cache instance. The initial
// ping is retried so the service survives Redis coming up slightly later.
func NewRedisCache(config Config) (*RedisCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     config.RedisAddr,
		Password: config.RedisPassword,
		DB:       config.RedisDB,
	})

	err := retry.Do(
		func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return rdb.Ping(ctx).Err()
		},
		retry.Attempts(3),
		retry.Delay(500*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisCache{
		client: rdb,
		prefix: redisKeyPrefix,
	}, nil
}

// Set stores a price record under key with the given TTL
func (rc *RedisCache) Set(ctx context.Context, key string, value model.CachedPrice, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cached price: %w", err)
	}

	return rc.client.Set(ctx, rc.prefix+key, string(data), ttl).Err()
}

// Get retrieves a cached price record if Redis still holds it
func (rc *RedisCache) Get(ctx context.Context, key string) (model.CachedPrice, bool, error) {
	val, err := rc.client.Get(ctx, rc.prefix+key).Result()
	if err == redis.Nil {
		return model.CachedPrice{}, false, nil // Key doesn't exist
	}
	if err != nil {
		return model.CachedPrice{}, false, fmt.Errorf("failed to get cached price: %w", err)
	}

	var cached model.CachedPrice
	if err := json.Unmarshal([]byte(val), &cached); err != nil {
		return model.CachedPrice{}, false, fmt.Errorf("failed to unmarshal cached price: %w", err)
	}

	return cached, true, nil
}

// Clear removes all cached prices with our prefix
func (rc *RedisCache) Clear(ctx context.Context) error {
	keys, err := rc.client.Keys(ctx, rc.prefix+"*").Result()
	if err != nil {
		return fmt.Errorf("failed to get keys for clearing: %w", err)
	}

	if len(keys) == 0 {
		return nil // Nothing to clear
	}

	return rc.client.Del(ctx, keys...).Err()
}

// Size returns the number of cached price records with our prefix
func (rc *RedisCache) Size(ctx context.Context) (int, error) {
	keys, err := rc.client.Keys(ctx, rc.prefix+"*").Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get keys for size: %w", err)
	}

	return len(keys), nil
}

// Close closes the Redis connection
func (rc *RedisCache) Close() error {
	return rc.client.Close()
}

// NewCacheFromConfig creates a cache instance based on configuration
func NewCacheFromConfig(backend string, config Config) (Cache, error) {
	var c Cache
	var err error

	switch strings.ToLower(backend) {
	case "memory", "":
		c = NewMemoryCache()
	case "redis":
		c, err = NewRedisCache(config)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported cache backend: %s", backend)
	}

	// Wrap with instrumented cache for metrics
	return NewInstrumentedCache(c, strings.ToLower(backend)), nil
}
