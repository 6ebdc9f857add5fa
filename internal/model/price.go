package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceObservation is a single persisted price point for a trading pair.
// Rows are append-only: every successful upstream fetch inserts exactly one
// observation and nothing ever updates or deletes them.
type PriceObservation struct {
	ID         uint            `json:"id" gorm:"primaryKey;autoIncrement"`
	Pair       string          `json:"pair" gorm:"index:idx_pair_observed_at;not null"`
	Price      decimal.Decimal `json:"price" gorm:"type:decimal(18,8);not null"`
	ObservedAt time.Time       `json:"observedAt" gorm:"index:idx_pair_observed_at;autoCreateTime;not null"`
}

// TableName keeps the table name aligned with the historical schema.
func (PriceObservation) TableName() string {
	return "price_observations"
}

// CachedPrice is the value stored in the cache under "crypto-price-<PAIR>".
// LastUpdated travels with the value so freshness can be re-checked on read
// even when the backing store applies its own expiry.
type CachedPrice struct {
	Price       decimal.Decimal `json:"price"`
	LastUpdated time.Time       `json:"last_updated"`
}

// PriceResponse is the payload returned for a current-price request.
// Timestamp is the response construction time in unix milliseconds, not the
// observation time.
type PriceResponse struct {
	Pair      string          `json:"pair"`
	Price     decimal.Decimal `json:"price"`
	Timestamp int64           `json:"timestamp"`
}

// CacheKeyPrefix is prepended to the pair name to build the cache key.
const CacheKeyPrefix = "crypto-price-"

// CacheKey returns the cache key for a pair.
func CacheKey(pair string) string {
	return CacheKeyPrefix + pair
}
