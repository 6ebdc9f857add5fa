package store

import (
	"context"
	"time"

	"crypto-price-service/internal/model"
)

// PriceStore is the durable, append-only log of price observations. It is
// the system of record; the cache is only a performance optimization derived
// from the same fetch events.
type PriceStore interface {
	// Save appends a price observation. ObservedAt is assigned by the store
	// on write; the caller leaves it zero.
	Save(ctx context.Context, observation *model.PriceObservation) error

	// FindByPairAndRange returns all observations for pair with ObservedAt
	// in the inclusive range [start, end], newest first. An empty window
	// yields an empty slice, not an error.
	FindByPairAndRange(ctx context.Context, pair string, start, end time.Time) ([]model.PriceObservation, error)

	// Close releases the underlying connection.
	Close() error
}
