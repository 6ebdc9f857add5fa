package store

import (
	"context"
	"testing"
	"time"

	"crypto-price-service/internal/config"
	"crypto-price-service/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *GormStore {
	t.Helper()

	s, err := NewGormStore(config.StoreConfig{
		Backend: "sqlite",
		Path:    ":memory:",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func saveObservation(t *testing.T, s *GormStore, pair, price string, observedAt time.Time) {
	t.Helper()

	obs := &model.PriceObservation{
		Pair:       pair,
		Price:      decimal.RequireFromString(price),
		ObservedAt: observedAt,
	}
	require.NoError(t, s.Save(context.Background(), obs))
	require.NotZero(t, obs.ID, "insert assigns the primary key")
}

func TestGormStore_SaveAndFind(t *testing.T) {
	s := newTestStore(t)

	base := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	saveObservation(t, s, "TON_USDT", "2.10", base)
	saveObservation(t, s, "TON_USDT", "2.20", base.Add(time.Hour))
	saveObservation(t, s, "TON_USDT", "2.30", base.Add(2*time.Hour))
	saveObservation(t, s, "USDT_TON", "0.45", base.Add(time.Hour))

	observations, err := s.FindByPairAndRange(context.Background(), "TON_USDT", base, base.Add(2*time.Hour))
	require.NoError(t, err)
	require.Len(t, observations, 3, "only the requested pair within range")

	// Newest first
	assert.True(t, decimal.RequireFromString("2.30").Equal(observations[0].Price))
	assert.True(t, decimal.RequireFromString("2.20").Equal(observations[1].Price))
	assert.True(t, decimal.RequireFromString("2.10").Equal(observations[2].Price))
}

func TestGormStore_RangeBoundsAreInclusive(t *testing.T) {
	s := newTestStore(t)

	start := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC)

	saveObservation(t, s, "TON_USDT", "2.00", start.Add(-time.Second))
	saveObservation(t, s, "TON_USDT", "2.10", start)
	saveObservation(t, s, "TON_USDT", "2.20", end)
	saveObservation(t, s, "TON_USDT", "2.30", end.Add(time.Second))

	observations, err := s.FindByPairAndRange(context.Background(), "TON_USDT", start, end)
	require.NoError(t, err)
	require.Len(t, observations, 2)
	assert.True(t, decimal.RequireFromString("2.20").Equal(observations[0].Price))
	assert.True(t, decimal.RequireFromString("2.10").Equal(observations[1].Price))
}

func TestGormStore_EmptyResultIsNotNil(t *testing.T) {
	s := newTestStore(t)

	observations, err := s.FindByPairAndRange(context.Background(), "TON_USDT",
		time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.NotNil(t, observations)
	assert.Empty(t, observations)
}

func TestGormStore_ObservationsAreAppendOnly(t *testing.T) {
	s := newTestStore(t)

	at := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	saveObservation(t, s, "TON_USDT", "2.10", at)
	saveObservation(t, s, "TON_USDT", "2.10", at)

	observations, err := s.FindByPairAndRange(context.Background(), "TON_USDT", at, at)
	require.NoError(t, err)
	assert.Len(t, observations, 2, "identical observations insert as distinct rows")
}

func TestGormStore_PreservesDecimalPrecision(t *testing.T) {
	s := newTestStore(t)

	at := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	saveObservation(t, s, "TON_USDT", "2.00000001", at)

	observations, err := s.FindByPairAndRange(context.Background(), "TON_USDT", at, at)
	require.NoError(t, err)
	require.Len(t, observations, 1)
	assert.True(t, decimal.RequireFromString("2.00000001").Equal(observations[0].Price))
}

func TestGormStore_Health(t *testing.T) {
	s := newTestStore(t)
	assert.NoError(t, s.Health())
}

func TestNewGormStore_UnknownBackend(t *testing.T) {
	_, err := NewGormStore(config.StoreConfig{Backend: "oracle"})
	assert.Error(t, err)
}
