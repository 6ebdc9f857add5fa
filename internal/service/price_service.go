package service

import (
	"context"
	"fmt"
	"time"

	"crypto-price-service/internal/cache"
	"crypto-price-service/internal/client/coingecko"
	"crypto-price-service/internal/config"
	"crypto-price-service/internal/logger"
	"crypto-price-service/internal/metrics"
	"crypto-price-service/internal/model"
	"crypto-price-service/internal/store"

	"github.com/shopspring/decimal"
)

// crossRateCurrency is the common quote currency for cross-rate legs.
const crossRateCurrency = "usd"

// UpstreamClient defines the interface for fetching prices from CoinGecko
type UpstreamClient interface {
	GetSimplePrices(ctx context.Context, ids []string, vsCurrencies string) (coingecko.SimplePrices, error)
}

// PriceService resolves current prices cache-first and serves historical
// observations. All failures surface as a classified *Error.
type PriceService struct {
	client UpstreamClient
	cache  cache.Cache
	store  store.PriceStore
	routes map[string]model.PairRoute
	ttl    time.Duration
	now    func() time.Time
}

// NewPriceService creates a new price service instance. The route table and
// TTL are fixed here; nothing mutates them afterwards.
func NewPriceService(cfg *config.Config, client UpstreamClient, priceCache cache.Cache, priceStore store.PriceStore) (*PriceService, error) {
	routes, err := model.BuildRoutes(cfg.App.SupportedPairs)
	if err != nil {
		return nil, err
	}

	return &PriceService{
		client: client,
		cache:  priceCache,
		store:  priceStore,
		routes: routes,
		ttl:    cfg.Cache.TTL,
		now:    time.Now,
	}, nil
}

// SupportedPairs returns the pairs this service resolves.
func (s *PriceService) SupportedPairs() []string {
	pairs := make([]string, 0, len(s.routes))
	for pair := range s.routes {
		pairs = append(pairs, pair)
	}
	return pairs
}

// GetPrice resolves the current price for a trading pair: cache lookup with
// freshness check, then upstream fetch with persistence and write-through on
// a miss.
func (s *PriceService) GetPrice(ctx context.Context, pair string) (decimal.Decimal, error) {
	if !model.IsValidPairFormat(pair) {
		return decimal.Zero, &Error{Kind: KindInvalidFormat, Pair: pair}
	}

	route, ok := s.routes[pair]
	if !ok {
		return decimal.Zero, &Error{Kind: KindUnsupportedPair, Pair: pair}
	}

	price, err := s.resolve(ctx, pair, route)
	if err != nil {
		classified := classify(err, pair)
		metrics.RecordResolution(pair, classified.Kind.String())
		logger.LogPriceResolutionError(ctx, pair, classified)
		return decimal.Zero, classified
	}

	priceFloat, _ := price.Float64()
	metrics.UpdateCurrentPrice(pair, priceFloat)
	return price, nil
}

// resolve runs the cache-first pipeline. Errors come back raw; the caller
// owns classification.
func (s *PriceService) resolve(ctx context.Context, pair string, route model.PairRoute) (decimal.Decimal, error) {
	key := model.CacheKey(pair)

	cached, found, err := s.cache.Get(ctx, key)
	if err != nil {
		return decimal.Zero, fmt.Errorf("cache read for %s: %w", pair, err)
	}

	if found && s.isFresh(cached) {
		metrics.RecordResolution(pair, "cache_hit")
		logger.LogPriceResolved(ctx, pair, cached.Price.String(), true)
		return cached.Price, nil
	}

	price, err := s.fetchPrice(ctx, pair, route)
	if err != nil {
		return decimal.Zero, err
	}

	observation := &model.PriceObservation{
		Pair:  pair,
		Price: price,
	}
	if err := s.store.Save(ctx, observation); err != nil {
		// Do not populate the cache without a durable record; the store and
		// the cache must not diverge silently.
		logger.LogPriceResolutionError(ctx, pair, err)
		return decimal.Zero, fmt.Errorf("persist observation for %s: %w", pair, err)
	}
	metrics.RecordObservationPersisted(pair)
	logger.LogObservationSaved(ctx, pair, price.String())

	cachedPrice := model.CachedPrice{
		Price:       price,
		LastUpdated: s.now(),
	}
	if err := s.cache.Set(ctx, key, cachedPrice, s.ttl); err != nil {
		return decimal.Zero, fmt.Errorf("cache write for %s: %w", pair, err)
	}

	metrics.RecordResolution(pair, "fetched")
	logger.LogPriceResolved(ctx, pair, price.String(), false)
	return price, nil
}

// isFresh reports whether a cached record is still usable: a present,
// non-zero price whose age is below the TTL. The record's own timestamp is
// checked even though cache backends expire entries themselves.
func (s *PriceService) isFresh(cached model.CachedPrice) bool {
	if cached.Price.IsZero() || cached.LastUpdated.IsZero() {
		return false
	}
	return s.now().Sub(cached.LastUpdated) < s.ttl
}

// fetchPrice fetches the pair price using the route's strategy.
func (s *PriceService) fetchPrice(ctx context.Context, pair string, route model.PairRoute) (decimal.Decimal, error) {
	switch route.Strategy {
	case model.FetchCrossRate:
		return s.fetchCrossRate(ctx, pair, route)
	case model.FetchDirect:
		return s.fetchDirect(ctx, pair, route)
	default:
		return decimal.Zero, fmt.Errorf("invalid pair route for %s", pair)
	}
}

// fetchDirect performs one upstream call for the route's asset id quoted in
// its vs currency.
func (s *PriceService) fetchDirect(ctx context.Context, pair string, route model.PairRoute) (decimal.Decimal, error) {
	prices, err := s.client.GetSimplePrices(ctx, []string{route.AssetID}, route.VsCurrency)
	if err != nil {
		return decimal.Zero, err
	}

	raw, ok := prices.Price(route.AssetID, route.VsCurrency)
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s", coingecko.ErrPriceNotFound, pair)
	}

	price, err := decimal.NewFromString(raw.String())
	if err != nil || price.IsZero() {
		return decimal.Zero, fmt.Errorf("%w: %s", coingecko.ErrPriceNotFound, pair)
	}

	return price, nil
}

// fetchCrossRate requests both legs' USD quotes in a single upstream call
// and returns baseUSD / quoteUSD.
func (s *PriceService) fetchCrossRate(ctx context.Context, pair string, route model.PairRoute) (decimal.Decimal, error) {
	prices, err := s.client.GetSimplePrices(ctx, []string{route.BaseID, route.QuoteID}, crossRateCurrency)
	if err != nil {
		return decimal.Zero, err
	}

	baseUSD, err := extractLeg(prices, route.BaseID)
	if err != nil {
		return decimal.Zero, err
	}
	quoteUSD, err := extractLeg(prices, route.QuoteID)
	if err != nil {
		return decimal.Zero, err
	}

	return baseUSD.DivRound(quoteUSD, 8), nil
}

// extractLeg pulls one asset's non-zero USD quote out of a cross-rate
// response.
func extractLeg(prices coingecko.SimplePrices, assetID string) (decimal.Decimal, error) {
	raw, ok := prices.Price(assetID, crossRateCurrency)
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s", coingecko.ErrPriceNotFound, assetID)
	}

	leg, err := decimal.NewFromString(raw.String())
	if err != nil || leg.IsZero() {
		return decimal.Zero, fmt.Errorf("%w: %s", coingecko.ErrPriceNotFound, assetID)
	}

	return leg, nil
}

// GetHistoricalPrices returns persisted observations for pair within the
// inclusive [start, end] window, newest first.
func (s *PriceService) GetHistoricalPrices(ctx context.Context, pair string, start, end time.Time) ([]model.PriceObservation, error) {
	if !model.IsValidPairFormat(pair) {
		return nil, &Error{Kind: KindInvalidFormat, Pair: pair}
	}

	if _, ok := s.routes[pair]; !ok {
		return nil, &Error{Kind: KindUnsupportedPair, Pair: pair}
	}

	if start.After(end) {
		return nil, &Error{Kind: KindInvalidRange, Pair: pair}
	}

	observations, err := s.store.FindByPairAndRange(ctx, pair, start, end)
	if err != nil {
		classified := classify(err, pair)
		logger.LogPriceResolutionError(ctx, pair, classified)
		return nil, classified
	}

	return observations, nil
}
