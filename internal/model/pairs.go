package model

import (
	"fmt"
	"regexp"
	"strings"
)

// pairFormat matches the wire format for trading pairs: BASE_QUOTE, both
// sides uppercase alphanumeric with exactly one underscore between them.
var pairFormat = regexp.MustCompile(`^[A-Z0-9]+_[A-Z0-9]+$`)

// IsValidPairFormat reports whether pair is syntactically valid. The HTTP
// layer validates this too, but the service re-checks because it can be
// called directly.
func IsValidPairFormat(pair string) bool {
	return pairFormat.MatchString(pair)
}

// SplitPair splits a syntactically valid pair into base and quote.
func SplitPair(pair string) (base, quote string) {
	parts := strings.SplitN(pair, "_", 2)
	return parts[0], parts[1]
}

// FetchStrategy selects how the upstream price for a pair is obtained.
type FetchStrategy int

const (
	// FetchDirect asks CoinGecko for AssetID quoted in VsCurrency.
	FetchDirect FetchStrategy = iota
	// FetchCrossRate asks CoinGecko for two USD quotes in a single call and
	// returns BaseID/QuoteID as the pair price.
	FetchCrossRate
)

// PairRoute describes how to fetch one trading pair from the upstream API.
type PairRoute struct {
	Strategy FetchStrategy

	// Direct fetch: CoinGecko asset id and quote currency.
	AssetID    string
	VsCurrency string

	// Cross-rate fetch: both assets are quoted in USD and the pair price is
	// the ratio baseUSD / quoteUSD. The reciprocal pair is just the same
	// entry with the ids swapped.
	BaseID  string
	QuoteID string
}

// PairRoutes maps every pair this service knows how to fetch to its route.
// Adding a pair is a data change here (plus the configured allow-list); no
// new fetch branch is required.
var PairRoutes = map[string]PairRoute{
	"TON_USDT": {
		Strategy: FetchCrossRate,
		BaseID:   "the-open-network",
		QuoteID:  "tether",
	},
	"USDT_TON": {
		Strategy: FetchCrossRate,
		BaseID:   "tether",
		QuoteID:  "the-open-network",
	},
}

// BuildRoutes resolves the configured allow-list against PairRoutes and
// returns the immutable route table used by the resolver. Pairs without a
// route entry are a configuration error caught at startup.
func BuildRoutes(supportedPairs []string) (map[string]PairRoute, error) {
	routes := make(map[string]PairRoute, len(supportedPairs))
	for _, pair := range supportedPairs {
		route, ok := PairRoutes[pair]
		if !ok {
			return nil, fmt.Errorf("no upstream route configured for pair: %s", pair)
		}
		routes[pair] = route
	}
	return routes, nil
}
