package service

import (
	"errors"
	"fmt"
	"net/http"

	"crypto-price-service/internal/client/coingecko"
)

// ErrorKind enumerates every caller-facing failure mode of the price
// resolution pipeline.
type ErrorKind int

const (
	// KindInvalidFormat — pair fails the BASE_QUOTE syntax check.
	KindInvalidFormat ErrorKind = iota
	// KindUnsupportedPair — pair is well-formed but not in the allow-list.
	KindUnsupportedPair
	// KindInvalidRange — historical query with start after end.
	KindInvalidRange
	// KindMissingConfiguration — required API key absent at fetch time.
	KindMissingConfiguration
	// KindPriceNotFound — upstream returned no usable price.
	KindPriceNotFound
	// KindRateLimited — upstream responded with HTTP 429; passed through.
	KindRateLimited
	// KindUpstreamTimeout — upstream call exceeded its deadline.
	KindUpstreamTimeout
	// KindUpstreamUnavailable — any other failure (default bucket).
	KindUpstreamUnavailable
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidFormat:
		return "invalid_format"
	case KindUnsupportedPair:
		return "unsupported_pair"
	case KindInvalidRange:
		return "invalid_range"
	case KindMissingConfiguration:
		return "missing_configuration"
	case KindPriceNotFound:
		return "price_not_found"
	case KindRateLimited:
		return "rate_limited"
	case KindUpstreamTimeout:
		return "upstream_timeout"
	default:
		return "upstream_unavailable"
	}
}

// Error is the classified error surfaced to callers of the price service.
type Error struct {
	Kind ErrorKind
	Pair string
	Err  error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindInvalidFormat:
		return fmt.Sprintf("invalid trading pair format: %s", e.Pair)
	case KindUnsupportedPair:
		return fmt.Sprintf("unsupported trading pair: %s", e.Pair)
	case KindInvalidRange:
		return "start date must be before end date"
	case KindMissingConfiguration:
		return "price service is not configured"
	case KindPriceNotFound:
		return fmt.Sprintf("price not found for %s", e.Pair)
	case KindRateLimited:
		return "rate limit exceeded"
	case KindUpstreamTimeout:
		return "external API timeout"
	default:
		return "failed to fetch cryptocurrency price"
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatus maps the error kind to the status class surfaced to callers.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindInvalidFormat, KindUnsupportedPair, KindInvalidRange:
		return http.StatusBadRequest
	case KindMissingConfiguration:
		return http.StatusInternalServerError
	case KindPriceNotFound, KindUpstreamUnavailable:
		return http.StatusServiceUnavailable
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindUpstreamTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusServiceUnavailable
	}
}

// KindOf extracts the taxonomy kind from err, if it carries one.
func KindOf(err error) (ErrorKind, bool) {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Kind, true
	}
	return 0, false
}

// classify funnels every non-validation failure through one routine mapping
// it to the taxonomy. Already-classified errors pass through untouched;
// everything unrecognized lands in the unavailable bucket. Classification
// never retries.
func classify(err error, pair string) *Error {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr
	}

	if errors.Is(err, coingecko.ErrMissingAPIKey) {
		return &Error{Kind: KindMissingConfiguration, Pair: pair, Err: err}
	}

	if errors.Is(err, coingecko.ErrPriceNotFound) {
		return &Error{Kind: KindPriceNotFound, Pair: pair, Err: err}
	}

	if status, ok := coingecko.HTTPStatus(err); ok {
		if status == http.StatusTooManyRequests {
			return &Error{Kind: KindRateLimited, Pair: pair, Err: err}
		}
		return &Error{Kind: KindUpstreamUnavailable, Pair: pair, Err: err}
	}

	if coingecko.IsTimeout(err) {
		return &Error{Kind: KindUpstreamTimeout, Pair: pair, Err: err}
	}

	return &Error{Kind: KindUpstreamUnavailable, Pair: pair, Err: err}
}
