package coingecko

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingAPIKey indicates the CoinGecko API key was not configured.
	// This is a deployment problem, not a per-request one.
	ErrMissingAPIKey = errors.New("COINGECKO_API_KEY not configured")

	// ErrPriceNotFound indicates the upstream response did not contain a
	// usable price for the requested asset/currency.
	ErrPriceNotFound = errors.New("price not found in upstream response")
)

// ErrorKind tags the failure mode of an upstream request so callers can
// classify errors exhaustively instead of sniffing response fields.
type ErrorKind int

const (
	// KindTimeout means the request exceeded its deadline.
	KindTimeout ErrorKind = iota
	// KindHTTPStatus means the upstream answered with a non-2xx status.
	KindHTTPStatus
	// KindNetwork covers every other transport or decoding failure.
	KindNetwork
)

func (k ErrorKind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindHTTPStatus:
		return "http_status"
	case KindNetwork:
		return "network"
	default:
		return "unknown"
	}
}

// RequestError is the tagged error returned for every failed upstream call.
type RequestError struct {
	Kind       ErrorKind
	StatusCode int // set when Kind == KindHTTPStatus
	Err        error
}

func (e *RequestError) Error() string {
	switch e.Kind {
	case KindHTTPStatus:
		return fmt.Sprintf("coingecko: HTTP %d", e.StatusCode)
	case KindTimeout:
		return fmt.Sprintf("coingecko: request timed out: %v", e.Err)
	default:
		return fmt.Sprintf("coingecko: request failed: %v", e.Err)
	}
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// IsTimeout reports whether err is an upstream timeout.
func IsTimeout(err error) bool {
	var reqErr *RequestError
	return errors.As(err, &reqErr) && reqErr.Kind == KindTimeout
}

// HTTPStatus extracts the upstream status code from err, if any.
func HTTPStatus(err error) (int, bool) {
	var reqErr *RequestError
	if errors.As(err, &reqErr) && reqErr.Kind == KindHTTPStatus {
		return reqErr.StatusCode, true
	}
	return 0, false
}
