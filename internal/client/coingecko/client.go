package coingecko

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"crypto-price-service/internal/config"
	"crypto-price-service/internal/logger"
	"crypto-price-service/internal/metrics"
)

// SimplePrices is the decoded shape of the /simple/price response:
// { "<id>": { "<currency>": <number> } }. Numbers are kept as json.Number so
// prices survive the trip into fixed-precision decimals untouched.
type SimplePrices map[string]map[string]json.Number

// Client is a CoinGecko simple/price API client. One instance is shared by
// all requests; it holds no mutable state beyond the pooled http.Client.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a new CoinGecko API client. The configured timeout bounds
// every call, direct and cross-rate alike.
func NewClient(cfg config.CoinGeckoConfig) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// GetSimplePrices fetches prices for one or more asset ids quoted in the
// given currencies. All failures come back as a tagged *RequestError, except
// the missing-key configuration error.
func (c *Client) GetSimplePrices(ctx context.Context, ids []string, vsCurrencies string) (SimplePrices, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, &RequestError{Kind: KindNetwork, Err: err}
	}

	q := u.Query()
	q.Set("ids", strings.Join(ids, ","))
	q.Set("vs_currencies", vsCurrencies)
	u.RawQuery = q.Encode()

	logger.LogUpstreamRequest(ctx, ids, vsCurrencies, u.String())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, &RequestError{Kind: KindNetwork, Err: err}
	}

	req.Header.Set("x-cg-demo-api-key", c.apiKey)
	req.Header.Set("User-Agent", "crypto-price-service/1.0")

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	requestDuration := time.Since(requestStart)

	if err != nil {
		reqErr := &RequestError{Kind: classifyTransportError(err), Err: err}
		metrics.RecordUpstreamError(reqErr.Kind.String())
		logger.LogUpstreamError(ctx, reqErr)
		return nil, reqErr
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	metrics.RecordUpstreamRequest(resp.StatusCode, requestDuration)
	logger.LogUpstreamResponse(ctx, resp.StatusCode, requestDuration)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		reqErr := &RequestError{Kind: KindHTTPStatus, StatusCode: resp.StatusCode}
		metrics.RecordUpstreamError(reqErr.Kind.String())
		return nil, reqErr
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()

	var prices SimplePrices
	if err := dec.Decode(&prices); err != nil {
		reqErr := &RequestError{Kind: KindNetwork, Err: err}
		metrics.RecordUpstreamError(reqErr.Kind.String())
		return nil, reqErr
	}

	return prices, nil
}

// Price extracts the quote for an id/currency combination. CoinGecko keys
// responses by lowercase identifiers.
func (p SimplePrices) Price(id, currency string) (json.Number, bool) {
	quotes, ok := p[strings.ToLower(id)]
	if !ok {
		return "", false
	}
	price, ok := quotes[strings.ToLower(currency)]
	return price, ok
}

// classifyTransportError tags a failed round trip as timeout or generic
// network failure.
func classifyTransportError(err error) ErrorKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}
	return KindNetwork
}
