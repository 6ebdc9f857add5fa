package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crypto_price_http_requests_total",
			Help: "The total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "crypto_price_http_request_duration_seconds",
			Help:    "The HTTP request latencies in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// Cache metrics
	CacheHitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crypto_price_cache_hits_total",
			Help: "The total number of cache hits",
		},
		[]string{"cache_backend"},
	)

	CacheMissesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crypto_price_cache_misses_total",
			Help: "The total number of cache misses",
		},
		[]string{"cache_backend"},
	)

	CacheOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "crypto_price_cache_operation_duration_seconds",
			Help:    "The cache operation latencies in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"cache_backend", "operation"},
	)

	// CoinGecko API metrics
	UpstreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crypto_price_coingecko_requests_total",
			Help: "The total number of CoinGecko API requests",
		},
		[]string{"status_code"},
	)

	UpstreamRequestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "crypto_price_coingecko_request_duration_seconds",
			Help:    "The CoinGecko API request latencies in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	UpstreamErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crypto_price_coingecko_errors_total",
			Help: "The total number of CoinGecko API errors",
		},
		[]string{"error_type"},
	)

	// Price resolution metrics
	ResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crypto_price_resolutions_total",
			Help: "The total number of price resolutions",
		},
		[]string{"pair", "outcome"},
	)

	ObservationsPersisted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crypto_price_observations_persisted_total",
			Help: "The total number of price observations written to the historical store",
		},
		[]string{"pair"},
	)

	// Current price info
	CurrentPrices = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "crypto_price_current_price",
			Help: "The most recently resolved price for trading pairs",
		},
		[]string{"pair"},
	)

	// Service info
	ServiceInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "crypto_price_service_info",
			Help: "Information about the crypto price service",
		},
		[]string{"version", "cache_backend", "store_backend"},
	)
)

// RecordHTTPRequest records HTTP request metrics
func RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordCacheHit records a cache hit
func RecordCacheHit(backend string) {
	CacheHitsTotal.WithLabelValues(backend).Inc()
}

// RecordCacheMiss records a cache miss
func RecordCacheMiss(backend string) {
	CacheMissesTotal.WithLabelValues(backend).Inc()
}

// RecordCacheOperation records cache operation duration
func RecordCacheOperation(backend, operation string, duration time.Duration) {
	CacheOperationDuration.WithLabelValues(backend, operation).Observe(duration.Seconds())
}

// RecordUpstreamRequest records CoinGecko API request metrics
func RecordUpstreamRequest(statusCode int, duration time.Duration) {
	UpstreamRequestsTotal.WithLabelValues(strconv.Itoa(statusCode)).Inc()
	UpstreamRequestDuration.Observe(duration.Seconds())
}

// RecordUpstreamError records a CoinGecko API error
func RecordUpstreamError(errorType string) {
	UpstreamErrors.WithLabelValues(errorType).Inc()
}

// RecordResolution records a completed price resolution
func RecordResolution(pair, outcome string) {
	ResolutionsTotal.WithLabelValues(pair, outcome).Inc()
}

// RecordObservationPersisted records a historical store write
func RecordObservationPersisted(pair string) {
	ObservationsPersisted.WithLabelValues(pair).Inc()
}

// UpdateCurrentPrice updates the current price gauge
func UpdateCurrentPrice(pair string, price float64) {
	CurrentPrices.WithLabelValues(pair).Set(price)
}

// SetServiceInfo sets service information
func SetServiceInfo(version, cacheBackend, storeBackend string) {
	ServiceInfo.WithLabelValues(version, cacheBackend, storeBackend).Set(1)
}
