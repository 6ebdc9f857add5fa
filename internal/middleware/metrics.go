package middleware

import (
	"net/http"
	"strings"
	"time"

	"crypto-price-service/internal/metrics"
)

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// MetricsMiddleware records HTTP request metrics
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK, // default status code
		}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start)
		endpoint := getEndpoint(r.URL.Path)

		metrics.RecordHTTPRequest(
			r.Method,
			endpoint,
			wrapped.statusCode,
			duration,
		)
	})
}

// getEndpoint normalizes URL paths to avoid high cardinality in metrics
func getEndpoint(path string) string {
	switch path {
	case "/health", "/metrics", "/api/v1/pairs", "/api/v1/crypto-price/historical":
		return path
	}
	if strings.HasPrefix(path, "/api/v1/crypto-price/") {
		return "/api/v1/crypto-price/{pair}"
	}
	if strings.HasPrefix(path, "/swagger") {
		return "/swagger"
	}
	return "/unknown"
}
