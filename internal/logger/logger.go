package logger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// contextKey is a type for context keys to avoid collisions
type contextKey string

const (
	// RequestIDKey is the context key for request ID
	RequestIDKey contextKey = "request_id"
	// StartTimeKey is the context key for start time
	StartTimeKey contextKey = "start_time"
)

var log *logrus.Logger

func init() {
	log = logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339Nano,
	})
	log.SetLevel(logrus.InfoLevel)
}

// GetLogger returns the singleton logger instance
func GetLogger() *logrus.Logger {
	return log
}

// SetLogLevel sets the global log level
func SetLogLevel(level string) {
	switch level {
	case "debug":
		log.SetLevel(logrus.DebugLevel)
	case "info":
		log.SetLevel(logrus.InfoLevel)
	case "warn":
		log.SetLevel(logrus.WarnLevel)
	case "error":
		log.SetLevel(logrus.ErrorLevel)
	default:
		log.SetLevel(logrus.InfoLevel)
	}
}

// WithRequestID adds a request ID to the context
func WithRequestID(ctx context.Context) context.Context {
	requestID := uuid.New().String()
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// WithStartTime adds start time to the context
func WithStartTime(ctx context.Context) context.Context {
	return context.WithValue(ctx, StartTimeKey, time.Now())
}

// GetRequestID extracts request ID from context
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// GetStartTime extracts start time from context
func GetStartTime(ctx context.Context) time.Time {
	if startTime, ok := ctx.Value(StartTimeKey).(time.Time); ok {
		return startTime
	}
	return time.Time{}
}

// LogHTTPRequest logs HTTP request information
func LogHTTPRequest(ctx context.Context, method, path, userAgent, remoteAddr string) {
	logger := log.WithFields(logrus.Fields{
		"request_id":  GetRequestID(ctx),
		"method":      method,
		"path":        path,
		"user_agent":  userAgent,
		"remote_addr": remoteAddr,
		"event":       "http_request",
	})
	logger.Info("HTTP request received")
}

// LogHTTPResponse logs HTTP response information
func LogHTTPResponse(ctx context.Context, statusCode int, responseSize int64) {
	startTime := GetStartTime(ctx)
	var latency time.Duration
	if !startTime.IsZero() {
		latency = time.Since(startTime)
	}

	logger := log.WithFields(logrus.Fields{
		"request_id":    GetRequestID(ctx),
		"status_code":   statusCode,
		"response_size": responseSize,
		"latency_ms":    latency.Milliseconds(),
		"event":         "http_response",
	})

	if statusCode >= 500 {
		logger.Error("HTTP response sent")
	} else if statusCode >= 400 {
		logger.Warn("HTTP response sent")
	} else {
		logger.Info("HTTP response sent")
	}
}

// LogUpstreamRequest logs an outgoing CoinGecko API request
func LogUpstreamRequest(ctx context.Context, ids []string, vsCurrencies string, url string) {
	logger := log.WithFields(logrus.Fields{
		"request_id":    GetRequestID(ctx),
		"ids":           ids,
		"vs_currencies": vsCurrencies,
		"url":           url,
		"event":         "coingecko_request",
		"service":       "coingecko_client",
	})
	logger.Debug("Making request to CoinGecko API")
}

// LogUpstreamResponse logs a CoinGecko API response
func LogUpstreamResponse(ctx context.Context, statusCode int, duration time.Duration) {
	logger := log.WithFields(logrus.Fields{
		"request_id":           GetRequestID(ctx),
		"status_code":          statusCode,
		"upstream_duration_ms": duration.Milliseconds(),
		"event":                "coingecko_response",
		"service":              "coingecko_client",
	})

	if statusCode >= 500 {
		logger.Error("CoinGecko API response received")
	} else if statusCode >= 400 {
		logger.Warn("CoinGecko API response received")
	} else {
		logger.Info("CoinGecko API response received")
	}
}

// LogUpstreamError logs CoinGecko API errors
func LogUpstreamError(ctx context.Context, err error) {
	logger := log.WithFields(logrus.Fields{
		"request_id": GetRequestID(ctx),
		"error":      err.Error(),
		"event":      "coingecko_error",
		"service":    "coingecko_client",
	})
	logger.Error("CoinGecko API error occurred")
}

// LogCacheOperation logs cache operations
func LogCacheOperation(ctx context.Context, operation string, backend string, key string, hit bool, duration time.Duration) {
	logger := log.WithFields(logrus.Fields{
		"request_id":  GetRequestID(ctx),
		"operation":   operation,
		"backend":     backend,
		"key":         key,
		"cache_hit":   hit,
		"duration_ms": duration.Milliseconds(),
		"event":       "cache_operation",
		"service":     "cache",
	})
	logger.Debug("Cache operation completed")
}

// LogPriceResolved logs the outcome of a price resolution
func LogPriceResolved(ctx context.Context, pair string, price string, cached bool) {
	logger := log.WithFields(logrus.Fields{
		"request_id": GetRequestID(ctx),
		"pair":       pair,
		"price":      price,
		"cache_hit":  cached,
		"event":      "price_resolved",
		"service":    "price_service",
	})
	logger.Info("Price resolved")
}

// LogPriceResolutionError logs a failed price resolution
func LogPriceResolutionError(ctx context.Context, pair string, err error) {
	logger := log.WithFields(logrus.Fields{
		"request_id": GetRequestID(ctx),
		"pair":       pair,
		"error":      err.Error(),
		"event":      "price_resolution_error",
		"service":    "price_service",
	})
	logger.Error("Price resolution failed")
}

// LogObservationSaved logs a persisted price observation
func LogObservationSaved(ctx context.Context, pair string, price string) {
	logger := log.WithFields(logrus.Fields{
		"request_id": GetRequestID(ctx),
		"pair":       pair,
		"price":      price,
		"event":      "observation_saved",
		"service":    "price_store",
	})
	logger.Debug("Price observation persisted")
}

// LogServiceEvent logs general service events
func LogServiceEvent(ctx context.Context, event string, message string, fields map[string]interface{}) {
	logFields := logrus.Fields{
		"request_id": GetRequestID(ctx),
		"event":      event,
		"message":    message,
	}

	for k, v := range fields {
		logFields[k] = v
	}

	log.WithFields(logFields).Info(message)
}
