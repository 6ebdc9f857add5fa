package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"crypto-price-service/internal/cache"
	"crypto-price-service/internal/client/coingecko"
	"crypto-price-service/internal/config"
	"crypto-price-service/internal/handler"
	"crypto-price-service/internal/logger"
	"crypto-price-service/internal/metrics"
	"crypto-price-service/internal/service"
	"crypto-price-service/internal/store"

	"github.com/joho/godotenv"
)

func main() {
	log.Println("Starting Crypto Price Service...")

	// Load .env if present, then configuration
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.SetLogLevel(cfg.App.LogLevel)
	structuredLogger := logger.GetLogger()

	structuredLogger.WithField("pairs", cfg.App.SupportedPairs).Info("Initializing service components")

	if cfg.CoinGecko.APIKey == "" {
		structuredLogger.Warn("COINGECKO_API_KEY is not set; price fetches will fail until configured")
	}

	// Create CoinGecko client
	upstreamClient := coingecko.NewClient(cfg.CoinGecko)

	// Create cache based on configuration
	cacheConfig := cache.Config{
		RedisAddr:     cfg.Redis.Addr,
		RedisPassword: cfg.Redis.Password,
		RedisDB:       cfg.Redis.DB,
	}

	priceCache, err := cache.NewCacheFromConfig(cfg.Cache.Backend, cacheConfig)
	if err != nil {
		structuredLogger.WithField("error", err.Error()).Fatal("Failed to create cache")
	}
	defer priceCache.Close()

	structuredLogger.WithField("backend", cfg.Cache.Backend).Info("Cache initialized successfully")

	// Create historical store
	priceStore, err := store.NewGormStore(cfg.Store)
	if err != nil {
		structuredLogger.WithField("error", err.Error()).Fatal("Failed to create historical store")
	}
	defer priceStore.Close()

	structuredLogger.WithField("backend", cfg.Store.Backend).Info("Historical store initialized successfully")

	// Set service info metrics
	metrics.SetServiceInfo("1.0.0", cfg.Cache.Backend, cfg.Store.Backend)

	// Create price service
	priceService, err := service.NewPriceService(cfg, upstreamClient, priceCache, priceStore)
	if err != nil {
		structuredLogger.WithField("error", err.Error()).Fatal("Failed to create price service")
	}

	// Create HTTP handler and server
	priceHandler := handler.NewPriceHandler(priceService)
	server := handler.CreateServer(priceHandler, cfg.Server.Port)

	structuredLogger.WithField("port", cfg.Server.Port).Info("Server starting")

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			structuredLogger.WithField("error", err.Error()).Fatal("Failed to start server")
		}
	}()

	structuredLogger.WithFields(map[string]interface{}{
		"port": cfg.Server.Port,
		"endpoints": map[string]string{
			"health":     "/health",
			"price":      "/api/v1/crypto-price/{pair}",
			"historical": "/api/v1/crypto-price/historical",
			"pairs":      "/api/v1/pairs",
			"metrics":    "/metrics",
			"swagger":    "/swagger/",
		},
	}).Info("Crypto Price Service is running")

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	structuredLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		structuredLogger.WithField("error", err.Error()).Fatal("Server forced to shutdown")
	}

	structuredLogger.Info("Server shutdown completed")
}
