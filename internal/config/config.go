package config

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application. It is built once at
// startup and passed by reference; nothing mutates it afterwards.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Cache     CacheConfig     `mapstructure:"cache"`
	CoinGecko CoinGeckoConfig `mapstructure:"coingecko"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Store     StoreConfig     `mapstructure:"store"`
	App       AppConfig       `mapstructure:"app"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Backend string        `mapstructure:"backend"`
	TTL     time.Duration `mapstructure:"ttl"`
}

// CoinGeckoConfig holds CoinGecko API-related configuration
type CoinGeckoConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// RedisConfig holds Redis-related configuration
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// StoreConfig holds historical store configuration
type StoreConfig struct {
	Backend  string `mapstructure:"backend"`
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"ssl_mode"`
	Path     string `mapstructure:"path"`
}

// AppConfig holds application-specific configuration
type AppConfig struct {
	SupportedPairs []string `mapstructure:"supported_pairs"`
	LogLevel       string   `mapstructure:"log_level"`
}

// Load loads configuration from environment variables and defaults
func Load() (*Config, error) {
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.shutdown_timeout", "30s")

	viper.SetDefault("cache.backend", "memory")
	viper.SetDefault("cache.ttl", "30m")

	viper.SetDefault("coingecko.base_url", "https://api.coingecko.com/api/v3/simple/price")
	viper.SetDefault("coingecko.api_key", "")
	viper.SetDefault("coingecko.timeout", "5s")

	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)

	viper.SetDefault("store.backend", "postgres")
	viper.SetDefault("store.host", "localhost")
	viper.SetDefault("store.port", "5432")
	viper.SetDefault("store.user", "crypto")
	viper.SetDefault("store.password", "crypto")
	viper.SetDefault("store.name", "crypto_prices")
	viper.SetDefault("store.ssl_mode", "disable")
	viper.SetDefault("store.path", "crypto_prices.db")

	viper.SetDefault("app.supported_pairs", []string{"TON_USDT", "USDT_TON"})
	viper.SetDefault("app.log_level", "info")

	// Bind environment variables
	viper.BindEnv("server.port", "PORT")
	viper.BindEnv("server.shutdown_timeout", "SHUTDOWN_TIMEOUT")
	viper.BindEnv("cache.backend", "CACHE_BACKEND")
	viper.BindEnv("cache.ttl", "CACHE_TTL")
	viper.BindEnv("coingecko.base_url", "COINGECKO_BASE_URL")
	viper.BindEnv("coingecko.api_key", "COINGECKO_API_KEY")
	viper.BindEnv("coingecko.timeout", "COINGECKO_TIMEOUT")
	viper.BindEnv("redis.addr", "REDIS_ADDR")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")
	viper.BindEnv("redis.db", "REDIS_DB")
	viper.BindEnv("store.backend", "STORE_BACKEND")
	viper.BindEnv("store.host", "DB_HOST")
	viper.BindEnv("store.port", "DB_PORT")
	viper.BindEnv("store.user", "DB_USERNAME")
	viper.BindEnv("store.password", "DB_PASSWORD")
	viper.BindEnv("store.name", "DB_NAME")
	viper.BindEnv("store.ssl_mode", "DB_SSL_MODE")
	viper.BindEnv("store.path", "DB_PATH")
	viper.BindEnv("app.supported_pairs", "SUPPORTED_PAIRS")
	viper.BindEnv("app.log_level", "LOG_LEVEL")

	// Try to read from config file (optional)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Printf("Error reading config file: %v", err)
		}
		// Continue with environment variables and defaults
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks configuration invariants that would otherwise surface as
// confusing runtime failures.
func (c *Config) Validate() error {
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be positive, got %s", c.Cache.TTL)
	}
	if c.CoinGecko.Timeout <= 0 {
		return fmt.Errorf("coingecko.timeout must be positive, got %s", c.CoinGecko.Timeout)
	}
	if len(c.App.SupportedPairs) == 0 {
		return fmt.Errorf("app.supported_pairs must not be empty")
	}
	switch c.Cache.Backend {
	case "", "memory", "redis":
	default:
		return fmt.Errorf("unsupported cache backend: %s", c.Cache.Backend)
	}
	switch c.Store.Backend {
	case "", "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported store backend: %s", c.Store.Backend)
	}
	return nil
}
