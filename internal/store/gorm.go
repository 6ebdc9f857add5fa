package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"crypto-price-service/internal/config"
	"crypto-price-service/internal/model"

	"github.com/avast/retry-go/v4"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// GormStore persists price observations through GORM. Postgres is the
// production backend; sqlite exists for local development and tooling.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens the configured database backend, retries the initial
// connection, and migrates the observations table.
func NewGormStore(cfg config.StoreConfig) (*GormStore, error) {
	var dialector gorm.Dialector

	switch strings.ToLower(cfg.Backend) {
	case "postgres", "":
		dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(cfg.Path)
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", cfg.Backend)
	}

	var db *gorm.DB
	err := retry.Do(
		func() error {
			var openErr error
			db, openErr = gorm.Open(dialector, &gorm.Config{
				Logger: gormlogger.Default.LogMode(gormlogger.Silent),
			})
			return openErr
		},
		retry.Attempts(5),
		retry.Delay(time.Second),
		retry.DelayType(retry.BackOffDelay),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	if err := db.AutoMigrate(&model.PriceObservation{}); err != nil {
		return nil, fmt.Errorf("failed to migrate price observations table: %w", err)
	}

	return &GormStore{db: db}, nil
}

// Save appends a price observation with a server-assigned timestamp
func (s *GormStore) Save(ctx context.Context, observation *model.PriceObservation) error {
	if err := s.db.WithContext(ctx).Create(observation).Error; err != nil {
		return fmt.Errorf("failed to save price observation: %w", err)
	}
	return nil
}

// FindByPairAndRange returns observations for pair within [start, end],
// ordered by observation time descending
func (s *GormStore) FindByPairAndRange(ctx context.Context, pair string, start, end time.Time) ([]model.PriceObservation, error) {
	observations := make([]model.PriceObservation, 0)

	err := s.db.WithContext(ctx).
		Where("pair = ? AND observed_at BETWEEN ? AND ?", pair, start, end).
		Order("observed_at DESC").
		Find(&observations).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query price observations: %w", err)
	}

	return observations, nil
}

// Close closes the database connection
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Health checks if the database connection is healthy
func (s *GormStore) Health() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
