// Copyright (c) 2024-2026 Lulla AI
// Author: Lulla Engineering <engineering@lulla.ai>
//
// Licensed under GPL-2.0 with Lulla Additional Terms.
// See LICENSE.md or contact sales@lulla.ai for commercial usage.

package connectors

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-gorm/caches/v4"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gorm_logger "gorm.io/gorm/logger"

	"github.com/lullai/pkg/commons"
	"github.com/lullai/pkg/configs"
)

// PostgresConnector owns the primary database handle. Request-scoped
// access goes through DB(ctx) so statement cancellation follows the
// caller's context.
type PostgresConnector interface {
	DB(ctx context.Context) *gorm.DB
	Ping(ctx context.Context) error
	Migrate() error
	Close() error
}

type postgresConnector struct {
	cfg    *configs.PostgresConfig
	logger commons.Logger
	db     *gorm.DB
}

type PostgresOption func(*postgresOptions)

type postgresOptions struct {
	cacheClient RedisConnector
	cacheTtl    time.Duration
}

// WithQueryCache attaches the gorm query cache backed by redis. Cached
// selects are invalidated on every write through the same handle.
func WithQueryCache(redis RedisConnector, ttl time.Duration) PostgresOption {
	return func(o *postgresOptions) {
		o.cacheClient = redis
		o.cacheTtl = ttl
	}
}

// NewPostgresConnector opens the database, applies the connection pool
// limits and optional plugins. It does not run migrations; callers decide
// when Migrate happens.
func NewPostgresConnector(cfg *configs.PostgresConfig, logger commons.Logger, opts ...PostgresOption) (PostgresConnector, error) {
	options := &postgresOptions{}
	for _, opt := range opts {
		opt(options)
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: gorm_logger.Default.LogMode(gorm_logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access sql database: %w", err)
	}
	if cfg.MaxOpenConnection > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConnection)
	}
	if cfg.MaxIdealConnection > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdealConnection)
	}

	if options.cacheClient != nil {
		cachesPlugin := &caches.Caches{Conf: &caches.Config{
			Easer:  true,
			Cacher: newRedisCacher(options.cacheClient, options.cacheTtl),
		}}
		if err := db.Use(cachesPlugin); err != nil {
			return nil, fmt.Errorf("failed to attach query cache: %w", err)
		}
		logger.Infof("postgres query cache enabled: ttl=%s", options.cacheTtl)
	}

	logger.Infof("postgres connected: host=%s, db=%s", cfg.Host, cfg.DbName)
	return &postgresConnector{cfg: cfg, logger: logger, db: db}, nil
}

func (c *postgresConnector) DB(ctx context.Context) *gorm.DB {
	return c.db.WithContext(ctx)
}

func (c *postgresConnector) Ping(ctx context.Context) error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Migrate applies pending schema migrations from the configured path.
// A connector without a migration path is a no-op, which is what every
// process except the primary API wants.
func (c *postgresConnector) Migrate() error {
	if c.cfg.MigrationPath == "" {
		return nil
	}

	m, err := migrate.New("file://"+c.cfg.MigrationPath, c.cfg.URL())
	if err != nil {
		return fmt.Errorf("failed to init migrations from %s: %w", c.cfg.MigrationPath, err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	c.logger.Infof("migrations applied from %s", c.cfg.MigrationPath)
	return nil
}

func (c *postgresConnector) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
