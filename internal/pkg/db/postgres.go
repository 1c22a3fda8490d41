// Package db opens the PostgreSQL pool behind the results archive.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"appeal-engine/internal/config"
)

// Fallbacks for unset pool settings.
const (
	defaultConnectTimeout  = 10 * time.Second
	defaultMaxConnLifetime = time.Hour
	defaultMaxConnIdleTime = 30 * time.Minute
	healthCheckPeriod      = 30 * time.Second
)

// MigrateFunc brings the schema up to date on a freshly opened pool.
type MigrateFunc func(ctx context.Context, pool *pgxpool.Pool) error

// Option configures NewPool.
type Option func(*options)

type options struct {
	migrate MigrateFunc
}

// WithMigration runs fn once the pool is reachable. A nil fn is ignored.
func WithMigration(fn MigrateFunc) Option {
	return func(o *options) { o.migrate = fn }
}

// Pool is the archive's connection pool.
type Pool struct {
	*pgxpool.Pool
}

// NewPool connects, pings and optionally migrates. The pool is closed
// again if any step fails.
func NewPool(ctx context.Context, cfg *config.DatabaseConfig, opts ...Option) (*Pool, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	pc, err := poolConfig(cfg)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Str("database", cfg.Name).
		Int32("max_conns", pc.MaxConns).
		Msg("Opening archive database")

	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if o.migrate != nil {
		if err := o.migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to migrate archive schema: %w", err)
		}
		log.Info().Msg("Archive schema up to date")
	}

	return &Pool{Pool: pool}, nil
}

// poolConfig translates the database section into pgx settings, filling
// unset durations with the package fallbacks.
func poolConfig(cfg *config.DatabaseConfig) (*pgxpool.Config, error) {
	pc, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	if cfg.PoolSize > 0 {
		pc.MaxConns = int32(cfg.PoolSize)
	}
	pc.MinConns = 1
	pc.ConnConfig.ConnectTimeout = orDefault(cfg.ConnectTimeout, defaultConnectTimeout)
	pc.MaxConnLifetime = orDefault(cfg.MaxConnLifetime, defaultMaxConnLifetime)
	pc.MaxConnIdleTime = orDefault(cfg.MaxConnIdleTime, defaultMaxConnIdleTime)
	pc.HealthCheckPeriod = healthCheckPeriod
	return pc, nil
}

func orDefault(d, fallback time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return fallback
}

// Close closes the pool.
func (p *Pool) Close() {
	if p.Pool != nil {
		p.Pool.Close()
		log.Info().Msg("Archive database closed")
	}
}

// HealthCheck pings the database.
func (p *Pool) HealthCheck(ctx context.Context) error {
	return p.Pool.Ping(ctx)
}
