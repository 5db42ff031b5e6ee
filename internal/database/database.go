// Package database owns the pgx connection pool backing the credential and
// profile stores.
package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Config carries the pool tuning knobs. Zero durations fall back to
// defaults sized for the auth workload: many short point queries, no
// long-running statements.
type Config struct {
	URL             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

type DB struct {
	Pool *pgxpool.Pool
}

func New(ctx context.Context, cfg Config) (*DB, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	lifetime := cfg.MaxConnLifetime
	if lifetime <= 0 {
		lifetime = time.Hour
	}
	idle := cfg.MaxConnIdleTime
	if idle <= 0 {
		idle = 10 * time.Minute
	}

	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = lifetime
	poolCfg.MaxConnIdleTime = idle
	poolCfg.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	slog.Info("credential store connected",
		"max_conns", cfg.MaxConns,
		"min_conns", cfg.MinConns,
		"conn_lifetime", lifetime,
		"conn_idle_time", idle,
	)
	return &DB{Pool: pool}, nil
}

func (db *DB) Close() {
	if db.Pool != nil {
		db.Pool.Close()
	}
}

func (db *DB) Health(ctx context.Context) error {
	return db.Pool.Ping(ctx)
}
