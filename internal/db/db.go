package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	poolMaxConns      = 10
	poolMinConns      = 1
	poolMaxIdle       = 5 * time.Minute
	poolHealthCheck   = 30 * time.Second
	poolConnectBudget = 5 * time.Second
)

// NewPool opens a pgx pool for the expense ledger and fails fast when the
// server cannot be reached within poolConnectBudget.
func NewPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}

	// a dsn with pool_max_conns wins
	if !strings.Contains(dsn, "pool_max_conns") {
		cfg.MaxConns = poolMaxConns
	}
	cfg.MinConns = poolMinConns
	cfg.MaxConnIdleTime = poolMaxIdle
	cfg.HealthCheckPeriod = poolHealthCheck

	ctx, cancel := context.WithTimeout(ctx, poolConnectBudget)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return pool, nil
}
