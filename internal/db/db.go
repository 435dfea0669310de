// Package db owns the lifecycle of the Postgres connection pool.
package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pkordes/viewpoint-explorer/backend/internal/config"
)

// ApplicationName identifies this service in pg_stat_activity.
const ApplicationName = "viewpoint-explorer"

// PoolConfig translates cfg into a pgxpool configuration: bounded pool,
// idle connections released after cfg.IdleTimeout, connection attempts
// bounded by cfg.ConnectTimeout.
func PoolConfig(cfg config.Config) (*pgxpool.Config, error) {
	pc, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("db.PoolConfig: parse: %w", err)
	}

	pc.MaxConns = cfg.PoolMaxConns
	pc.MaxConnIdleTime = cfg.IdleTimeout
	pc.ConnConfig.ConnectTimeout = cfg.ConnectTimeout
	pc.ConnConfig.RuntimeParams["application_name"] = ApplicationName
	return pc, nil
}

// Open creates the pool and verifies the database is reachable before the
// server accepts traffic. The caller owns the pool and must Close it.
func Open(ctx context.Context, cfg config.Config) (*pgxpool.Pool, error) {
	pc, err := PoolConfig(cfg)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("db.Open: create pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("db.Open: ping: %w", err)
	}
	return pool, nil
}
