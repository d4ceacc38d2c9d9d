// Package postgres opens the two Postgres handles the stores use: a pgx pool
// for the ledger and a database/sql handle on lib/pq for decision records.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"

	"payrecon/internal/platform/config"
)

// Handles groups the connections opened against one database.
type Handles struct {
	Pool *pgxpool.Pool
	DB   *sql.DB
}

// Open connects both handles and pings them. Returns nil when no URL is
// configured.
func Open(ctx context.Context, cfg config.Postgres) (*Handles, error) {
	if cfg.URL == "" {
		return nil, nil
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse postgres URL: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}

	db, err := sql.Open("postgres", cfg.URL)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("open database/sql handle: %w", err)
	}
	if cfg.MaxConns > 0 {
		db.SetMaxOpenConns(int(cfg.MaxConns))
	}
	if err := db.PingContext(ctx); err != nil {
		pool.Close()
		db.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}

	return &Handles{Pool: pool, DB: db}, nil
}

// Close releases both handles.
func (h *Handles) Close() error {
	h.Pool.Close()
	return h.DB.Close()
}
