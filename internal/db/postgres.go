package db

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Pool is the shared pool set by InitPostgres.
var Pool *pgxpool.Pool

var (
	parseConfig = pgxpool.ParseConfig
	newPool     = pgxpool.NewWithConfig
	pingPool    = func(ctx context.Context, pool *pgxpool.Pool) error {
		return pool.Ping(ctx)
	}
)

// InitPostgres connects Pool to dsn and verifies it with a ping.
func InitPostgres(ctx context.Context, dsn string) error {
	if strings.TrimSpace(dsn) == "" {
		return errors.New("DATABASE_URL is empty")
	}

	cfg, err := parseConfig(dsn)
	if err != nil {
		return fmt.Errorf("parse postgres dsn: %w", err)
	}

	pool, err := newPool(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	if err := pingPool(ctx, pool); err != nil {
		pool.Close()
		return fmt.Errorf("ping postgres: %w", err)
	}

	Pool = pool
	log.Println("Connected to Postgres")
	return nil
}

// Close releases Pool if it was opened.
func Close() {
	if Pool == nil {
		return
	}
	Pool.Close()
	Pool = nil
}
