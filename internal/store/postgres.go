package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const createClientStoreTable = `
CREATE TABLE IF NOT EXISTS client_store (
    key         TEXT        PRIMARY KEY,
    value       TEXT        NOT NULL,
    expires_at  TIMESTAMPTZ,
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_client_store_expires_at
    ON client_store (expires_at)
    WHERE expires_at IS NOT NULL;
`

type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Postgres keeps values in the client_store table.
type Postgres struct {
	pool   PgxPool
	tracer trace.Tracer
	ttl    time.Duration
	now    func() time.Time
}

func NewPostgres(pool PgxPool, tracer trace.Tracer, ttl time.Duration) *Postgres {
	return &Postgres{pool: pool, tracer: tracer, ttl: ttl, now: time.Now}
}

func (s *Postgres) RunMigrations(ctx context.Context) error {
	ctx, span := s.tracer.Start(ctx, "client-store.run-migrations")
	defer span.End()

	_, err := s.pool.Exec(ctx, createClientStoreTable)
	return err
}

func (s *Postgres) Get(ctx context.Context, key string) (string, error) {
	if err := validKey(key); err != nil {
		return "", err
	}
	ctx, span := s.tracer.Start(ctx, "client-store.get")
	defer span.End()
	span.SetAttributes(attribute.String("key", key))

	var value string
	err := s.pool.QueryRow(ctx,
		`SELECT value FROM client_store
		 WHERE key = $1 AND (expires_at IS NULL OR expires_at > $2)`,
		key, s.now(),
	).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func (s *Postgres) Set(ctx context.Context, key, value string) error {
	if err := validKey(key); err != nil {
		return err
	}
	ctx, span := s.tracer.Start(ctx, "client-store.set")
	defer span.End()
	span.SetAttributes(attribute.String("key", key))

	now := s.now()
	_, err := s.pool.Exec(ctx,
		`INSERT INTO client_store (key, value, expires_at, updated_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (key) DO UPDATE SET
		     value = EXCLUDED.value,
		     expires_at = EXCLUDED.expires_at,
		     updated_at = EXCLUDED.updated_at`,
		key, value, expiry(now, s.ttl), now,
	)
	return err
}

func (s *Postgres) Delete(ctx context.Context, key string) error {
	if err := validKey(key); err != nil {
		return err
	}
	ctx, span := s.tracer.Start(ctx, "client-store.delete")
	defer span.End()

	_, err := s.pool.Exec(ctx, `DELETE FROM client_store WHERE key = $1`, key)
	return err
}

// PurgeExpired removes rows whose TTL has passed and reports how many went.
func (s *Postgres) PurgeExpired(ctx context.Context) (int64, error) {
	ctx, span := s.tracer.Start(ctx, "client-store.purge-expired")
	defer span.End()

	tag, err := s.pool.Exec(ctx,
		`DELETE FROM client_store WHERE expires_at IS NOT NULL AND expires_at <= $1`, s.now())
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
