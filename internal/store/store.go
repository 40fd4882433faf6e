// Package store persists small per-session values such as the cart and the
// auth token. Each backend is a flat key/value map with an optional TTL.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"
)

var (
	// ErrNotFound is returned when a key has no live value.
	ErrNotFound = errors.New("store: key not found")

	// ErrInvalidKey is returned for empty keys.
	ErrInvalidKey = errors.New("store: invalid key")
)

const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Options selects and configures a backend for Open.
type Options struct {
	Backend    string
	TTL        time.Duration
	Redis      RedisClient
	Postgres   PgxPool
	SQLitePath string
	Tracer     trace.Tracer
}

// Open builds the configured backend. Database backends have their schema
// ensured before Open returns.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Backend)) {
	case "", BackendMemory:
		return NewMemory(opts.TTL), nil
	case BackendRedis:
		if opts.Redis == nil {
			return nil, fmt.Errorf("open %s store: no redis client", BackendRedis)
		}
		return NewRedis(opts.Redis, opts.TTL), nil
	case BackendPostgres:
		if opts.Postgres == nil {
			return nil, fmt.Errorf("open %s store: no postgres pool", BackendPostgres)
		}
		s := NewPostgres(opts.Postgres, opts.Tracer, opts.TTL)
		if err := s.RunMigrations(ctx); err != nil {
			return nil, fmt.Errorf("open %s store: %w", BackendPostgres, err)
		}
		return s, nil
	case BackendSQLite:
		s, err := OpenSQLite(ctx, opts.SQLitePath, opts.Tracer, opts.TTL)
		if err != nil {
			return nil, fmt.Errorf("open %s store: %w", BackendSQLite, err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", opts.Backend)
	}
}

// SessionKey namespaces a value under a session id, e.g. "session:abc:cart".
func SessionKey(sessionID, name string) string {
	return "session:" + sessionID + ":" + name
}

func validKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return ErrInvalidKey
	}
	return nil
}

func expiry(now time.Time, ttl time.Duration) *time.Time {
	if ttl <= 0 {
		return nil
	}
	t := now.Add(ttl)
	return &t
}
