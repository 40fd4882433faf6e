package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"

	_ "modernc.org/sqlite"
)

const createSQLiteClientStore = `CREATE TABLE IF NOT EXISTS client_store (
	key        TEXT    PRIMARY KEY,
	value      TEXT    NOT NULL,
	expires_at INTEGER,
	updated_at INTEGER NOT NULL
)`

// SQLite is a single-file Store for one-node deployments.
type SQLite struct {
	db     *sql.DB
	mu     sync.Mutex
	tracer trace.Tracer
	ttl    time.Duration
	now    func() time.Time
}

// OpenSQLite opens or creates the database at path in WAL mode.
func OpenSQLite(ctx context.Context, path string, tracer trace.Tracer, ttl time.Duration) (*SQLite, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is empty")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.ExecContext(ctx, createSQLiteClientStore); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("sqlite client store opened: %s", path)
	return &SQLite{db: db, tracer: tracer, ttl: ttl, now: time.Now}, nil
}

func (s *SQLite) Get(ctx context.Context, key string) (string, error) {
	if err := validKey(key); err != nil {
		return "", err
	}
	ctx, span := s.tracer.Start(ctx, "client-store.sqlite-get")
	defer span.End()

	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM client_store WHERE key = ? AND (expires_at IS NULL OR expires_at > ?)`,
		key, s.now().UnixMilli(),
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func (s *SQLite) Set(ctx context.Context, key, value string) error {
	if err := validKey(key); err != nil {
		return err
	}
	ctx, span := s.tracer.Start(ctx, "client-store.sqlite-set")
	defer span.End()

	now := s.now()
	var expiresAt any
	if exp := expiry(now, s.ttl); exp != nil {
		expiresAt = exp.UnixMilli()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO client_store (key, value, expires_at, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET
		     value = excluded.value,
		     expires_at = excluded.expires_at,
		     updated_at = excluded.updated_at`,
		key, value, expiresAt, now.UnixMilli(),
	)
	return err
}

func (s *SQLite) Delete(ctx context.Context, key string) error {
	if err := validKey(key); err != nil {
		return err
	}
	ctx, span := s.tracer.Start(ctx, "client-store.sqlite-delete")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, `DELETE FROM client_store WHERE key = ?`, key)
	return err
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
