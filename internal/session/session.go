package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"grailify/internal/store"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

const (
	CookieName = "grailify_session"
	HeaderName = "X-Session-ID"

	tokenKey = "auth_token"
)

var (
	ErrNoToken      = errors.New("no auth token for session")
	ErrInvalidToken = errors.New("auth token is empty")
)

// NewID mints a random session id.
func NewID() string {
	return uuid.NewString()
}

// ValidID reports whether id looks like one NewID produced.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// Tokens stores the opaque auth token a session signed in with. The token is
// never parsed or verified here.
type Tokens struct {
	tracer trace.Tracer
	store  store.Store
}

func NewTokens(tracer trace.Tracer, s store.Store) *Tokens {
	return &Tokens{tracer: tracer, store: s}
}

func (t *Tokens) SetToken(ctx context.Context, sessionID, token string) error {
	ctx, span := t.tracer.Start(ctx, "session.set-token")
	defer span.End()

	token = strings.TrimSpace(token)
	if token == "" {
		return ErrInvalidToken
	}
	if err := t.store.Set(ctx, store.SessionKey(sessionID, tokenKey), token); err != nil {
		return fmt.Errorf("store token: %w", err)
	}
	return nil
}

func (t *Tokens) Token(ctx context.Context, sessionID string) (string, error) {
	ctx, span := t.tracer.Start(ctx, "session.token")
	defer span.End()

	token, err := t.store.Get(ctx, store.SessionKey(sessionID, tokenKey))
	if errors.Is(err, store.ErrNotFound) || (err == nil && token == "") {
		return "", ErrNoToken
	}
	if err != nil {
		return "", fmt.Errorf("load token: %w", err)
	}
	return token, nil
}

func (t *Tokens) ClearToken(ctx context.Context, sessionID string) error {
	ctx, span := t.tracer.Start(ctx, "session.clear-token")
	defer span.End()

	if err := t.store.Delete(ctx, store.SessionKey(sessionID, tokenKey)); err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	return nil
}

// SignedIn reports whether the session holds a token.
func (t *Tokens) SignedIn(ctx context.Context, sessionID string) (bool, error) {
	_, err := t.Token(ctx, sessionID)
	if errors.Is(err, ErrNoToken) {
		return false, nil
	}
	return err == nil, err
}
