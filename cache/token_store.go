package cache

import (
	"context"
	"errors"
	"io"
	"time"

	"go.pilab.hu/grants/domain"
)

// ErrNotFound is returned by Get when no entry is cached for a token.
var ErrNotFound = errors.New("token not found in cache")

// TokenEntry is a cached access token validation result.
type TokenEntry struct {
	ID        string    `redis:"id"`        // Unique token identifier
	ClientID  string    `redis:"clientId"`  // Client the token was issued to
	UserID    string    `redis:"userId"`    // User who authorized the token
	Scope     string    `redis:"scope"`     // Authorized scopes
	ExpiresAt time.Time `redis:"expiresAt"` // Expiration timestamp
	CreatedAt time.Time `redis:"createdAt"` // Creation timestamp
}

// EntryFromToken builds a cache entry from a validated token.
func EntryFromToken(t *domain.Token) *TokenEntry {
	return &TokenEntry{
		ID:        t.ID,
		ClientID:  t.ClientID,
		UserID:    t.UserID,
		Scope:     t.Scope,
		ExpiresAt: t.ExpiresAt,
		CreatedAt: t.CreatedAt,
	}
}

// Token converts the entry back into a domain token carrying tokenValue.
func (e *TokenEntry) Token(tokenValue string) *domain.Token {
	return &domain.Token{
		ID:         e.ID,
		TokenType:  domain.TokenTypeAccessToken,
		TokenValue: tokenValue,
		ClientID:   e.ClientID,
		UserID:     e.UserID,
		Scope:      e.Scope,
		ExpiresAt:  e.ExpiresAt,
		CreatedAt:  e.CreatedAt,
	}
}

// TokenStore caches access token validations keyed by token value. Values
// are hashed before they are used as keys.
type TokenStore interface {
	io.Closer
	Set(ctx context.Context, tokenValue string, entry *TokenEntry) error
	Get(ctx context.Context, tokenValue string) (*TokenEntry, error)
	Delete(ctx context.Context, tokenValue string) error
	Count(ctx context.Context) int
}

// entryTTL caps ttl so an entry never outlives its token.
func entryTTL(ttl time.Duration, expiresAt time.Time) time.Duration {
	if until := time.Until(expiresAt); until < ttl {
		return until
	}
	return ttl
}
