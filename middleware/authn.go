package middleware

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"go.pilab.hu/grants/cache"
	"go.pilab.hu/grants/domain"
)

var (
	// ErrNoCredentials is returned when a request carries no token.
	ErrNoCredentials = errors.New("no credentials provided")

	errInvalidHeader = errors.New("invalid authorization header format: expected Bearer token")
)

// Authenticator resolves access token values to tokens, consulting the
// token cache before the repository.
type Authenticator struct {
	tokens domain.TokenRepository
	cache  cache.TokenStore
}

// NewAuthenticator creates a new Authenticator. store may be nil.
func NewAuthenticator(tokens domain.TokenRepository, store cache.TokenStore) *Authenticator {
	return &Authenticator{
		tokens: tokens,
		cache:  store,
	}
}

// Authenticate returns the active access token for tokenValue.
func (a *Authenticator) Authenticate(ctx context.Context, tokenValue string) (*domain.Token, error) {
	if tokenValue == "" {
		return nil, ErrNoCredentials
	}

	if a.cache != nil {
		entry, err := a.cache.Get(ctx, tokenValue)
		if err == nil {
			return entry.Token(tokenValue), nil
		}
		if !errors.Is(err, cache.ErrNotFound) {
			log.Warn().Err(err).Msg("Token cache lookup failed, falling back to repository")
		}
	}

	token, err := a.tokens.ValidateAccessToken(ctx, tokenValue)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if token == nil {
		return nil, errors.New("token validation successful but token object is nil")
	}

	if a.cache != nil {
		if err := a.cache.Set(ctx, tokenValue, cache.EntryFromToken(token)); err != nil {
			log.Warn().Err(err).Msg("Failed to cache token validation")
		}
	}

	return token, nil
}
