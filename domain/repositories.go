package domain

import (
	"context"
	"errors"
	"io"
)

var (
	// ErrTokenNotFound is returned when a token value is unknown, revoked or expired.
	ErrTokenNotFound = errors.New("token not found or invalid")
)

// TokenRepository defines the token operations needed to authenticate
// requests and to derive authorizations.
type TokenRepository interface {
	// StoreToken saves a new access or refresh token.
	StoreToken(ctx context.Context, token *Token) error

	// ValidateAccessToken returns the active access token with the given value.
	// Returns ErrTokenNotFound when it is unknown, revoked or expired.
	ValidateAccessToken(ctx context.Context, tokenValue string) (*Token, error)
}

// ClientRepository stores the client display data authorizations are
// listed with.
type ClientRepository interface {
	SaveClient(ctx context.Context, client *Client) error
}

// AuthorizationRepository lists and revokes the authorizations of a user.
type AuthorizationRepository interface {
	// ListUserAuthorizations returns the user's authorizations in display order.
	ListUserAuthorizations(ctx context.Context, userID string) ([]Authorization, error)

	// RevokeUserAuthorization revokes every token of the user issued to the
	// client and returns the values of the tokens it revoked. Revoking a
	// client the user never authorized is not an error.
	RevokeUserAuthorization(ctx context.Context, userID, clientID string) ([]string, error)
}

// Store bundles the repositories a storage backend provides.
type Store interface {
	io.Closer
	TokenRepository
	ClientRepository
	AuthorizationRepository
}
