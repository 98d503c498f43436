package domain

import "time"

// Token types stored in the token collection.
const (
	TokenTypeAccessToken  = "access_token"
	TokenTypeRefreshToken = "refresh_token"
)

// Token represents an OAuth token issued to a client on behalf of a user.
// Authorizations are derived from the tokens a user still holds.
type Token struct {
	ID         string    `bson:"_id,omitempty" json:"id"`
	TokenType  string    `bson:"token_type" json:"token_type"`
	TokenValue string    `bson:"token_value" json:"token_value"`
	ClientID   string    `bson:"client_id" json:"client_id"`
	UserID     string    `bson:"user_id" json:"user_id"`
	Scope      string    `bson:"scope,omitempty" json:"scope,omitempty"`
	ExpiresAt  time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt  time.Time `bson:"created_at" json:"created_at"`
	IsRevoked  bool      `bson:"is_revoked" json:"is_revoked"`
}

// IsActive reports whether the token still grants access at the given time.
func (t *Token) IsActive(now time.Time) bool {
	return !t.IsRevoked && t.ExpiresAt.After(now)
}
