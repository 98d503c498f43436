package domain

import "context"

type contextKey string

// TokenContextKey is the key used to store the authenticated Token in context.
const TokenContextKey contextKey = "auth_token"

// ContextWithToken returns a copy of ctx carrying the authenticated token.
func ContextWithToken(ctx context.Context, token *Token) context.Context {
	return context.WithValue(ctx, TokenContextKey, token)
}

// GetAuthenticatedTokenFromContext retrieves the authenticated Token from context.
func GetAuthenticatedTokenFromContext(ctx context.Context) (*Token, bool) {
	val := ctx.Value(TokenContextKey)
	if token, ok := val.(*Token); ok && token != nil {
		return token, true
	}
	return nil, false
}

// UserIDFromContext returns the id of the authenticated user, or "".
func UserIDFromContext(ctx context.Context) string {
	if token, ok := GetAuthenticatedTokenFromContext(ctx); ok {
		return token.UserID
	}
	return ""
}
