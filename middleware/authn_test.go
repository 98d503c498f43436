package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.pilab.hu/grants/cache"
	"go.pilab.hu/grants/domain"
)

// MockTokenRepository for authenticator tests
type MockTokenRepository struct {
	mock.Mock
}

func (m *MockTokenRepository) StoreToken(ctx context.Context, token *domain.Token) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockTokenRepository) ValidateAccessToken(ctx context.Context, tokenValue string) (*domain.Token, error) {
	args := m.Called(ctx, tokenValue)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Token), args.Error(1)
}

func activeToken() *domain.Token {
	return &domain.Token{
		ID:         "t1",
		TokenType:  domain.TokenTypeAccessToken,
		TokenValue: "good",
		ClientID:   "a1",
		UserID:     "u1",
		CreatedAt:  time.Now(),
		ExpiresAt:  time.Now().Add(time.Hour),
	}
}

func TestAuthenticator_CachesValidation(t *testing.T) {
	repo := new(MockTokenRepository)
	repo.On("ValidateAccessToken", mock.Anything, "good").Return(activeToken(), nil).Once()

	store := cache.NewMemoryTokenStore(time.Minute)
	defer store.Close()
	authn := NewAuthenticator(repo, store)

	tok, err := authn.Authenticate(context.Background(), "good")
	require.NoError(t, err)
	assert.Equal(t, "u1", tok.UserID)

	// Second call is served from the cache.
	tok, err = authn.Authenticate(context.Background(), "good")
	require.NoError(t, err)
	assert.Equal(t, "u1", tok.UserID)
	assert.Equal(t, "good", tok.TokenValue)

	repo.AssertExpectations(t)
}

func TestAuthenticator_Invalid(t *testing.T) {
	repo := new(MockTokenRepository)
	repo.On("ValidateAccessToken", mock.Anything, "bad").Return(nil, domain.ErrTokenNotFound)

	authn := NewAuthenticator(repo, nil)

	_, err := authn.Authenticate(context.Background(), "bad")
	assert.ErrorIs(t, err, domain.ErrTokenNotFound)

	_, err = authn.Authenticate(context.Background(), "")
	assert.ErrorIs(t, err, ErrNoCredentials)
}

func TestRequireAuth(t *testing.T) {
	repo := new(MockTokenRepository)
	repo.On("ValidateAccessToken", mock.Anything, "good").Return(activeToken(), nil)
	repo.On("ValidateAccessToken", mock.Anything, "bad").Return(nil, errors.New("nope"))

	e := echo.New()
	e.GET("/me", func(c echo.Context) error {
		return c.String(http.StatusOK, domain.UserIDFromContext(c.Request().Context()))
	}, RequireAuth(NewAuthenticator(repo, nil)))

	tests := []struct {
		name       string
		setup      func(r *http.Request)
		wantStatus int
		wantBody   string
	}{
		{
			name:       "bearer token",
			setup:      func(r *http.Request) { r.Header.Set(echo.HeaderAuthorization, "Bearer good") },
			wantStatus: http.StatusOK,
			wantBody:   "u1",
		},
		{
			name:       "session cookie",
			setup:      func(r *http.Request) { r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "good"}) },
			wantStatus: http.StatusOK,
			wantBody:   "u1",
		},
		{
			name:       "no credentials",
			setup:      func(*http.Request) {},
			wantStatus: http.StatusUnauthorized,
			wantBody:   `"error":"unauthorized"`,
		},
		{
			name:       "malformed header",
			setup:      func(r *http.Request) { r.Header.Set(echo.HeaderAuthorization, "Basic Zm9v") },
			wantStatus: http.StatusUnauthorized,
			wantBody:   "expected Bearer token",
		},
		{
			name:       "invalid token",
			setup:      func(r *http.Request) { r.Header.Set(echo.HeaderAuthorization, "Bearer bad") },
			wantStatus: http.StatusUnauthorized,
			wantBody:   "invalid or expired token",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			tt.setup(req)
			rec := httptest.NewRecorder()

			e.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
		})
	}
}
