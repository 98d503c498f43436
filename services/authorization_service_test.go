package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.pilab.hu/grants/cache"
	"go.pilab.hu/grants/domain"
	"go.pilab.hu/grants/internal/audit"
	"go.pilab.hu/grants/internal/metrics"
	"go.pilab.hu/grants/storage/memory"
)

type MockAuthorizationRepository struct {
	mock.Mock
}

func (m *MockAuthorizationRepository) ListUserAuthorizations(ctx context.Context, userID string) ([]domain.Authorization, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Authorization), args.Error(1)
}

func (m *MockAuthorizationRepository) RevokeUserAuthorization(ctx context.Context, userID, clientID string) ([]string, error) {
	args := m.Called(ctx, userID, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func seedStore(t *testing.T) *memory.Store {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	exp := time.Now().Add(time.Hour)

	require.NoError(t, store.SaveClient(ctx, &domain.Client{ID: "a1", Name: "Foo"}))
	require.NoError(t, store.SaveClient(ctx, &domain.Client{ID: "b2", Name: "Bar"}))
	require.NoError(t, store.StoreToken(ctx, &domain.Token{ID: "1", TokenType: domain.TokenTypeAccessToken, TokenValue: "v1", ClientID: "a1", UserID: "u1", CreatedAt: time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC), ExpiresAt: exp}))
	require.NoError(t, store.StoreToken(ctx, &domain.Token{ID: "2", TokenType: domain.TokenTypeRefreshToken, TokenValue: "r1", ClientID: "a1", UserID: "u1", CreatedAt: time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC), ExpiresAt: exp}))
	require.NoError(t, store.StoreToken(ctx, &domain.Token{ID: "3", TokenType: domain.TokenTypeAccessToken, TokenValue: "v3", ClientID: "b2", UserID: "u1", CreatedAt: time.Date(2021, 2, 2, 0, 0, 0, 0, time.UTC), ExpiresAt: exp}))
	return store
}

func TestAuthorizationService_List(t *testing.T) {
	m := metrics.New(nil)
	svc := NewAuthorizationService(seedStore(t), WithMetrics(m))

	auths, err := svc.List(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, auths, 2)
	assert.Equal(t, "a1", auths[0].ClientID)
	assert.Equal(t, "Foo", auths[0].ClientName)
	assert.Equal(t, "2021-01-01", auths[0].Issued())
	assert.Equal(t, "b2", auths[1].ClientID)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AuthorizationsListed))

	_, err = svc.List(context.Background(), "")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestAuthorizationService_ListError(t *testing.T) {
	repo := new(MockAuthorizationRepository)
	repo.On("ListUserAuthorizations", mock.Anything, "u1").Return(nil, errors.New("db down"))

	svc := NewAuthorizationService(repo)
	_, err := svc.List(context.Background(), "u1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
	repo.AssertExpectations(t)
}

func TestAuthorizationService_Revoke(t *testing.T) {
	ctx := context.Background()
	store := seedStore(t)
	tokens := cache.NewMemoryTokenStore(time.Minute)
	defer tokens.Close()

	tok, err := store.ValidateAccessToken(ctx, "v1")
	require.NoError(t, err)
	require.NoError(t, tokens.Set(ctx, "v1", cache.EntryFromToken(tok)))

	var auditOut bytes.Buffer
	m := metrics.New(nil)
	svc := NewAuthorizationService(store,
		WithTokenCache(tokens),
		WithAuditLogger(audit.NewLogger("grants", &auditOut)),
		WithMetrics(m),
	)

	require.NoError(t, svc.Revoke(ctx, "u1", "a1"))

	_, err = tokens.Get(ctx, "v1")
	assert.ErrorIs(t, err, cache.ErrNotFound, "revoked token must be evicted")

	auths, err := svc.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, auths, 1)
	assert.Equal(t, "b2", auths[0].ClientID)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.AuthorizationsRevoked))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.TokensRevoked))

	var event audit.Event
	require.NoError(t, json.Unmarshal(auditOut.Bytes(), &event))
	assert.Equal(t, audit.ActionRevokeAuthorization, event.Action)
	assert.Equal(t, "u1", event.User)
	assert.Equal(t, "a1", event.Target)
	assert.True(t, event.Success)
}

func TestAuthorizationService_RevokeUnknownClient(t *testing.T) {
	svc := NewAuthorizationService(seedStore(t))

	require.NoError(t, svc.Revoke(context.Background(), "u1", "zzz"))

	auths, err := svc.List(context.Background(), "u1")
	require.NoError(t, err)
	assert.Len(t, auths, 2)
}

func TestAuthorizationService_RevokeValidation(t *testing.T) {
	repo := new(MockAuthorizationRepository)
	svc := NewAuthorizationService(repo)

	assert.ErrorIs(t, svc.Revoke(context.Background(), "", "a1"), ErrUnauthenticated)
	assert.ErrorIs(t, svc.Revoke(context.Background(), "u1", " "), ErrInvalidClientID)
	repo.AssertNotCalled(t, "RevokeUserAuthorization", mock.Anything, mock.Anything, mock.Anything)
}

func TestAuthorizationService_RevokeFailure(t *testing.T) {
	repo := new(MockAuthorizationRepository)
	repo.On("RevokeUserAuthorization", mock.Anything, "u1", "a1").Return(nil, errors.New("write conflict"))

	var auditOut bytes.Buffer
	m := metrics.New(nil)
	svc := NewAuthorizationService(repo, WithMetrics(m), WithAuditLogger(audit.NewLogger("grants", &auditOut)))

	err := svc.Revoke(context.Background(), "u1", "a1")
	require.Error(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RevokeFailures))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.AuthorizationsRevoked))

	var event audit.Event
	require.NoError(t, json.Unmarshal(auditOut.Bytes(), &event))
	assert.False(t, event.Success)
	assert.Equal(t, "write conflict", event.Error)
	repo.AssertExpectations(t)
}
