package bbolt_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.pilab.hu/grants/domain"
	"go.pilab.hu/grants/storage/bbolt"
)

func setupStore(t *testing.T) (*bbolt.Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "grants.db")
	store, err := bbolt.Open(path)
	require.NoError(t, err)
	return store, path
}

func TestStore_ListAndRevoke(t *testing.T) {
	store, _ := setupStore(t)
	defer store.Close()
	ctx := context.Background()
	exp := time.Now().Add(time.Hour)

	require.NoError(t, store.SaveClient(ctx, &domain.Client{ID: "a1", Name: "Foo"}))
	require.NoError(t, store.StoreToken(ctx, &domain.Token{ID: "1", TokenType: domain.TokenTypeAccessToken, TokenValue: "v1", ClientID: "a1", UserID: "u1", CreatedAt: time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC), ExpiresAt: exp}))
	require.NoError(t, store.StoreToken(ctx, &domain.Token{ID: "2", TokenType: domain.TokenTypeAccessToken, TokenValue: "v2", ClientID: "b2", UserID: "u1", CreatedAt: time.Date(2021, 2, 2, 0, 0, 0, 0, time.UTC), ExpiresAt: exp}))

	auths, err := store.ListUserAuthorizations(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, auths, 2)
	assert.Equal(t, "Foo", auths[0].ClientName)
	assert.Equal(t, "b2", auths[1].ClientName, "unknown client falls back to its id")

	revoked, err := store.RevokeUserAuthorization(ctx, "u1", "a1")
	require.NoError(t, err)
	assert.Equal(t, []string{"v1"}, revoked)

	auths, err = store.ListUserAuthorizations(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, auths, 1)
	assert.Equal(t, "b2", auths[0].ClientID)

	_, err = store.ValidateAccessToken(ctx, "v1")
	assert.ErrorIs(t, err, domain.ErrTokenNotFound)
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	store, path := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.StoreToken(ctx, &domain.Token{ID: "1", TokenType: domain.TokenTypeAccessToken, TokenValue: "v1", ClientID: "a1", UserID: "u1", CreatedAt: time.Now(), ExpiresAt: time.Now().Add(time.Hour)}))
	require.NoError(t, store.Close())

	reopened, err := bbolt.Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	tok, err := reopened.ValidateAccessToken(ctx, "v1")
	require.NoError(t, err)
	assert.Equal(t, "u1", tok.UserID)
}

func TestStore_DuplicateToken(t *testing.T) {
	store, _ := setupStore(t)
	defer store.Close()
	ctx := context.Background()

	tok := &domain.Token{ID: "1", TokenValue: "v1", UserID: "u1", ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, store.StoreToken(ctx, tok))
	assert.Error(t, store.StoreToken(ctx, tok))
}

func TestStore_SaveClientRenamesAuthorization(t *testing.T) {
	store, _ := setupStore(t)
	defer store.Close()
	ctx := context.Background()

	require.NoError(t, store.StoreToken(ctx, &domain.Token{
		ID: "1", TokenType: domain.TokenTypeAccessToken, TokenValue: "v1",
		ClientID: "c9", UserID: "u9", CreatedAt: time.Now(), ExpiresAt: time.Now().Add(time.Hour),
	}))

	auths, err := store.ListUserAuthorizations(ctx, "u9")
	require.NoError(t, err)
	require.Len(t, auths, 1)
	assert.Equal(t, "c9", auths[0].ClientName)

	require.NoError(t, store.SaveClient(ctx, &domain.Client{ID: "c9", Name: "Renamed"}))
	auths, err = store.ListUserAuthorizations(ctx, "u9")
	require.NoError(t, err)
	require.Len(t, auths, 1)
	assert.Equal(t, "Renamed", auths[0].ClientName)
}
