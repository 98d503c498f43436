package cache

import (
	"context"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// MemoryTokenStore implements TokenStore using ttlcache.
type MemoryTokenStore struct {
	cache *ttlcache.Cache[string, *TokenEntry]
	ttl   time.Duration
}

// NewMemoryTokenStore creates an in-memory token store. Entries live for at
// most ttl and never past their token's expiry.
func NewMemoryTokenStore(ttl time.Duration) *MemoryTokenStore {
	cache := ttlcache.New(
		ttlcache.WithTTL[string, *TokenEntry](ttl),
		ttlcache.WithDisableTouchOnHit[string, *TokenEntry](),
	)

	// Start the cleanup process
	go cache.Start()

	return &MemoryTokenStore{
		cache: cache,
		ttl:   ttl,
	}
}

// Set implements TokenStore.Set. Entries of expired tokens are not stored.
func (s *MemoryTokenStore) Set(_ context.Context, tokenValue string, entry *TokenEntry) error {
	ttl := entryTTL(s.ttl, entry.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	s.cache.Set(HashToken(tokenValue), entry, ttl)
	return nil
}

// Get implements TokenStore.Get.
func (s *MemoryTokenStore) Get(_ context.Context, tokenValue string) (*TokenEntry, error) {
	item := s.cache.Get(HashToken(tokenValue))
	if item == nil || item.IsExpired() {
		return nil, ErrNotFound
	}
	return item.Value(), nil
}

// Delete removes a token from the cache.
func (s *MemoryTokenStore) Delete(_ context.Context, tokenValue string) error {
	s.cache.Delete(HashToken(tokenValue))
	return nil
}

// Count counts the number of tokens in the cache.
func (s *MemoryTokenStore) Count(_ context.Context) int {
	return s.cache.Len()
}

// Close stops the cleanup goroutine.
func (s *MemoryTokenStore) Close() error {
	s.cache.Stop()
	return nil
}

var _ TokenStore = (*MemoryTokenStore)(nil)
