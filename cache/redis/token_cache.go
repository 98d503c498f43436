package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.pilab.hu/grants/cache"
)

// TokenStore implements cache.TokenStore using Redis hashes.
type TokenStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewTokenStore creates a new [TokenStore]. Entries live for at most ttl.
func NewTokenStore(client *redis.Client, prefix string, ttl time.Duration) *TokenStore {
	return &TokenStore{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

// redisKey returns the Redis key for a token value.
func (r *TokenStore) redisKey(tokenValue string) string {
	return fmt.Sprintf("%s:token:%s", r.prefix, cache.HashToken(tokenValue))
}

func (r *TokenStore) pattern() string {
	return fmt.Sprintf("%s:token:*", r.prefix)
}

// Set stores a token entry with an expiry.
func (r *TokenStore) Set(ctx context.Context, tokenValue string, entry *cache.TokenEntry) error {
	ttl := r.ttl
	if until := time.Until(entry.ExpiresAt); until < ttl {
		ttl = until
	}
	if ttl <= 0 {
		return nil
	}

	key := r.redisKey(tokenValue)
	fields := map[string]interface{}{
		"id":         entry.ID,
		"client_id":  entry.ClientID,
		"user_id":    entry.UserID,
		"scope":      entry.Scope,
		"expires_at": entry.ExpiresAt.Unix(),
		"created_at": entry.CreatedAt.Unix(),
	}

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, fields)
		pipe.Expire(ctx, key, ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to set token in Redis: %w", err)
	}

	return nil
}

// Get retrieves a token entry.
func (r *TokenStore) Get(ctx context.Context, tokenValue string) (*cache.TokenEntry, error) {
	res, err := r.client.HGetAll(ctx, r.redisKey(tokenValue)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get token from Redis: %w", err)
	}
	if len(res) == 0 {
		return nil, cache.ErrNotFound
	}

	expiresAtUnix, err := strconv.ParseInt(res["expires_at"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid expires_at in cached token: %w", err)
	}
	createdAtUnix, err := strconv.ParseInt(res["created_at"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid created_at in cached token: %w", err)
	}

	return &cache.TokenEntry{
		ID:        res["id"],
		ClientID:  res["client_id"],
		UserID:    res["user_id"],
		Scope:     res["scope"],
		ExpiresAt: time.Unix(expiresAtUnix, 0),
		CreatedAt: time.Unix(createdAtUnix, 0),
	}, nil
}

// Delete removes a token entry.
func (r *TokenStore) Delete(ctx context.Context, tokenValue string) error {
	if err := r.client.Del(ctx, r.redisKey(tokenValue)).Err(); err != nil {
		return fmt.Errorf("failed to delete token from Redis: %w", err)
	}
	return nil
}

// Count returns the number of cached tokens, or -1 when Redis fails.
func (r *TokenStore) Count(ctx context.Context) int {
	count := 0
	err := r.scan(ctx, func(keys []string) error {
		count += len(keys)
		return nil
	})
	if err != nil {
		return -1
	}
	return count
}

// Close closes the underlying client.
func (r *TokenStore) Close() error {
	err := r.client.Close()
	if errors.Is(err, redis.ErrClosed) {
		return nil
	}
	return err
}

func (r *TokenStore) scan(ctx context.Context, fn func(keys []string) error) error {
	var cursor uint64
	for {
		keys, next, err := r.client.Scan(ctx, cursor, r.pattern(), 100).Result()
		if err != nil {
			return fmt.Errorf("failed to scan token keys: %w", err)
		}
		if len(keys) > 0 {
			if err := fn(keys); err != nil {
				return err
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

var _ cache.TokenStore = (*TokenStore)(nil)
