package server

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.pilab.hu/grants/cache"
	rediscache "go.pilab.hu/grants/cache/redis"
	"go.pilab.hu/grants/config"
	"go.pilab.hu/grants/domain"
	"go.pilab.hu/grants/mongodb"
	"go.pilab.hu/grants/storage/bbolt"
	"go.pilab.hu/grants/storage/memory"
)

// OpenStore opens the storage backend selected by cfg.StorageBackend.
func OpenStore(ctx context.Context, cfg *config.ServerConfig) (domain.Store, error) {
	switch cfg.StorageBackend {
	case config.StorageTypeMongoDB:
		client, err := mongodb.Connect(ctx, cfg.MongoURI)
		if err != nil {
			return nil, err
		}
		store, err := mongodb.NewStore(ctx, client, client.Database(cfg.MongoDBName))
		if err != nil {
			mongodb.Disconnect(ctx, client)
			return nil, err
		}
		return store, nil
	case config.StorageTypeBBolt:
		return bbolt.Open(cfg.BBoltPath)
	case config.StorageTypeMemory:
		return memory.NewStore(), nil
	default:
		return nil, fmt.Errorf("unsupported storage backend: %q", cfg.StorageBackend)
	}
}

// OpenTokenCache creates the token validation cache selected by cfg.TokenCache.
func OpenTokenCache(ctx context.Context, cfg *config.ServerConfig) (cache.TokenStore, error) {
	switch cfg.TokenCache {
	case config.TokenCacheMemory:
		return cache.NewMemoryTokenStore(cfg.TokenCacheTTL), nil
	case config.TokenCacheRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
		}
		return rediscache.NewTokenStore(client, cfg.RedisPrefix, cfg.TokenCacheTTL), nil
	default:
		return nil, fmt.Errorf("unsupported token cache: %q", cfg.TokenCache)
	}
}
