package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// StorageType defines the type of storage backend to use.
type StorageType string

const (
	StorageTypeMongoDB StorageType = "mongodb"
	StorageTypeBBolt   StorageType = "bbolt"
	StorageTypeMemory  StorageType = "memory"
)

// TokenCacheType selects where validated access tokens are cached.
type TokenCacheType string

const (
	TokenCacheMemory TokenCacheType = "memory"
	TokenCacheRedis  TokenCacheType = "redis"
)

// ServerConfig holds all configuration for the server.
// Tags use mapstructure for Viper unmarshalling.
type ServerConfig struct {
	HTTPAddr        string        `mapstructure:"http_addr"`
	LogLevel        string        `mapstructure:"log_level"`
	LogPretty       bool          `mapstructure:"log_pretty"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`

	StorageBackend StorageType `mapstructure:"storage_backend"`
	MongoURI       string      `mapstructure:"mongo_uri"`
	MongoDBName    string      `mapstructure:"mongo_db_name"`
	BBoltPath      string      `mapstructure:"bbolt_path"`

	TokenCache    TokenCacheType `mapstructure:"token_cache"`
	TokenCacheTTL time.Duration  `mapstructure:"token_cache_ttl"`
	RedisAddr     string         `mapstructure:"redis_addr"`
	RedisPassword string         `mapstructure:"redis_password"`
	RedisDB       int            `mapstructure:"redis_db"`
	RedisPrefix   string         `mapstructure:"redis_prefix"`

	OtelServiceName string `mapstructure:"otel_service_name"`
	OtelEnabled     bool   `mapstructure:"otel_enabled"`
}

// EnvPrefix is the prefix of environment overrides, e.g. GRANTS_HTTP_ADDR.
const EnvPrefix = "GRANTS"

// LoadConfig reads configuration from file, environment variables, and defaults.
func LoadConfig() (*ServerConfig, error) {
	return Load(viper.New())
}

// Load reads configuration through the given viper instance.
func Load(v *viper.Viper) (*ServerConfig, error) {
	v.SetConfigName("grants")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/grants/")
	v.AddConfigPath("$HOME/.grants")

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// No file: defaults and env vars only.
	}

	var cfg ServerConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http_addr", "0.0.0.0:8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_pretty", false)
	v.SetDefault("shutdown_timeout", "30s")

	v.SetDefault("storage_backend", string(StorageTypeMongoDB))
	v.SetDefault("mongo_uri", "mongodb://localhost:27017")
	v.SetDefault("mongo_db_name", "shadow_sso_db")
	v.SetDefault("bbolt_path", "./data/grants.db")

	v.SetDefault("token_cache", string(TokenCacheMemory))
	v.SetDefault("token_cache_ttl", "1m")
	v.SetDefault("redis_addr", "localhost:6379")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)
	v.SetDefault("redis_prefix", "grants")

	v.SetDefault("otel_service_name", "grants")
	v.SetDefault("otel_enabled", false)
}

// Validate checks enumerated settings.
func (c *ServerConfig) Validate() error {
	switch c.StorageBackend {
	case StorageTypeMongoDB, StorageTypeBBolt, StorageTypeMemory:
	default:
		return fmt.Errorf("unsupported storage_backend %q", c.StorageBackend)
	}

	switch c.TokenCache {
	case TokenCacheMemory, TokenCacheRedis:
	default:
		return fmt.Errorf("unsupported token_cache %q", c.TokenCache)
	}

	if c.TokenCacheTTL <= 0 {
		return errors.New("token_cache_ttl must be positive")
	}

	return nil
}
