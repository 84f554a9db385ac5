package token

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig configures the redis storage backend.
type RedisConfig struct {
	// Addr is the redis server address (host:port).
	Addr string

	// Password authenticates against the server. Optional.
	Password string

	// DB selects the logical database.
	DB int

	// Prefix is prepended to every key.
	// Default: "restpipe:"
	Prefix string

	// TTL bounds how long a stored pair survives. Zero keeps it until removed.
	TTL time.Duration

	// Client overrides connection settings with an existing client. The
	// caller keeps ownership: Close leaves it open.
	Client redis.UniversalClient
}

// RedisStorage keeps values in redis so several processes can share one
// credential set.
type RedisStorage struct {
	client redis.UniversalClient
	owned  bool
	prefix string
	ttl    time.Duration
}

// NewRedisStorage creates a redis-backed storage.
func NewRedisStorage(cfg RedisConfig) (*RedisStorage, error) {
	client, owned := cfg.Client, false
	if client == nil {
		if cfg.Addr == "" {
			return nil, ErrMissingAddr
		}
		owned = true
		client = redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		})
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "restpipe:"
	}

	return &RedisStorage{
		client: client,
		owned:  owned,
		prefix: cfg.Prefix,
		ttl:    cfg.TTL,
	}, nil
}

// Get returns the value stored under key.
func (s *RedisStorage) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.client.Get(ctx, s.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("token: redis get: %w", err)
	}
	return v, true, nil
}

// Set stores value under key.
func (s *RedisStorage) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.prefix+key, value, s.ttl).Err(); err != nil {
		return fmt.Errorf("token: redis set: %w", err)
	}
	return nil
}

// Remove deletes key. Idempotent.
func (s *RedisStorage) Remove(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("token: redis del: %w", err)
	}
	return nil
}

// Close releases the client if NewRedisStorage created it.
func (s *RedisStorage) Close() error {
	if !s.owned {
		return nil
	}
	return s.client.Close()
}

// Ensure RedisStorage implements Storage
var _ Storage = (*RedisStorage)(nil)
