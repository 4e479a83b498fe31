package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/signet-labs/signet/core"
	"github.com/signet-labs/signet/ports"
)

// RedisTokenStore is a Redis-backed revocation list shared across instances.
type RedisTokenStore struct {
	client *redis.Client
	prefix string
}

// NewRedisTokenStore creates a new Redis token store.
func NewRedisTokenStore(client *redis.Client) ports.TokenStore {
	return &RedisTokenStore{
		client: client,
		prefix: "signet:revoked:",
	}
}

// Revoke marks a JTI as revoked with the given TTL.
func (s *RedisTokenStore) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.prefix+jti, "1", ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", core.ErrStoreOperation, err)
	}
	return nil
}

// IsRevoked reports whether a JTI is currently revoked.
func (s *RedisTokenStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	val, err := s.client.Exists(ctx, s.prefix+jti).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", core.ErrStoreOperation, err)
	}
	return val > 0, nil
}
