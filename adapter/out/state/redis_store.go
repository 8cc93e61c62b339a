// Package state stores one-shot OAuth login state nonces in Redis.
package state

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// keyPrefix namespaces login state keys.
const keyPrefix = "login:state:"

// RedisStore implements out.LoginStateStore.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a login state store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Store saves the state nonce with a TTL.
func (s *RedisStore) Store(ctx context.Context, state string, ttl time.Duration) error {
	return s.client.Set(ctx, keyPrefix+state, "1", ttl).Err()
}

// Validate consumes the state nonce. An unknown or already-consumed state
// fails.
func (s *RedisStore) Validate(ctx context.Context, state string) error {
	deleted, err := s.client.Del(ctx, keyPrefix+state).Result()
	if err != nil {
		return fmt.Errorf("validate login state: %w", err)
	}
	if deleted == 0 {
		return fmt.Errorf("unknown or expired login state")
	}
	return nil
}
