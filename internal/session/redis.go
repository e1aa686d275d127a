package session

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"moving-voice-agent/pkg/utils"
)

// DefaultTTL evicts abandoned sessions. Calls rarely exceed fifteen
// minutes; the TTL is refreshed on every Put.
const DefaultTTL = 2 * time.Hour

// Redis is the multi-process Store. Sessions are stored as JSON under a
// prefixed key so several instances can share one Redis.
type Redis[T any] struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedis[T any](client *redis.Client, prefix string, ttl time.Duration) *Redis[T] {
	if prefix == "" {
		prefix = "session:"
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Redis[T]{client: client, prefix: prefix, ttl: ttl}
}

func (s *Redis[T]) key(callID string) string { return s.prefix + callID }

func (s *Redis[T]) Get(ctx context.Context, callID string) (T, bool, error) {
	var v T
	found, err := utils.CacheGetJSON(ctx, s.client, s.key(callID), &v)
	return v, found, err
}

func (s *Redis[T]) Put(ctx context.Context, callID string, value T) error {
	return utils.CacheSetJSON(ctx, s.client, s.key(callID), value, s.ttl)
}

func (s *Redis[T]) Delete(ctx context.Context, callID string) error {
	return s.client.Del(ctx, s.key(callID)).Err()
}
