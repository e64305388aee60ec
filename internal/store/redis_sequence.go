package store

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/serroba/shortlink/internal/shortlink"
)

// RedisSequence implements shortlink.Sequence with a Redis INCR counter,
// giving every service instance the same serialized source of truth.
type RedisSequence struct {
	client *redis.Client
	key    string
}

// NewRedisSequence creates a Redis-backed sequence.
func NewRedisSequence(client *redis.Client) *RedisSequence {
	return &RedisSequence{
		client: client,
		key:    "link:seq",
	}
}

func (s *RedisSequence) Next(ctx context.Context) (uint64, error) {
	n, err := s.client.Incr(ctx, s.key).Result()
	if err != nil {
		return 0, fmt.Errorf("advance sequence: %w", err)
	}

	return uint64(n), nil
}

// Compile-time check.
var _ shortlink.Sequence = (*RedisSequence)(nil)
