package clicks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Deduper decides whether an event id has been applied before. First marks
// the id and reports true exactly once per id within the retention window.
// Forget removes the mark so a redelivery of the id gets applied after all;
// callers use it when the work behind a claimed id failed.
type Deduper interface {
	First(ctx context.Context, eventID string) (bool, error)
	Forget(ctx context.Context, eventID string) error
}

// RedisDeduper marks applied event ids with SET NX under a TTL. The TTL only
// needs to outlive the transport's redelivery horizon.
type RedisDeduper struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisDeduper creates a Redis-backed deduper.
func NewRedisDeduper(client *redis.Client, ttl time.Duration) *RedisDeduper {
	return &RedisDeduper{
		client: client,
		prefix: "clicks:applied:",
		ttl:    ttl,
	}
}

func (d *RedisDeduper) First(ctx context.Context, eventID string) (bool, error) {
	ok, err := d.client.SetNX(ctx, d.prefix+eventID, 1, d.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("mark event %s: %w", eventID, err)
	}

	return ok, nil
}

func (d *RedisDeduper) Forget(ctx context.Context, eventID string) error {
	if err := d.client.Del(ctx, d.prefix+eventID).Err(); err != nil {
		return fmt.Errorf("unmark event %s: %w", eventID, err)
	}

	return nil
}

// MemoryDeduper is an in-process Deduper for tests and single-node setups.
type MemoryDeduper struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewMemoryDeduper creates an in-memory deduper.
func NewMemoryDeduper() *MemoryDeduper {
	return &MemoryDeduper{seen: make(map[string]struct{})}
}

func (d *MemoryDeduper) First(_ context.Context, eventID string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[eventID]; ok {
		return false, nil
	}

	d.seen[eventID] = struct{}{}

	return true, nil
}

func (d *MemoryDeduper) Forget(_ context.Context, eventID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	delete(d.seen, eventID)

	return nil
}
