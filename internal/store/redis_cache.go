package store

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/serroba/shortlink/internal/shortlink"
)

// RedisCacheRegistry decorates a Registry with a Redis read cache on the
// redirect hot path. Only the immutable fields of a link are cached; the
// click count always comes from the source of truth, and increments pass
// straight through so the counter never forks.
type RedisCacheRegistry struct {
	registry shortlink.Registry
	client   *redis.Client
	prefix   string
	ttl      time.Duration
}

// NewRedisCacheRegistry creates a caching decorator over registry.
func NewRedisCacheRegistry(
	registry shortlink.Registry, client *redis.Client, ttl time.Duration,
) *RedisCacheRegistry {
	return &RedisCacheRegistry{
		registry: registry,
		client:   client,
		prefix:   "link:",
		ttl:      ttl,
	}
}

// Insert writes through: the cache is populated after a successful commit, so
// the first redirect after registration skips the database.
func (r *RedisCacheRegistry) Insert(ctx context.Context, link *shortlink.ShortLink) error {
	if err := r.registry.Insert(ctx, link); err != nil {
		return err
	}

	r.cacheLink(ctx, link)

	return nil
}

func (r *RedisCacheRegistry) GetByCode(ctx context.Context, code shortlink.Code) (*shortlink.ShortLink, error) {
	if link, err := r.getFromCache(ctx, code); err == nil {
		return link, nil
	}

	link, err := r.registry.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	r.cacheLink(ctx, link)

	return link, nil
}

// GetByOwnerAndTarget is not cached; reuse lookups are rare compared to redirects.
func (r *RedisCacheRegistry) GetByOwnerAndTarget(
	ctx context.Context, owner shortlink.OwnerID, targetURL string,
) (*shortlink.ShortLink, error) {
	return r.registry.GetByOwnerAndTarget(ctx, owner, targetURL)
}

// ListByOwner always reads the source of truth so listings show fresh counters.
func (r *RedisCacheRegistry) ListByOwner(ctx context.Context, owner shortlink.OwnerID) ([]*shortlink.ShortLink, error) {
	return r.registry.ListByOwner(ctx, owner)
}

func (r *RedisCacheRegistry) IncrementClicks(ctx context.Context, code shortlink.Code) error {
	return r.registry.IncrementClicks(ctx, code)
}

func (r *RedisCacheRegistry) getFromCache(ctx context.Context, code shortlink.Code) (*shortlink.ShortLink, error) {
	result, err := r.client.HGetAll(ctx, r.prefix+string(code)).Result()
	if err != nil {
		return nil, err
	}

	if len(result) == 0 {
		return nil, shortlink.ErrNotFound
	}

	var createdAt time.Time

	if ts, ok := result["created_at"]; ok {
		if nanos, err := strconv.ParseInt(ts, 10, 64); err == nil {
			createdAt = time.Unix(0, nanos).UTC()
		}
	}

	return &shortlink.ShortLink{
		Code:      shortlink.Code(result["code"]),
		TargetURL: result["target_url"],
		OwnerID:   shortlink.OwnerID(result["owner_id"]),
		CreatedAt: createdAt,
	}, nil
}

func (r *RedisCacheRegistry) cacheLink(ctx context.Context, link *shortlink.ShortLink) {
	key := r.prefix + string(link.Code)

	pipe := r.client.Pipeline()
	pipe.HSet(ctx, key, map[string]interface{}{
		"code":       string(link.Code),
		"target_url": link.TargetURL,
		"owner_id":   string(link.OwnerID),
		"created_at": link.CreatedAt.UnixNano(),
	})

	if r.ttl > 0 {
		pipe.Expire(ctx, key, r.ttl)
	}

	// Cache population is best effort.
	_, _ = pipe.Exec(ctx)
}

// Compile-time check.
var _ shortlink.Registry = (*RedisCacheRegistry)(nil)
