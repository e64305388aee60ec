package ratelimit

import (
	"context"
	"fmt"
	"time"
)

// Store records requests and reports how many fell inside the current window.
// Implementations prune expired entries on every call.
type Store interface {
	Record(ctx context.Context, key string, window time.Duration) (count int64, err error)
}

// LimitConfig is one window/ceiling pair.
type LimitConfig struct {
	Window time.Duration
	Max    int64
}

// Exceeded describes which limit a request tripped.
type Exceeded struct {
	Config LimitConfig
	Count  int64
}

func (e *Exceeded) Error() string {
	return fmt.Sprintf("rate limit exceeded: %d/%d requests in %s", e.Count, e.Config.Max, e.Config.Window)
}

// SlidingWindowLimiter enforces a set of sliding-window limits per client key.
type SlidingWindowLimiter struct {
	store Store
}

// NewSlidingWindowLimiter creates a limiter over the given store.
func NewSlidingWindowLimiter(store Store) *SlidingWindowLimiter {
	return &SlidingWindowLimiter{store: store}
}

// Allow records the request under every limit and reports whether all of them
// still hold. The returned *Exceeded is nil when the request is allowed.
func (l *SlidingWindowLimiter) Allow(
	ctx context.Context, clientKey string, limits []LimitConfig,
) (bool, *Exceeded, error) {
	for _, limit := range limits {
		// One counter per client and window so limits track independently.
		key := fmt.Sprintf("%s:%d", clientKey, limit.Window.Milliseconds())

		count, err := l.store.Record(ctx, key, limit.Window)
		if err != nil {
			return false, nil, err
		}

		if count > limit.Max {
			return false, &Exceeded{Config: limit, Count: count}, nil
		}
	}

	return true, nil, nil
}
