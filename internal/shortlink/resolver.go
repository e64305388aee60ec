package shortlink

import (
	"context"
	"fmt"
)

// AccessRecorder records one successful resolution of a link. Implementations
// must not block the caller on durability: the redirect response never waits
// for accounting.
type AccessRecorder func(ctx context.Context, link *ShortLink)

// Resolver is the read path: code in, target URL out, visit recorded on the side.
type Resolver struct {
	registry Registry
	record   AccessRecorder
}

// NewResolver creates a resolver. record may be nil to disable accounting.
func NewResolver(registry Registry, record AccessRecorder) *Resolver {
	return &Resolver{
		registry: registry,
		record:   record,
	}
}

// Resolve looks up code and returns the link. On a hit the visit is handed to
// the recorder before returning; ErrNotFound passes through as a normal result.
func (r *Resolver) Resolve(ctx context.Context, code Code) (*ShortLink, error) {
	link, err := r.registry.GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("resolve %q: %w", code, err)
	}

	if r.record != nil {
		r.record(ctx, link)
	}

	return link, nil
}
