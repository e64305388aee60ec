package shortlink

import "context"

// Registry is the source of truth for short links. All mutation goes through
// its atomic primitives; no other component keeps a persisted copy.
type Registry interface {
	// Insert stores a new link if and only if its code is free.
	// Returns ErrCodeExists when the code is already taken. Concurrent inserts
	// of the same code have exactly one winner.
	Insert(ctx context.Context, link *ShortLink) error

	// GetByCode returns the link for a code, or ErrNotFound.
	GetByCode(ctx context.Context, code Code) (*ShortLink, error)

	// GetByOwnerAndTarget returns an existing link for the owner and target URL,
	// or ErrNotFound. Used by reuse-mode registration.
	GetByOwnerAndTarget(ctx context.Context, owner OwnerID, targetURL string) (*ShortLink, error)

	// ListByOwner returns all links for an owner, most recent first.
	ListByOwner(ctx context.Context, owner OwnerID) ([]*ShortLink, error)

	// IncrementClicks atomically adds one to a link's click count.
	// Returns ErrNotFound for unknown codes; never loses concurrent increments.
	IncrementClicks(ctx context.Context, code Code) error
}
