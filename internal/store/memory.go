package store

import (
	"context"
	"sort"
	"sync"

	"github.com/serroba/shortlink/internal/shortlink"
)

// MemoryRegistry is an in-memory implementation of shortlink.Registry.
// Insert and IncrementClicks hold the registry lock, which gives the same
// atomicity the SQL store gets from its conditional statements.
type MemoryRegistry struct {
	mu    sync.RWMutex
	links map[shortlink.Code]*shortlink.ShortLink
}

// NewMemoryRegistry creates an empty in-memory registry.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{
		links: make(map[shortlink.Code]*shortlink.ShortLink),
	}
}

func (m *MemoryRegistry) Insert(_ context.Context, link *shortlink.ShortLink) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.links[link.Code]; ok {
		return shortlink.ErrCodeExists
	}

	stored := *link
	m.links[link.Code] = &stored

	return nil
}

func (m *MemoryRegistry) GetByCode(_ context.Context, code shortlink.Code) (*shortlink.ShortLink, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	link, ok := m.links[code]
	if !ok {
		return nil, shortlink.ErrNotFound
	}

	out := *link

	return &out, nil
}

func (m *MemoryRegistry) GetByOwnerAndTarget(
	_ context.Context, owner shortlink.OwnerID, targetURL string,
) (*shortlink.ShortLink, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	// Newest match wins, same as the SQL store's ORDER BY created_at DESC.
	var newest *shortlink.ShortLink

	for _, link := range m.links {
		if link.OwnerID != owner || link.TargetURL != targetURL {
			continue
		}

		if newest == nil || link.CreatedAt.After(newest.CreatedAt) {
			newest = link
		}
	}

	if newest == nil {
		return nil, shortlink.ErrNotFound
	}

	out := *newest

	return &out, nil
}

func (m *MemoryRegistry) ListByOwner(_ context.Context, owner shortlink.OwnerID) ([]*shortlink.ShortLink, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*shortlink.ShortLink

	for _, link := range m.links {
		if link.OwnerID == owner {
			cp := *link
			out = append(out, &cp)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	return out, nil
}

func (m *MemoryRegistry) IncrementClicks(_ context.Context, code shortlink.Code) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	link, ok := m.links[code]
	if !ok {
		return shortlink.ErrNotFound
	}

	link.ClickCount++

	return nil
}

// Compile-time check.
var _ shortlink.Registry = (*MemoryRegistry)(nil)
