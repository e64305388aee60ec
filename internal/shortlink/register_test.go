package shortlink_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/serroba/shortlink/internal/shortlink"
	"github.com/serroba/shortlink/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testURL = "https://example.com/very/long/path"

// stubAllocator returns queued codes in order, repeating the last one.
type stubAllocator struct {
	mu    sync.Mutex
	codes []shortlink.Code
	calls int
}

func (a *stubAllocator) Allocate(_ context.Context) (shortlink.Code, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	idx := a.calls
	if idx >= len(a.codes) {
		idx = len(a.codes) - 1
	}

	a.calls++

	return a.codes[idx], nil
}

// failingRegistry fails every operation with the configured error.
type failingRegistry struct {
	err error
}

func (f *failingRegistry) Insert(context.Context, *shortlink.ShortLink) error { return f.err }

func (f *failingRegistry) GetByCode(context.Context, shortlink.Code) (*shortlink.ShortLink, error) {
	return nil, f.err
}

func (f *failingRegistry) GetByOwnerAndTarget(context.Context, shortlink.OwnerID, string) (*shortlink.ShortLink, error) {
	return nil, f.err
}

func (f *failingRegistry) ListByOwner(context.Context, shortlink.OwnerID) ([]*shortlink.ShortLink, error) {
	return nil, f.err
}

func (f *failingRegistry) IncrementClicks(context.Context, shortlink.Code) error { return f.err }

func newService(registry shortlink.Registry) *shortlink.RegistrationService {
	allocator, _ := shortlink.NewRandomAllocator(7)

	return shortlink.NewRegistrationService(registry, allocator, zap.NewNop())
}

func TestRegister(t *testing.T) {
	t.Run("registers a valid url", func(t *testing.T) {
		registry := store.NewMemoryRegistry()
		service := newService(registry)

		link, err := service.Register(context.Background(), testURL, "owner-1", shortlink.ModeMint)

		require.NoError(t, err)
		assert.NotEmpty(t, link.Code)
		assert.Equal(t, testURL, link.TargetURL)
		assert.Equal(t, shortlink.OwnerID("owner-1"), link.OwnerID)
		assert.Zero(t, link.ClickCount)
		assert.False(t, link.CreatedAt.IsZero())
	})

	t.Run("round trip: registered code resolves to the target", func(t *testing.T) {
		registry := store.NewMemoryRegistry()
		service := newService(registry)

		link, err := service.Register(context.Background(), testURL, "owner-1", shortlink.ModeMint)
		require.NoError(t, err)

		got, err := registry.GetByCode(context.Background(), link.Code)

		require.NoError(t, err)
		assert.Equal(t, testURL, got.TargetURL)
	})

	t.Run("rejects malformed url before touching storage", func(t *testing.T) {
		registry := store.NewMemoryRegistry()
		service := newService(registry)

		link, err := service.Register(context.Background(), "not a url", "owner-1", shortlink.ModeMint)

		assert.Nil(t, link)

		var validationErr *shortlink.ValidationError
		require.ErrorAs(t, err, &validationErr)

		// No allocation was consumed and nothing was stored.
		links, _ := registry.ListByOwner(context.Background(), "owner-1")
		assert.Empty(t, links)
	})

	t.Run("codes are unique under repeated registration", func(t *testing.T) {
		registry := store.NewMemoryRegistry()
		service := newService(registry)

		seen := make(map[shortlink.Code]struct{})

		for range 200 {
			link, err := service.Register(context.Background(), testURL, "owner-1", shortlink.ModeMint)
			require.NoError(t, err)

			_, dup := seen[link.Code]
			require.False(t, dup, "duplicate code %s", link.Code)

			seen[link.Code] = struct{}{}
		}
	})

	t.Run("codes are unique under concurrent registration", func(t *testing.T) {
		registry := store.NewMemoryRegistry()
		service := newService(registry)

		const workers = 50

		var wg sync.WaitGroup

		codes := make(chan shortlink.Code, workers)

		for range workers {
			wg.Add(1)

			go func() {
				defer wg.Done()

				link, err := service.Register(context.Background(), testURL, "owner-1", shortlink.ModeMint)
				if assert.NoError(t, err) {
					codes <- link.Code
				}
			}()
		}

		wg.Wait()
		close(codes)

		seen := make(map[shortlink.Code]struct{})
		for code := range codes {
			_, dup := seen[code]
			assert.False(t, dup, "duplicate code %s", code)

			seen[code] = struct{}{}
		}
	})

	t.Run("retries allocation on collision", func(t *testing.T) {
		registry := store.NewMemoryRegistry()
		require.NoError(t, registry.Insert(context.Background(), &shortlink.ShortLink{
			Code:      "taken",
			TargetURL: "https://example.com/other",
			OwnerID:   "owner-2",
		}))

		allocator := &stubAllocator{codes: []shortlink.Code{"taken", "fresh"}}
		service := shortlink.NewRegistrationService(registry, allocator, zap.NewNop())

		link, err := service.Register(context.Background(), testURL, "owner-1", shortlink.ModeMint)

		require.NoError(t, err)
		assert.Equal(t, shortlink.Code("fresh"), link.Code)
		assert.Equal(t, 2, allocator.calls)
	})

	t.Run("fails with ErrAllocationExhausted when retries run out", func(t *testing.T) {
		registry := store.NewMemoryRegistry()
		require.NoError(t, registry.Insert(context.Background(), &shortlink.ShortLink{
			Code:      "taken",
			TargetURL: "https://example.com/other",
			OwnerID:   "owner-2",
		}))

		allocator := &stubAllocator{codes: []shortlink.Code{"taken"}}
		service := shortlink.NewRegistrationService(registry, allocator, zap.NewNop())

		link, err := service.Register(context.Background(), testURL, "owner-1", shortlink.ModeMint)

		assert.Nil(t, link)
		assert.ErrorIs(t, err, shortlink.ErrAllocationExhausted)
	})

	t.Run("propagates storage failures", func(t *testing.T) {
		service := newService(&failingRegistry{err: errors.New("storage down")})

		link, err := service.Register(context.Background(), testURL, "owner-1", shortlink.ModeMint)

		assert.Nil(t, link)
		assert.Error(t, err)
		assert.NotErrorIs(t, err, shortlink.ErrAllocationExhausted)
	})
}

func TestRegisterReuse(t *testing.T) {
	t.Run("returns the existing link for the same owner and url", func(t *testing.T) {
		registry := store.NewMemoryRegistry()
		service := newService(registry)

		first, err := service.Register(context.Background(), testURL, "owner-1", shortlink.ModeReuse)
		require.NoError(t, err)

		second, err := service.Register(context.Background(), testURL, "owner-1", shortlink.ModeReuse)

		require.NoError(t, err)
		assert.Equal(t, first.Code, second.Code)
	})

	t.Run("different owners never share a link", func(t *testing.T) {
		registry := store.NewMemoryRegistry()
		service := newService(registry)

		first, err := service.Register(context.Background(), testURL, "owner-1", shortlink.ModeReuse)
		require.NoError(t, err)

		second, err := service.Register(context.Background(), testURL, "owner-2", shortlink.ModeReuse)

		require.NoError(t, err)
		assert.NotEqual(t, first.Code, second.Code)
	})

	t.Run("mint mode keeps issuing fresh codes for the same url", func(t *testing.T) {
		registry := store.NewMemoryRegistry()
		service := newService(registry)

		first, err := service.Register(context.Background(), testURL, "owner-1", shortlink.ModeMint)
		require.NoError(t, err)

		second, err := service.Register(context.Background(), testURL, "owner-1", shortlink.ModeMint)

		require.NoError(t, err)
		assert.NotEqual(t, first.Code, second.Code)
	})
}
