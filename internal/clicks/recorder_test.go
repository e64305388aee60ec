package clicks_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/serroba/shortlink/internal/clicks"
	"github.com/serroba/shortlink/internal/messaging"
	"github.com/serroba/shortlink/internal/shortlink"
	"github.com/serroba/shortlink/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func seedLink(t *testing.T, registry shortlink.Registry, code shortlink.Code) {
	t.Helper()

	require.NoError(t, registry.Insert(context.Background(), &shortlink.ShortLink{
		Code:      code,
		TargetURL: "https://example.com",
		OwnerID:   "owner-1",
		CreatedAt: time.Now(),
	}))
}

func clickCount(t *testing.T, registry shortlink.Registry, code shortlink.Code) int64 {
	t.Helper()

	link, err := registry.GetByCode(context.Background(), code)
	require.NoError(t, err)

	return link.ClickCount
}

func TestRecorder_HandleAccessed(t *testing.T) {
	t.Run("applies the increment once per event", func(t *testing.T) {
		registry := store.NewMemoryRegistry()
		seedLink(t, registry, "abc1234")

		recorder := clicks.NewRecorder(registry, clicks.NewMemoryDeduper(), zap.NewNop())
		event := &clicks.LinkAccessedEvent{Code: "abc1234", AccessedAt: time.Now()}

		require.NoError(t, recorder.HandleAccessed(context.Background(), "event-1", event))

		assert.Equal(t, int64(1), clickCount(t, registry, "abc1234"))
	})

	t.Run("replayed events never double count", func(t *testing.T) {
		registry := store.NewMemoryRegistry()
		seedLink(t, registry, "abc1234")

		recorder := clicks.NewRecorder(registry, clicks.NewMemoryDeduper(), zap.NewNop())
		event := &clicks.LinkAccessedEvent{Code: "abc1234", AccessedAt: time.Now()}

		for range 5 {
			require.NoError(t, recorder.HandleAccessed(context.Background(), "event-1", event))
		}

		assert.Equal(t, int64(1), clickCount(t, registry, "abc1234"))
	})

	t.Run("n distinct events move the counter by exactly n", func(t *testing.T) {
		registry := store.NewMemoryRegistry()
		seedLink(t, registry, "abc1234")

		recorder := clicks.NewRecorder(registry, clicks.NewMemoryDeduper(), zap.NewNop())

		const n = 100

		var wg sync.WaitGroup

		for range n {
			wg.Add(1)

			go func() {
				defer wg.Done()

				event := &clicks.LinkAccessedEvent{Code: "abc1234", AccessedAt: time.Now()}
				assert.NoError(t, recorder.HandleAccessed(context.Background(), uuid.NewString(), event))
			}()
		}

		wg.Wait()

		assert.Equal(t, int64(n), clickCount(t, registry, "abc1234"))
	})

	t.Run("drops events for unknown codes", func(t *testing.T) {
		registry := store.NewMemoryRegistry()
		recorder := clicks.NewRecorder(registry, clicks.NewMemoryDeduper(), zap.NewNop())

		event := &clicks.LinkAccessedEvent{Code: "missing", AccessedAt: time.Now()}

		// No error: redelivery cannot make an unknown code appear.
		assert.NoError(t, recorder.HandleAccessed(context.Background(), "event-1", event))
	})

	t.Run("returns storage errors for redelivery", func(t *testing.T) {
		recorder := clicks.NewRecorder(
			&failingRegistry{err: errors.New("storage down")},
			clicks.NewMemoryDeduper(),
			zap.NewNop(),
		)

		event := &clicks.LinkAccessedEvent{Code: "abc1234", AccessedAt: time.Now()}

		assert.Error(t, recorder.HandleAccessed(context.Background(), "event-1", event))
	})

	t.Run("redelivery after a transient failure still counts the visit", func(t *testing.T) {
		registry := store.NewMemoryRegistry()
		seedLink(t, registry, "abc1234")

		flaky := &flakyRegistry{Registry: registry, failures: 1}
		recorder := clicks.NewRecorder(flaky, clicks.NewMemoryDeduper(), zap.NewNop())

		event := &clicks.LinkAccessedEvent{Code: "abc1234", AccessedAt: time.Now()}

		// First delivery fails in storage and is nacked.
		require.Error(t, recorder.HandleAccessed(context.Background(), "event-1", event))
		assert.Equal(t, int64(0), clickCount(t, registry, "abc1234"))

		// The redelivered event must not be treated as a duplicate.
		require.NoError(t, recorder.HandleAccessed(context.Background(), "event-1", event))
		assert.Equal(t, int64(1), clickCount(t, registry, "abc1234"))

		// A further replay is a real duplicate again.
		require.NoError(t, recorder.HandleAccessed(context.Background(), "event-1", event))
		assert.Equal(t, int64(1), clickCount(t, registry, "abc1234"))
	})
}

func TestNewAccessRecorder(t *testing.T) {
	t.Run("publishes an event with request metadata", func(t *testing.T) {
		var published []*clicks.LinkAccessedEvent

		publish := messaging.Publish[clicks.LinkAccessedEvent](func(event *clicks.LinkAccessedEvent) error {
			published = append(published, event)

			return nil
		})

		record := clicks.NewAccessRecorder(publish, func(context.Context) (string, string, string) {
			return "203.0.113.9", "test-agent", "https://referrer.example"
		}, zap.NewNop())

		record(context.Background(), &shortlink.ShortLink{Code: "abc1234", TargetURL: "https://example.com"})

		require.Len(t, published, 1)
		assert.Equal(t, "abc1234", published[0].Code)
		assert.Equal(t, "203.0.113.9", published[0].ClientIP)
		assert.Equal(t, "test-agent", published[0].UserAgent)
		assert.Equal(t, "https://referrer.example", published[0].Referrer)
		assert.False(t, published[0].AccessedAt.IsZero())
	})

	t.Run("publish failures are swallowed", func(t *testing.T) {
		publish := messaging.Publish[clicks.LinkAccessedEvent](func(*clicks.LinkAccessedEvent) error {
			return errors.New("publish error")
		})

		record := clicks.NewAccessRecorder(publish, nil, zap.NewNop())

		assert.NotPanics(t, func() {
			record(context.Background(), &shortlink.ShortLink{Code: "abc1234"})
		})
	})
}

// flakyRegistry fails the first n increments, then behaves like the embedded
// registry.
type flakyRegistry struct {
	shortlink.Registry
	failures int
}

func (f *flakyRegistry) IncrementClicks(ctx context.Context, code shortlink.Code) error {
	if f.failures > 0 {
		f.failures--

		return errors.New("storage down")
	}

	return f.Registry.IncrementClicks(ctx, code)
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
