package clicks_test

import (
	"context"
	"sync"
	"testing"

	"github.com/serroba/shortlink/internal/clicks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryDeduper(t *testing.T) {
	t.Run("first marks an id exactly once", func(t *testing.T) {
		dedup := clicks.NewMemoryDeduper()

		first, err := dedup.First(context.Background(), "event-1")
		require.NoError(t, err)
		assert.True(t, first)

		first, err = dedup.First(context.Background(), "event-1")
		require.NoError(t, err)
		assert.False(t, first)
	})

	t.Run("ids are independent", func(t *testing.T) {
		dedup := clicks.NewMemoryDeduper()

		_, _ = dedup.First(context.Background(), "event-1")

		first, err := dedup.First(context.Background(), "event-2")

		require.NoError(t, err)
		assert.True(t, first)
	})

	t.Run("forget releases an id for a later first", func(t *testing.T) {
		dedup := clicks.NewMemoryDeduper()

		_, _ = dedup.First(context.Background(), "event-1")

		require.NoError(t, dedup.Forget(context.Background(), "event-1"))

		first, err := dedup.First(context.Background(), "event-1")
		require.NoError(t, err)
		assert.True(t, first)
	})

	t.Run("forget on an unknown id is a no-op", func(t *testing.T) {
		dedup := clicks.NewMemoryDeduper()

		assert.NoError(t, dedup.Forget(context.Background(), "never-seen"))
	})

	t.Run("concurrent callers get exactly one true per id", func(t *testing.T) {
		dedup := clicks.NewMemoryDeduper()

		const workers = 50

		var (
			wg     sync.WaitGroup
			mu     sync.Mutex
			firsts int
		)

		for range workers {
			wg.Add(1)

			go func() {
				defer wg.Done()

				first, err := dedup.First(context.Background(), "contested")
				assert.NoError(t, err)

				if first {
					mu.Lock()
					firsts++
					mu.Unlock()
				}
			}()
		}

		wg.Wait()

		assert.Equal(t, 1, firsts)
	})
}
