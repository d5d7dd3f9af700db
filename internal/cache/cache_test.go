package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache_GetSet(t *testing.T) {
	c := NewMemoryCache[int64]()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "active_tokens", 42, time.Minute))

	value, err := c.Get(ctx, "active_tokens")
	require.NoError(t, err)
	assert.Equal(t, int64(42), value)

	_, err = c.Get(ctx, "users")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryCache_Expiration(t *testing.T) {
	c := NewMemoryCache[int64]()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", 100, time.Minute))

	now = now.Add(59 * time.Second)
	value, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, int64(100), value)

	now = now.Add(time.Second)
	_, err = c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryCache_DeleteAndClose(t *testing.T) {
	c := NewMemoryCache[string]()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "a", "1", time.Minute))
	require.NoError(t, c.Set(ctx, "b", "2", time.Minute))

	require.NoError(t, c.Delete(ctx, "a"))
	_, err := c.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, c.Close())
	_, err = c.Get(ctx, "b")
	assert.ErrorIs(t, err, ErrCacheMiss)

	assert.NoError(t, c.Health(ctx))
}

func TestMemoryCache_GetWithFetch(t *testing.T) {
	ctx := context.Background()

	t.Run("miss populates", func(t *testing.T) {
		c := NewMemoryCache[int64]()
		calls := 0
		fetch := func(context.Context, string) (int64, error) {
			calls++
			return 7, nil
		}

		v, err := c.GetWithFetch(ctx, "users", time.Minute, fetch)
		require.NoError(t, err)
		assert.Equal(t, int64(7), v)

		v, err = c.GetWithFetch(ctx, "users", time.Minute, fetch)
		require.NoError(t, err)
		assert.Equal(t, int64(7), v)
		assert.Equal(t, 1, calls)
	})

	t.Run("fetch error is not cached", func(t *testing.T) {
		c := NewMemoryCache[int64]()
		boom := errors.New("db down")

		_, err := c.GetWithFetch(ctx, "users", time.Minute, func(context.Context, string) (int64, error) {
			return 0, boom
		})
		assert.ErrorIs(t, err, boom)

		_, err = c.Get(ctx, "users")
		assert.ErrorIs(t, err, ErrCacheMiss)
	})
}

func TestMemoryCache_Concurrent(t *testing.T) {
	c := NewMemoryCache[int64]()
	ctx := context.Background()

	var fetches atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = c.Set(ctx, "k", int64(i), time.Minute)
			_, _ = c.GetWithFetch(ctx, "other", time.Minute, func(context.Context, string) (int64, error) {
				fetches.Add(1)
				return 1, nil
			})
		}(i)
	}
	wg.Wait()

	_, err := c.Get(ctx, "k")
	assert.NoError(t, err)
	assert.GreaterOrEqual(t, fetches.Load(), int32(1))
}
