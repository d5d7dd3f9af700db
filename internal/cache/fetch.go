package cache

import (
	"context"
	"time"

	"github.com/mepla/Enchilada/internal/core"
)

// readThrough is the plain cache-aside path shared by caches without
// stampede protection: Get, fall back to fetch, then Set.
func readThrough[T any](
	ctx context.Context,
	c core.Cache[T],
	key string,
	ttl time.Duration,
	fetch func(ctx context.Context, key string) (T, error),
) (T, error) {
	if value, err := c.Get(ctx, key); err == nil {
		return value, nil
	}

	value, err := fetch(ctx, key)
	if err != nil {
		var zero T
		return zero, err
	}

	_ = c.Set(ctx, key, value, ttl)
	return value, nil
}
