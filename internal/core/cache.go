package core

import (
	"context"
	"time"
)

// Cache holds values of type T under string keys with a per-key TTL. It backs
// the metrics gauge counts; credentials and tokens are never cached.
type Cache[T any] interface {
	Get(ctx context.Context, key string) (T, error)
	Set(ctx context.Context, key string, value T, ttl time.Duration) error
	Delete(ctx context.Context, key string) error

	// GetWithFetch returns the cached value or calls fetch on a miss and
	// stores its result for ttl.
	GetWithFetch(
		ctx context.Context,
		key string,
		ttl time.Duration,
		fetch func(ctx context.Context, key string) (T, error),
	) (T, error)

	Health(ctx context.Context) error
	Close() error
}
