package metrics

import (
	"context"
	"log"
	"time"

	"github.com/mepla/Enchilada/internal/core"
)

// CacheWrapper provides read-through cached counts for the gauge updater so
// several instances sharing a Redis cache do not all hit the database.
type CacheWrapper struct {
	store core.MetricsStore
	cache core.Cache[int64]
	now   func() time.Time
}

func NewCacheWrapper(store core.MetricsStore, cache core.Cache[int64]) *CacheWrapper {
	return &CacheWrapper{store: store, cache: cache, now: time.Now}
}

// GetActiveTokensCount returns the number of unexpired tokens.
func (m *CacheWrapper) GetActiveTokensCount(ctx context.Context, ttl time.Duration) (int64, error) {
	return m.cache.GetWithFetch(ctx, "tokens:active", ttl,
		func(ctx context.Context, _ string) (int64, error) {
			return m.store.CountActiveTokens(ctx, m.now())
		},
	)
}

// GetUsersCount returns the number of registered users.
func (m *CacheWrapper) GetUsersCount(ctx context.Context, ttl time.Duration) (int64, error) {
	return m.cache.GetWithFetch(ctx, "users:total", ttl,
		func(ctx context.Context, _ string) (int64, error) {
			return m.store.CountUsers(ctx)
		},
	)
}

// UpdateGauges refreshes the gauge metrics. Query failures are counted and
// leave the previous gauge value in place.
func (m *CacheWrapper) UpdateGauges(ctx context.Context, rec Recorder, ttl time.Duration) {
	if count, err := m.GetActiveTokensCount(ctx, ttl); err != nil {
		log.Printf("[Metrics] Failed to count active tokens: %v", err)
		rec.RecordDatabaseQueryError("count_active_tokens")
	} else {
		rec.SetActiveTokensCount(int(count))
	}

	if count, err := m.GetUsersCount(ctx, ttl); err != nil {
		log.Printf("[Metrics] Failed to count users: %v", err)
		rec.RecordDatabaseQueryError("count_users")
	} else {
		rec.SetUsersCount(int(count))
	}
}
