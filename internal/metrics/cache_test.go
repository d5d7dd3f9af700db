package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mepla/Enchilada/internal/cache"
	"github.com/mepla/Enchilada/internal/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestCacheWrapper_GetActiveTokensCount_CacheHit(t *testing.T) {
	ctx := context.Background()
	memCache := cache.NewMemoryCache[int64]()
	ctrl := gomock.NewController(t)
	// No expectations: any store call fails the test.
	mockStore := mocks.NewMockMetricsStore(ctrl)

	wrapper := NewCacheWrapper(mockStore, memCache)
	_ = memCache.Set(ctx, "tokens:active", 42, time.Minute)

	count, err := wrapper.GetActiveTokensCount(ctx, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(42), count)
}

func TestCacheWrapper_GetActiveTokensCount_CacheMiss(t *testing.T) {
	ctx := context.Background()
	memCache := cache.NewMemoryCache[int64]()
	ctrl := gomock.NewController(t)
	mockStore := mocks.NewMockMetricsStore(ctrl)

	fixed := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	mockStore.EXPECT().CountActiveTokens(gomock.Any(), fixed).Return(int64(100), nil).Times(1)

	wrapper := NewCacheWrapper(mockStore, memCache)
	wrapper.now = func() time.Time { return fixed }

	count, err := wrapper.GetActiveTokensCount(ctx, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(100), count)

	cached, err := memCache.Get(ctx, "tokens:active")
	require.NoError(t, err)
	assert.Equal(t, int64(100), cached)

	// Second call served from cache.
	count, err = wrapper.GetActiveTokensCount(ctx, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(100), count)
}

func TestCacheWrapper_UpdateGauges(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	mockStore := mocks.NewMockMetricsStore(ctrl)
	rec := mocks.NewMockRecorder(ctrl)

	mockStore.EXPECT().CountActiveTokens(gomock.Any(), gomock.Any()).Return(int64(5), nil)
	mockStore.EXPECT().CountUsers(gomock.Any()).Return(int64(0), errors.New("db down"))
	rec.EXPECT().SetActiveTokensCount(5)
	rec.EXPECT().RecordDatabaseQueryError("count_users")

	wrapper := NewCacheWrapper(mockStore, cache.NewMemoryCache[int64]())
	wrapper.UpdateGauges(ctx, rec, time.Minute)
}
