package finance

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, time.Minute), srv
}

func TestFetchJSONPopulatesAndReuses(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	key, err := cache.BuildKey(ctx, keyMonthlyReports("realized"))
	require.NoError(t, err)

	loads := 0
	loader := func(context.Context) (interface{}, error) {
		loads++
		return map[string]float64{"revenue": 100}, nil
	}

	var first map[string]float64
	require.NoError(t, cache.FetchJSON(ctx, key, &first, loader))
	var second map[string]float64
	require.NoError(t, cache.FetchJSON(ctx, key, &second, loader))

	assert.Equal(t, 1, loads, "second fetch must come from cache")
	assert.Equal(t, first, second)
}

func TestBumpRotatesKeys(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	before, err := cache.BuildKey(ctx, keyDashboard("2024-04-15"))
	require.NoError(t, err)

	require.NoError(t, cache.Bump(ctx))

	after, err := cache.BuildKey(ctx, keyDashboard("2024-04-15"))
	require.NoError(t, err)
	assert.NotEqual(t, before, after, "a bump must change every cache key")
}

func TestNilCacheFallsThroughToLoader(t *testing.T) {
	var cache *Cache
	ctx := context.Background()

	key, err := cache.BuildKey(ctx, "finance", "monthly")
	require.NoError(t, err)

	var out []string
	err = cache.FetchJSON(ctx, key, &out, func(context.Context) (interface{}, error) {
		return []string{"2024-04"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-04"}, out)
	assert.NoError(t, cache.Bump(ctx))
}
