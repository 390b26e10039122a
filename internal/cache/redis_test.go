package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Requires Redis running on localhost:6379; skipped otherwise.
const testRedisAddr = "localhost:6379"

func setupRedisCache(t *testing.T) *RedisPageCache {
	t.Helper()

	client := redis.NewClient(&redis.Options{Addr: testRedisAddr})
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("Redis not available at %s: %v", testRedisAddr, err)
	}

	c := NewRedisPageCacheFromClient(client, "test:"+t.Name()+":")
	t.Cleanup(func() {
		_ = c.Invalidate(ctx, PathHome, PathRecommendations, ProductPath("lamp"))
		client.Close()
	})
	return c
}

func TestRedisPageCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := setupRedisCache(t)

	var got view
	found, err := c.Get(ctx, PathHome, &got)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, c.Set(ctx, PathHome, view{Title: "home", Count: 2}, time.Minute))
	found, err = c.Get(ctx, PathHome, &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, view{Title: "home", Count: 2}, got)
}

func TestRedisPageCacheInvalidate(t *testing.T) {
	ctx := context.Background()
	c := setupRedisCache(t)

	require.NoError(t, c.Set(ctx, ProductPath("lamp"), view{Title: "lamp"}, time.Minute))
	require.NoError(t, c.Set(ctx, PathRecommendations, view{Title: "recs"}, time.Minute))

	require.NoError(t, c.Invalidate(ctx, ProductPath("lamp")))

	var got view
	found, err := c.Get(ctx, ProductPath("lamp"), &got)
	require.NoError(t, err)
	assert.False(t, found)

	found, err = c.Get(ctx, PathRecommendations, &got)
	require.NoError(t, err)
	assert.True(t, found)
}

func TestRedisPageCacheSetIfCurrent(t *testing.T) {
	ctx := context.Background()
	c := setupRedisCache(t)

	gen := c.Generation(PathHome)
	require.NoError(t, c.Invalidate(ctx, PathHome))
	stored, err := c.SetIfCurrent(ctx, PathHome, view{Title: "stale"}, time.Minute, gen)
	require.NoError(t, err)
	assert.False(t, stored)

	var got view
	found, err := c.Get(ctx, PathHome, &got)
	require.NoError(t, err)
	assert.False(t, found)

	stored, err = c.SetIfCurrent(ctx, PathHome, view{Title: "fresh"}, time.Minute, c.Generation(PathHome))
	require.NoError(t, err)
	assert.True(t, stored)
}

func TestNewRedisPageCacheUnreachable(t *testing.T) {
	_, err := NewRedisPageCache(context.Background(), RedisOptions{Addr: "127.0.0.1:1"})
	assert.Error(t, err)
}
