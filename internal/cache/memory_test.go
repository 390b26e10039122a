package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type view struct {
	Title string `json:"title"`
	Count int    `json:"count"`
}

func TestMemoryPageCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryPageCache()

	var got view
	found, err := c.Get(ctx, PathHome, &got)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, c.Set(ctx, PathHome, view{Title: "home", Count: 3}, time.Minute))

	found, err = c.Get(ctx, PathHome, &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, view{Title: "home", Count: 3}, got)
}

func TestMemoryPageCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryPageCache()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, ProductPath("lamp"), view{Title: "lamp"}, time.Minute))

	var got view
	now = now.Add(59 * time.Second)
	found, err := c.Get(ctx, ProductPath("lamp"), &got)
	require.NoError(t, err)
	assert.True(t, found)

	now = now.Add(time.Second)
	found, err = c.Get(ctx, ProductPath("lamp"), &got)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, 0, c.Len())
}

func TestMemoryPageCacheInvalidate(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryPageCache()

	require.NoError(t, c.Set(ctx, PathHome, view{Title: "home"}, 0))
	require.NoError(t, c.Set(ctx, ProductPath("lamp"), view{Title: "lamp"}, 0))
	require.NoError(t, c.Set(ctx, PathRecommendations, view{Title: "recs"}, 0))

	require.NoError(t, c.Invalidate(ctx, ProductPath("lamp"), PathHome, ProductPath("missing")))

	var got view
	found, _ := c.Get(ctx, PathHome, &got)
	assert.False(t, found)
	found, _ = c.Get(ctx, ProductPath("lamp"), &got)
	assert.False(t, found)
	found, _ = c.Get(ctx, PathRecommendations, &got)
	assert.True(t, found)
}

func TestMemoryPageCacheSetIfCurrent(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryPageCache()

	gen := c.Generation(PathRecommendations)
	stored, err := c.SetIfCurrent(ctx, PathRecommendations, view{Title: "fresh"}, time.Minute, gen)
	require.NoError(t, err)
	assert.True(t, stored)

	// A view loaded before an invalidation is not written back.
	gen = c.Generation(PathRecommendations)
	require.NoError(t, c.Invalidate(ctx, PathRecommendations))
	stored, err = c.SetIfCurrent(ctx, PathRecommendations, view{Title: "stale"}, time.Minute, gen)
	require.NoError(t, err)
	assert.False(t, stored)
	assert.Equal(t, 0, c.Len())

	assert.Equal(t, gen+1, c.Generation(PathRecommendations))
	assert.Zero(t, c.Generation(PathHome))
}

func TestProductPath(t *testing.T) {
	assert.Equal(t, "/products/smart-home-hub", ProductPath("smart-home-hub"))
}
