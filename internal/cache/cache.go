// Package cache stores rendered catalog views keyed by page path so they can
// be served without touching the store and invalidated on demand.
package cache

import (
	"context"
	"time"
)

// Page paths of the cached views.
const (
	PathHome            = "/"
	PathRecommendations = "/recommendations"
)

// ProductPath is the page path of a product detail view.
func ProductPath(slug string) string {
	return "/products/" + slug
}

// PageCache is a JSON view cache keyed by page path.
type PageCache interface {
	// Get loads the cached view into dest and reports whether it was found.
	Get(ctx context.Context, path string, dest any) (bool, error)
	// Set stores value for ttl.
	Set(ctx context.Context, path string, value any, ttl time.Duration) error
	// Invalidate drops the views at the given paths and advances their generation.
	Invalidate(ctx context.Context, paths ...string) error
	// Generation returns how often path has been invalidated by this process.
	Generation(path string) uint64
	// SetIfCurrent stores value only if path is still at generation gen and
	// reports whether it did.
	SetIfCurrent(ctx context.Context, path string, value any, ttl time.Duration, gen uint64) (bool, error)
	Ping(ctx context.Context) error
	Close() error
}
