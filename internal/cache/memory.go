package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// MemoryPageCache is an in-process PageCache, used when no Redis address is
// configured and in tests. Values are stored as JSON so callers get the same
// copy semantics as with Redis.
type MemoryPageCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
	gens    generations
}

// NewMemoryPageCache creates an empty in-process cache.
func NewMemoryPageCache() *MemoryPageCache {
	return &MemoryPageCache{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (c *MemoryPageCache) Get(_ context.Context, path string, dest any) (bool, error) {
	c.mu.RLock()
	entry, ok := c.entries[path]
	c.mu.RUnlock()

	if !ok {
		return false, nil
	}
	if !entry.expiresAt.IsZero() && !c.now().Before(entry.expiresAt) {
		c.mu.Lock()
		if cur, ok := c.entries[path]; ok && cur.expiresAt.Equal(entry.expiresAt) {
			delete(c.entries, path)
		}
		c.mu.Unlock()
		return false, nil
	}
	if err := json.Unmarshal(entry.data, dest); err != nil {
		return false, fmt.Errorf("cache unmarshal error: %w", err)
	}
	return true, nil
}

func (c *MemoryPageCache) Set(_ context.Context, path string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal error: %w", err)
	}
	entry := memoryEntry{data: data}
	if ttl > 0 {
		entry.expiresAt = c.now().Add(ttl)
	}

	c.mu.Lock()
	c.entries[path] = entry
	c.mu.Unlock()
	return nil
}

func (c *MemoryPageCache) Generation(path string) uint64 {
	return c.gens.current(path)
}

func (c *MemoryPageCache) SetIfCurrent(ctx context.Context, path string, value any, ttl time.Duration, gen uint64) (bool, error) {
	return c.gens.guard(path, gen, func() error {
		return c.Set(ctx, path, value, ttl)
	})
}

func (c *MemoryPageCache) Invalidate(_ context.Context, paths ...string) error {
	c.gens.bump(paths...)
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, path := range paths {
		delete(c.entries, path)
	}
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (c *MemoryPageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *MemoryPageCache) Ping(context.Context) error { return nil }

func (c *MemoryPageCache) Close() error { return nil }
