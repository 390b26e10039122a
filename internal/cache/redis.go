package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisPageCache is a PageCache backed by Redis.
type RedisPageCache struct {
	client *redis.Client
	prefix string
	gens   generations
}

// RedisOptions configures NewRedisPageCache.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// NewRedisPageCache connects to Redis and verifies the connection.
func NewRedisPageCache(ctx context.Context, opts RedisOptions) (*RedisPageCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return NewRedisPageCacheFromClient(client, opts.Prefix), nil
}

// NewRedisPageCacheFromClient wraps an existing client.
func NewRedisPageCacheFromClient(client *redis.Client, prefix string) *RedisPageCache {
	return &RedisPageCache{client: client, prefix: prefix + "page:"}
}

func (c *RedisPageCache) key(path string) string {
	return c.prefix + path
}

func (c *RedisPageCache) Get(ctx context.Context, path string, dest any) (bool, error) {
	data, err := c.client.Get(ctx, c.key(path)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("cache get error: %w", err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("cache unmarshal error: %w", err)
	}
	return true, nil
}

func (c *RedisPageCache) Set(ctx context.Context, path string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal error: %w", err)
	}
	if err := c.client.Set(ctx, c.key(path), data, ttl).Err(); err != nil {
		return fmt.Errorf("cache set error: %w", err)
	}
	return nil
}

func (c *RedisPageCache) Generation(path string) uint64 {
	return c.gens.current(path)
}

// SetIfCurrent guards against invalidations made by this process only;
// other instances sharing the Redis keys are not tracked.
func (c *RedisPageCache) SetIfCurrent(ctx context.Context, path string, value any, ttl time.Duration, gen uint64) (bool, error) {
	return c.gens.guard(path, gen, func() error {
		return c.Set(ctx, path, value, ttl)
	})
}

func (c *RedisPageCache) Invalidate(ctx context.Context, paths ...string) error {
	if len(paths) == 0 {
		return nil
	}
	c.gens.bump(paths...)
	keys := make([]string, 0, len(paths))
	for _, path := range paths {
		keys = append(keys, c.key(path))
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("cache delete error: %w", err)
	}
	return nil
}

func (c *RedisPageCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisPageCache) Close() error {
	return c.client.Close()
}
