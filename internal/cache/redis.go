// Package cache provides a Redis read-through cache for feed and post reads.
// A nil *Cache is valid and caches nothing.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/emilythestrangee/forum/backend/internal/observability"
)

const (
	FeedKey       = "forum:feed"
	postKeyPrefix = "forum:post:%d"
)

func PostKey(postID int) string {
	return fmt.Sprintf(postKeyPrefix, postID)
}

type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New connects to addr, which is either host:port or a redis:// URL.
func New(ctx context.Context, addr string, ttl time.Duration) (*Cache, error) {
	var opts *redis.Options
	if strings.Contains(addr, "://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_URL %q: %w", addr, err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{Addr: addr}
	}

	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewWithClient(client, ttl), nil
}

func NewWithClient(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// Aside loads key into dest, or calls fetch (which must fill dest) on a miss
// and stores the result. Cache failures never fail the read.
func (c *Cache) Aside(ctx context.Context, key string, dest any, fetch func() error) error {
	if c == nil {
		return fetch()
	}

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		if jsonErr := json.Unmarshal(raw, dest); jsonErr == nil {
			observability.CacheResults.WithLabelValues("hit").Inc()
			return nil
		}
		observability.CacheResults.WithLabelValues("error").Inc()
	case errors.Is(err, redis.Nil):
		observability.CacheResults.WithLabelValues("miss").Inc()
	default:
		observability.CacheResults.WithLabelValues("error").Inc()
		observability.Logger.WarnContext(ctx, "cache read failed", "key", key, "error", err)
	}

	if err := fetch(); err != nil {
		return err
	}

	b, err := json.Marshal(dest)
	if err != nil {
		return nil
	}
	if err := c.client.Set(ctx, key, b, c.ttl).Err(); err != nil {
		observability.Logger.WarnContext(ctx, "cache write failed", "key", key, "error", err)
	}
	return nil
}

// Invalidate drops keys. Errors are logged only.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) {
	if c == nil || len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		observability.Logger.WarnContext(ctx, "cache invalidate failed", "keys", keys, "error", err)
	}
}

func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
