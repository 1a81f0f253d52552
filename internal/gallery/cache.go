package gallery

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// PageCache stores raw recipe pages by link.
type PageCache interface {
	Get(ctx context.Context, link string) ([]byte, bool)
	Set(ctx context.Context, link string, page []byte)
}

type RedisCache struct {
	rdb *redis.Client
	ttl time.Duration
	log *zap.SugaredLogger
}

// NewRedisCache connects to addr. Redis is optional: when it cannot be
// reached a warning is logged and nil is returned, which disables caching.
func NewRedisCache(ctx context.Context, addr string, ttl time.Duration, sugar *zap.SugaredLogger) *RedisCache {
	if addr == "" {
		return nil
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		if sugar != nil {
			sugar.Warnw("redis ping failed; continuing without page cache", "error", err)
		}
		_ = rdb.Close()
		return nil
	}
	return &RedisCache{rdb: rdb, ttl: ttl, log: sugar}
}

func cacheKey(link string) string {
	return "recipe-page:" + link
}

func (c *RedisCache) Get(ctx context.Context, link string) ([]byte, bool) {
	b, err := c.rdb.Get(ctx, cacheKey(link)).Bytes()
	if err != nil {
		if err != redis.Nil && c.log != nil {
			c.log.Warnw("page cache read failed", "link", link, "error", err)
		}
		return nil, false
	}
	return b, true
}

func (c *RedisCache) Set(ctx context.Context, link string, page []byte) {
	if err := c.rdb.Set(ctx, cacheKey(link), page, c.ttl).Err(); err != nil && c.log != nil {
		c.log.Warnw("page cache write failed", "link", link, "error", err)
	}
}

func (c *RedisCache) Close() error {
	return c.rdb.Close()
}
