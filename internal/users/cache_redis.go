package users

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client *redis.Client
	prefix string
}

func NewRedisCache(client *redis.Client, prefix string) *RedisCache {
	p := strings.TrimSpace(prefix)
	if p == "" {
		p = "userhub:cache:"
	}
	return &RedisCache{client: client, prefix: p}
}

func (c *RedisCache) keyPage(key string) string {
	return c.prefix + "users:list:" + key
}

func (c *RedisCache) GetPage(ctx context.Context, key string) (*CachedPage, bool, error) {
	val, err := c.client.Get(ctx, c.keyPage(key)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, false, nil
		}
		return nil, false, err
	}

	var page CachedPage
	if err := json.Unmarshal([]byte(val), &page); err != nil {
		return nil, false, err
	}
	return &page, true, nil
}

func (c *RedisCache) SetPage(ctx context.Context, key string, page *CachedPage, ttl time.Duration) error {
	payload, err := json.Marshal(page)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.keyPage(key), payload, ttl).Err()
}
