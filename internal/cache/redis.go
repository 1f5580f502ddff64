package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisStore struct {
	client redis.UniversalClient
}

// NewRedisStore connects and pings once so misconfiguration fails at startup.
func NewRedisStore(ctx context.Context, addr, password string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return &RedisStore{client: client}, nil
}

func (c *RedisStore) Set(ctx context.Context, namespace, key string, value string, ttl time.Duration) error {
	return c.client.Set(ctx, fullKey(namespace, key), value, ttl).Err()
}

func (c *RedisStore) Get(ctx context.Context, namespace, key string) (string, error) {
	val, err := c.client.Get(ctx, fullKey(namespace, key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrMiss
	}
	return val, err
}

func (c *RedisStore) Delete(ctx context.Context, namespace, key string) error {
	return c.client.Del(ctx, fullKey(namespace, key)).Err()
}

func (c *RedisStore) TTL(ctx context.Context, namespace, key string) (time.Duration, error) {
	return c.client.TTL(ctx, fullKey(namespace, key)).Result()
}

func (c *RedisStore) IncrWithExpire(ctx context.Context, namespace, key string, window time.Duration) (int64, error) {
	countKey := fullKey(namespace, key)

	cnt, err := c.client.Incr(ctx, countKey).Result()
	if err != nil {
		return 0, err
	}
	if cnt == 1 {
		_ = c.client.Expire(ctx, countKey, window).Err()
	}
	return cnt, nil
}

func (c *RedisStore) Close() error {
	return c.client.Close()
}
