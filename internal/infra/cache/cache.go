package cache

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache 本地狀態槽位的最小操作集合
type Cache interface {
	Ping(ctx context.Context) error
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error

	// Hash 相關操作
	HSet(ctx context.Context, key string, values map[string]any) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
}

type RedisCache struct {
	client *redis.Client
	prefix string
}

var _ Cache = (*RedisCache)(nil)

func NewRedisCache(redisClient *redis.Client, prefix string) *RedisCache {
	return &RedisCache{
		client: redisClient,
		prefix: prefix,
	}
}

func (r *RedisCache) prefixKey(key string) string {
	if r.prefix == "" {
		return key
	}
	var builder strings.Builder
	builder.Grow(len(r.prefix) + 1 + len(key))
	builder.WriteString(r.prefix)
	builder.WriteString(":")
	builder.WriteString(key)
	return builder.String()
}

func (r *RedisCache) Ping(ctx context.Context) error {
	return wrapError("ping", "", r.client.Ping(ctx).Err())
}

// Get 錯誤:
//   - ErrCacheMiss: key 不存在
//   - *CacheError: 連線或逾時
func (r *RedisCache) Get(ctx context.Context, key string) (string, error) {
	key = r.prefixKey(key)
	v, err := r.client.Get(ctx, key).Result()
	if err != nil {
		return "", wrapError("get", key, err)
	}
	return v, nil
}

func (r *RedisCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	key = r.prefixKey(key)
	return wrapError("set", key, r.client.Set(ctx, key, value, ttl).Err())
}

func (r *RedisCache) Delete(ctx context.Context, keys ...string) error {
	prefixed := make([]string, len(keys))
	for i, key := range keys {
		prefixed[i] = r.prefixKey(key)
	}
	return wrapError("del", strings.Join(prefixed, ","), r.client.Del(ctx, prefixed...).Err())
}

func (r *RedisCache) HSet(ctx context.Context, key string, values map[string]any) error {
	key = r.prefixKey(key)
	return wrapError("hset", key, r.client.HSet(ctx, key, values).Err())
}

// HGetAll 不存在時回傳 ErrCacheMiss 而非空 map
func (r *RedisCache) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	key = r.prefixKey(key)
	v, err := r.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, wrapError("hgetall", key, err)
	}
	if len(v) == 0 {
		return nil, wrapError("hgetall", key, redis.Nil)
	}
	return v, nil
}
