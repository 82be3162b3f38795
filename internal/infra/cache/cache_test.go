package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	client := GetRedisClient(addr)
	t.Cleanup(func() {
		require.NoError(t, CloseRedisClient(addr))
	})
	return NewRedisCache(client, "test_prefix"), mr
}

func TestGetRedisClientReusesInstance(t *testing.T) {
	mr := miniredis.RunT(t)
	a := GetRedisClient(mr.Addr(), WithDB(0), WithPoolSize(2))
	b := GetRedisClient(mr.Addr())
	require.Same(t, a, b)
	require.NoError(t, CloseRedisClient(mr.Addr()))
	require.NoError(t, CloseRedisClient(mr.Addr()))
}

func TestRedisCacheSetGet(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Ping(ctx))
	require.NoError(t, c.Set(ctx, "k", "hello", time.Minute))
	require.True(t, mr.Exists("test_prefix:k"))

	v, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, "hello", v)

	require.NoError(t, c.Delete(ctx, "k"))
	_, err = c.Get(ctx, "k")
	require.ErrorIs(t, err, ErrCacheMiss)
}

func TestRedisCacheHash(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	_, err := c.HGetAll(ctx, "h")
	require.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, c.HSet(ctx, "h", map[string]any{"a": "1", "b": "2"}))
	v, err := c.HGetAll(ctx, "h")
	require.NoError(t, err)
	require.Equal(t, map[string]string{"a": "1", "b": "2"}, v)
}

func TestRedisCacheConnectionError(t *testing.T) {
	c, mr := newTestCache(t)
	mr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := c.Get(ctx, "k")
	require.Error(t, err)
	var cacheErr *CacheError
	require.ErrorAs(t, err, &cacheErr)
	require.Equal(t, "get", cacheErr.Operation)
	require.NotErrorIs(t, err, ErrCacheMiss)
}
