package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// RedisClient 介面定義
type RedisClient interface {
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

const bucketScript = `
local key = KEYS[1]
local capacity = tonumber(ARGV[1])
local rate = tonumber(ARGV[2])
local now = tonumber(ARGV[3])

local bucket = redis.call('HMGET', key, 'tokens', 'last_refill')
local currentTokens = tonumber(bucket[1])
local lastRefill = tonumber(bucket[2])

if currentTokens == nil then
	currentTokens = capacity
	lastRefill = now
end

local elapsedSeconds = (now - lastRefill) / 1000
currentTokens = math.min(capacity, currentTokens + elapsedSeconds * rate)

local allowed = 0
if currentTokens >= 1 then
	currentTokens = currentTokens - 1
	allowed = 1
end

redis.call('HSET', key, 'tokens', tostring(currentTokens), 'last_refill', tostring(now))
redis.call('EXPIRE', key, 60)
return allowed
`

// RedisBucket 以 redis 保存各 key 的 token bucket，多個實例共用額度
type RedisBucket struct {
	cfg    Config
	client RedisClient
	prefix string
	now    func() time.Time
}

var _ ILimiter = (*RedisBucket)(nil)

func NewRedisBucket(client RedisClient, cfg Config) *RedisBucket {
	return &RedisBucket{
		cfg:    cfg.orDefault(),
		client: client,
		prefix: "ratelimit:",
		now:    time.Now,
	}
}

// Allow redis 失敗時放行，不因限流元件故障擋住請求
func (r *RedisBucket) Allow(ctx context.Context, key string) bool {
	if key == "" {
		key = "global"
	}
	result, err := r.client.Eval(
		ctx,
		bucketScript,
		[]string{r.prefix + key},
		r.cfg.Capacity,
		r.cfg.RatePS,
		r.now().UnixMilli(),
	).Int64()
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("rate limit eval failed")
		return true
	}
	return result == 1
}
