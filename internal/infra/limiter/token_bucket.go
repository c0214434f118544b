package limiter

import (
	"context"
	"math"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisClient 介面定義, 只需要 Eval
type RedisClient interface {
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

type Config struct {
	Capacity int
	// RatePS is the number of tokens refilled per second.
	RatePS float64
	Prefix string
}

// tokens 可以是小數, 時間以毫秒計
const tokenBucketScript = `
local key = KEYS[1]
local capacity = tonumber(ARGV[1])
local rate = tonumber(ARGV[2])
local now = tonumber(ARGV[3])
local ttl = tonumber(ARGV[4])

local bucket = redis.call('HMGET', key, 'tokens', 'last_refill')
local tokens = tonumber(bucket[1])
local lastRefill = tonumber(bucket[2])

if tokens == nil then
	tokens = capacity
	lastRefill = now
end

local elapsed = math.max(0, now - lastRefill) / 1000
tokens = math.min(capacity, tokens + elapsed * rate)

local allowed = 0
if tokens >= 1 then
	tokens = tokens - 1
	allowed = 1
end

redis.call('HSET', key, 'tokens', tostring(tokens), 'last_refill', tostring(now))
redis.call('EXPIRE', key, ttl)
return allowed
`

// TokenBucket is a redis backed token bucket shared by every replica.
type TokenBucket struct {
	client RedisClient
	cfg    Config
	ttl    int64
	now    func() time.Time
}

func NewTokenBucket(client RedisClient, cfg Config) *TokenBucket {
	if cfg.Capacity <= 0 {
		cfg.Capacity = 1
	}
	if cfg.RatePS <= 0 {
		cfg.RatePS = 1
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "ratelimit"
	}

	// 桶從空到滿所需時間之後 key 就沒有意義了
	ttl := int64(math.Ceil(float64(cfg.Capacity)/cfg.RatePS)) + 1

	return &TokenBucket{
		client: client,
		cfg:    cfg,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Allow takes one token for key. Redis errors are returned to the caller,
// which decides whether to fail open.
func (b *TokenBucket) Allow(ctx context.Context, key string) (bool, error) {
	res, err := b.client.Eval(
		ctx,
		tokenBucketScript,
		[]string{b.cfg.Prefix + ":" + key},
		b.cfg.Capacity,
		b.cfg.RatePS,
		b.now().UnixMilli(),
		b.ttl,
	).Int64()
	if err != nil {
		return false, err
	}
	return res == 1, nil
}
