package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var (
	ErrLockNotAcquired = errors.New("lock is held by another owner")
	// ErrLockNotHeld the lock expired or was taken over before release
	ErrLockNotHeld = errors.New("lock is no longer held")
)

// 只刪除自己持有的鎖
const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`

type Handle interface {
	Release(ctx context.Context) error
}

type RedisLocker struct {
	client redis.Cmdable
	ttl    time.Duration
	prefix string
}

func NewRedisLocker(client redis.Cmdable, prefix string, ttl time.Duration) *RedisLocker {
	return &RedisLocker{
		client: client,
		ttl:    ttl,
		prefix: prefix,
	}
}

// Acquire takes the lock for name with SET NX PX. It never waits: a held lock
// returns ErrLockNotAcquired immediately.
func (l *RedisLocker) Acquire(ctx context.Context, name string) (Handle, error) {
	key := fmt.Sprintf("%s:%s", l.prefix, name)
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock %s: %w", key, err)
	}
	if !ok {
		return nil, ErrLockNotAcquired
	}
	return &redisLock{client: l.client, key: key, token: token}, nil
}

type redisLock struct {
	client redis.Cmdable
	key    string
	token  string
}

func (lk *redisLock) Release(ctx context.Context) error {
	res, err := lk.client.Eval(ctx, releaseScript, []string{lk.key}, lk.token).Int64()
	if err != nil {
		return fmt.Errorf("failed to release lock %s: %w", lk.key, err)
	}
	if res == 0 {
		return ErrLockNotHeld
	}
	return nil
}
