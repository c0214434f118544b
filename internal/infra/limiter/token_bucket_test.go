package limiter

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestBucket(t *testing.T, cfg Config) (*TokenBucket, *time.Time) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	now := time.Unix(1700000000, 0)
	bucket := NewTokenBucket(client, cfg)
	bucket.now = func() time.Time { return now }
	return bucket, &now
}

func TestTokenBucketCapacity(t *testing.T) {
	bucket, _ := newTestBucket(t, Config{Capacity: 3, RatePS: 1})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, err := bucket.Allow(ctx, "customer:42")
		require.NoError(t, err)
		require.True(t, allowed, "request %d should pass", i+1)
	}

	allowed, err := bucket.Allow(ctx, "customer:42")
	require.NoError(t, err)
	require.False(t, allowed)

	// 不同 key 各自計算
	allowed, err = bucket.Allow(ctx, "customer:43")
	require.NoError(t, err)
	require.True(t, allowed)
}

func TestTokenBucketRefill(t *testing.T) {
	bucket, now := newTestBucket(t, Config{Capacity: 2, RatePS: 2})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		allowed, err := bucket.Allow(ctx, "k")
		require.NoError(t, err)
		require.True(t, allowed)
	}
	allowed, err := bucket.Allow(ctx, "k")
	require.NoError(t, err)
	require.False(t, allowed)

	*now = now.Add(500 * time.Millisecond)
	allowed, err = bucket.Allow(ctx, "k")
	require.NoError(t, err)
	require.True(t, allowed)

	allowed, err = bucket.Allow(ctx, "k")
	require.NoError(t, err)
	require.False(t, allowed)

	// 補滿後不超過容量
	*now = now.Add(10 * time.Second)
	for i := 0; i < 2; i++ {
		allowed, err = bucket.Allow(ctx, "k")
		require.NoError(t, err)
		require.True(t, allowed)
	}
	allowed, err = bucket.Allow(ctx, "k")
	require.NoError(t, err)
	require.False(t, allowed)
}

func TestTokenBucketRedisDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { client.Close() })
	mr.Close()

	_, err := NewTokenBucket(client, Config{Capacity: 1, RatePS: 1}).Allow(context.Background(), "k")
	require.Error(t, err)
}
