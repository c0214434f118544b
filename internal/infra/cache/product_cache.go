package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

type ProductLoader func(ctx context.Context, id int64) (*model.Product, error)

// ProductCache is a cache-aside layer over product reads. Concurrent misses
// for one product are collapsed into a single load. Redis failures degrade to
// loading from the source.
type ProductCache struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
	group  singleflight.Group
	logger *zerolog.Logger
}

func NewProductCache(client redis.Cmdable, prefix string, ttl time.Duration, logger *zerolog.Logger) *ProductCache {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &ProductCache{
		client: client,
		prefix: prefix,
		ttl:    ttl,
		logger: logger,
	}
}

func (c *ProductCache) key(id int64) string {
	return fmt.Sprintf("%s:product:%d", c.prefix, id)
}

func (c *ProductCache) Get(ctx context.Context, id int64, load ProductLoader) (*model.Product, error) {
	key := c.key(id)

	data, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var product model.Product
		if jsonErr := json.Unmarshal(data, &product); jsonErr == nil {
			return &product, nil
		}
		c.logger.Warn().Str("key", key).Msg("drop undecodable product cache entry")
	case !errors.Is(err, redis.Nil):
		c.logger.Warn().Err(err).Str("key", key).Msg("product cache read failed")
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		product, err := load(ctx, id)
		if err != nil {
			return nil, err
		}
		if b, err := json.Marshal(product); err == nil {
			if err := c.client.Set(ctx, key, b, c.ttl).Err(); err != nil {
				c.logger.Warn().Err(err).Str("key", key).Msg("product cache write failed")
			}
		}
		return product, nil
	})
	if err != nil {
		return nil, err
	}

	// 共享結果, 回傳副本
	product := *v.(*model.Product)
	return &product, nil
}

func (c *ProductCache) Invalidate(ctx context.Context, id int64) error {
	return c.client.Del(ctx, c.key(id)).Err()
}
