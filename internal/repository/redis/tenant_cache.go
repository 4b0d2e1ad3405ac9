package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"barriored/internal/model"

	"github.com/redis/go-redis/v9"
)

const TenantCachePrefix = "tenant:slug:"

var ErrCacheMiss = errors.New("cache miss")

// TenantCache slug → community，社区信息很少变化
type TenantCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func (c *TenantCache) Get(ctx context.Context, slug string) (*model.Community, error) {
	raw, err := c.Client.Get(ctx, TenantCachePrefix+slug).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, ErrRedisUnavailable
	}
	var community model.Community
	if err := json.Unmarshal(raw, &community); err != nil {
		return nil, ErrCacheMiss
	}
	return &community, nil
}

func (c *TenantCache) Set(ctx context.Context, community *model.Community) error {
	raw, err := json.Marshal(community)
	if err != nil {
		return err
	}
	ttl := c.TTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return c.Client.Set(ctx, TenantCachePrefix+community.Slug, raw, ttl).Err()
}

func (c *TenantCache) Invalidate(ctx context.Context, slug string) error {
	return c.Client.Del(ctx, TenantCachePrefix+slug).Err()
}
