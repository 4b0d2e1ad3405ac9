package redis

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const LinkTokenPrefix = "auth:magiclink:"

var ErrLinkTokenInvalid = errors.New("link token invalid or used")

// LinkTokenRepository 一次性登录令牌
type LinkTokenRepository struct {
	Client *redis.Client
}

func (r *LinkTokenRepository) Save(ctx context.Context, token string, userID uint64, ttl time.Duration) error {
	if err := r.Client.Set(ctx, LinkTokenPrefix+token, userID, ttl).Err(); err != nil {
		return ErrRedisUnavailable
	}
	return nil
}

// Redeem GETDEL 保证只能兑换一次
func (r *LinkTokenRepository) Redeem(ctx context.Context, token string) (uint64, error) {
	val, err := r.Client.GetDel(ctx, LinkTokenPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrLinkTokenInvalid
	}
	if err != nil {
		return 0, ErrRedisUnavailable
	}
	id, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		return 0, ErrLinkTokenInvalid
	}
	return id, nil
}
