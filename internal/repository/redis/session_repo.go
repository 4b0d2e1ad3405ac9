package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrTokenNotFound    = errors.New("token not found")
	ErrRedisUnavailable = errors.New("redis unavailable")
	ErrExtendFailed     = errors.New("token extend failed")
	ErrTokenDeleted     = errors.New("token delete failed")
)

const (
	AccessTokenPrefix  = "session:access"
	RefreshTokenPrefix = "session:refresh"
)

// SessionRepository 每个用户一组 access/refresh，重新登录会顶掉旧会话
type SessionRepository struct {
	Client *redis.Client
}

func accessKey(userID uint64) string  { return fmt.Sprintf("%s:%d", AccessTokenPrefix, userID) }
func refreshKey(userID uint64) string { return fmt.Sprintf("%s:%d", RefreshTokenPrefix, userID) }

func (r *SessionRepository) Save(ctx context.Context, userID uint64, access, refresh string, accessTTL, refreshTTL time.Duration) error {
	_, err := r.Client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, accessKey(userID), access, accessTTL)
		p.Set(ctx, refreshKey(userID), refresh, refreshTTL)
		return nil
	})
	if err != nil {
		return ErrRedisUnavailable
	}
	return nil
}

func (r *SessionRepository) GetAccess(ctx context.Context, userID uint64) (string, error) {
	return r.get(ctx, accessKey(userID))
}

func (r *SessionRepository) GetRefresh(ctx context.Context, userID uint64) (string, error) {
	return r.get(ctx, refreshKey(userID))
}

func (r *SessionRepository) get(ctx context.Context, key string) (string, error) {
	token, err := r.Client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrTokenNotFound
	}
	if err != nil {
		return "", ErrRedisUnavailable
	}
	return token, nil
}

// Extend 活跃用户续期 access
func (r *SessionRepository) Extend(ctx context.Context, userID uint64, ttl time.Duration) error {
	if err := r.Client.Expire(ctx, accessKey(userID), ttl).Err(); err != nil {
		return ErrExtendFailed
	}
	return nil
}

func (r *SessionRepository) Delete(ctx context.Context, userID uint64) error {
	if err := r.Client.Del(ctx, accessKey(userID), refreshKey(userID)).Err(); err != nil {
		return ErrTokenDeleted
	}
	return nil
}
