package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	OTPPrefix = "otp:whatsapp"

	// 两阶段键
	PendingSuffix   = "pending"
	ConfirmedSuffix = "confirmed"
	CooldownSuffix  = "cooldown"
)

var (
	ErrOTPNotFound         = errors.New("otp request not found")
	ErrCodePendingFailed   = errors.New("code pending failed")
	ErrCodeConfirmedFailed = errors.New("code confirmed failed")
)

// 只有 pending 值与 request_id 一致时才移动到 confirmed
var confirmScript = redis.NewScript(`
local val = redis.call("GET", KEYS[1])
if not val or val ~= ARGV[1] then
  return 0
end
redis.call("SET", KEYS[2], val, "PX", ARGV[2])
redis.call("DEL", KEYS[1])
return 1
`)

type OTPRepository struct {
	Client *redis.Client
}

func otpKey(suffix, phone string) string {
	return fmt.Sprintf("%s:%s:%s", OTPPrefix, suffix, phone)
}

// AcquireCooldown 冷却期内返回 false
func (r *OTPRepository) AcquireCooldown(ctx context.Context, phone string, ttl time.Duration) (bool, error) {
	ok, err := r.Client.SetNX(ctx, otpKey(CooldownSuffix, phone), 1, ttl).Result()
	if err != nil {
		return false, ErrRedisUnavailable
	}
	return ok, nil
}

// ReleaseCooldown 发送失败时释放，允许立即重试
func (r *OTPRepository) ReleaseCooldown(ctx context.Context, phone string) error {
	return r.Client.Del(ctx, otpKey(CooldownSuffix, phone)).Err()
}

// SavePending 把 request_id 绑定到手机号
func (r *OTPRepository) SavePending(ctx context.Context, phone, requestID string, ttl time.Duration) error {
	if err := r.Client.Set(ctx, otpKey(PendingSuffix, phone), requestID, ttl).Err(); err != nil {
		return ErrCodePendingFailed
	}
	return nil
}

func (r *OTPRepository) PendingRequest(ctx context.Context, phone string) (string, error) {
	val, err := r.Client.Get(ctx, otpKey(PendingSuffix, phone)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrOTPNotFound
	}
	if err != nil {
		return "", ErrRedisUnavailable
	}
	return val, nil
}

// MarkConfirmed pending → confirmed，同一个 request_id 只能成功一次
func (r *OTPRepository) MarkConfirmed(ctx context.Context, phone, requestID string, ttl time.Duration) error {
	keys := []string{otpKey(PendingSuffix, phone), otpKey(ConfirmedSuffix, phone)}
	ok, err := confirmScript.Run(ctx, r.Client, keys, requestID, ttl.Milliseconds()).Int()
	if err != nil {
		return ErrRedisUnavailable
	}
	if ok != 1 {
		return ErrCodeConfirmedFailed
	}
	return nil
}

// DeleteConfirmed 会话签发后清理（幂等）
func (r *OTPRepository) DeleteConfirmed(ctx context.Context, phone string) error {
	return r.Client.Del(ctx, otpKey(ConfirmedSuffix, phone)).Err()
}
