package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const lockKeyPrefix = "lock:job"

// 只删除自己持有的锁
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
  return redis.call("del", KEYS[1])
else
  return 0
end`)

// DistLock 多实例部署时定时任务只在一个实例上执行
type DistLock struct {
	Client *redis.Client
}

func lockKey(name string) string {
	return lockKeyPrefix + ":" + name
}

func (l *DistLock) Acquire(ctx context.Context, name, token string, ttl time.Duration) (bool, error) {
	return l.Client.SetNX(ctx, lockKey(name), token, ttl).Result()
}

// Release 用lua保证原子性
func (l *DistLock) Release(ctx context.Context, name, token string) error {
	return releaseScript.Run(ctx, l.Client, []string{lockKey(name)}, token).Err()
}
