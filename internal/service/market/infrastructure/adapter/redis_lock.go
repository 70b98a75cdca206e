package adapter

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"storefront/internal/pkg/redis"
	"storefront/internal/service/market/domain/port"
)

const (
	releaseLockScriptName = "release_lock"
	lockKeyPrefix         = "storefront:lock:"
	lockRetryInterval     = 50 * time.Millisecond
)

// RedisLocker 是 port.Locker 的 Redis 实现：SET NX PX 加锁，Lua 校验 token 后解锁。
type RedisLocker struct {
	redisClient *redis.Client
}

var _ port.Locker = (*RedisLocker)(nil)

// NewRedisLocker 在创建时加载解锁脚本。
func NewRedisLocker(redisClient *redis.Client) (*RedisLocker, error) {
	if err := redisClient.LoadScriptFromContent(releaseLockScriptName, releaseLockScript); err != nil {
		return nil, errors.Wrap(err, "load release lock script")
	}
	return &RedisLocker{redisClient: redisClient}, nil
}

func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, error) {
	lockKey := lockKeyPrefix + key
	token := uuid.NewString()

	ticker := time.NewTicker(lockRetryInterval)
	defer ticker.Stop()
	for {
		ok, err := l.redisClient.GetClient().SetNX(ctx, lockKey, token, ttl).Result()
		if err != nil {
			return nil, errors.Wrapf(err, "acquire lock %s", key)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, errors.Wrapf(ctx.Err(), "wait for lock %s", key)
		case <-ticker.C:
		}
	}

	release := func(ctx context.Context) error {
		_, err := l.redisClient.RunScript(ctx, releaseLockScriptName, []string{lockKey}, token)
		return errors.Wrapf(err, "release lock %s", key)
	}
	return release, nil
}

var releaseLockScript = `
-- KEYS[1]: 锁的 key
-- ARGV[1]: 加锁时写入的 token

-- 只删除自己持有的锁，防止锁过期后误删别人的锁
if redis.call('get', KEYS[1]) == ARGV[1] then
    return redis.call('del', KEYS[1])
end
return 0
`
