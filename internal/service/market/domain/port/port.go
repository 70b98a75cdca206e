package port

import (
	"context"
	"time"

	"storefront/internal/service/market/domain"
)

// Transactor 在一个数据库事务内执行 fn，fn 返回错误时全部回滚。
// fn 必须使用传入的 ctx 调用仓储。
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Locker 提供按 key 互斥的分布式锁。
type Locker interface {
	// Acquire 阻塞直到获得锁或 ctx 结束，返回释放函数。
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(ctx context.Context) error, err error)
}

// EventPublisher 投递订单领域事件。
type EventPublisher interface {
	PublishOrderPlaced(ctx context.Context, event domain.OrderPlaced) error
	PublishOrderPaid(ctx context.Context, event domain.OrderPaid) error
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	// Compare 不匹配时返回错误。
	Compare(hash, password string) error
}

type TokenIssuer interface {
	Issue(user *domain.User) (token string, expiresAt time.Time, err error)
}
