package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// 仓储接口位于领域层，由基础设施层实现。
// 所有实现都必须识别 ctx 中的事务（见 port.Transactor）。

type UserRepository interface {
	// Create 邮箱重复时返回 ErrEmailTaken。
	Create(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByIDs(ctx context.Context, ids []string) ([]*User, error)
	List(ctx context.Context) ([]*User, error)
	// Update 只持久化密码和角色。
	Update(ctx context.Context, user *User) error
	Delete(ctx context.Context, id string) error
	// DebitCoin 是条件扣款：写入时余额不足返回 ErrInsufficientBalance。
	DebitCoin(ctx context.Context, id string, amount decimal.Decimal, now time.Time) error
}

type ProductFilter struct {
	Brand      string
	OnSale     bool
	Stocked    bool
	TopSellers bool // 按 TotalSale 降序
	Limit      int
}

type ProductRepository interface {
	Create(ctx context.Context, product *Product) error
	FindByID(ctx context.Context, id string) (*Product, error)
	// FindByIDs 忽略不存在的 id，调用方自行比对。
	FindByIDs(ctx context.Context, ids []string) ([]*Product, error)
	List(ctx context.Context, filter ProductFilter) ([]*Product, error)
	RecordSale(ctx context.Context, id string, quantity int, value decimal.Decimal, now time.Time) error
	// DeleteByShop 删除店铺名下的全部商品，返回删除数量。
	DeleteByShop(ctx context.Context, shopID string, productIDs []string) (int64, error)
}

type ShopRepository interface {
	// Create 店主已有店铺返回 ErrShopExists，店名重复返回 ErrShopNameTaken。
	Create(ctx context.Context, shop *Shop) error
	FindByID(ctx context.Context, id string) (*Shop, error)
	FindByOwner(ctx context.Context, ownerID string) (*Shop, error)
	FindByName(ctx context.Context, name string) (*Shop, error)
	FindByIDs(ctx context.Context, ids []string) ([]*Shop, error)
	List(ctx context.Context) ([]*Shop, error)
	Update(ctx context.Context, shop *Shop) error
	Delete(ctx context.Context, id string) error
	AttachProduct(ctx context.Context, shopID, productID string) error
	// RecordCustomerOrder 忠诚度记录 upsert：存在则 +1，不存在则创建为 1。
	RecordCustomerOrder(ctx context.Context, shopID, customerID, name string) error
}

type CartRepository interface {
	FindByUser(ctx context.Context, userID string) (*Cart, error)
	Save(ctx context.Context, cart *Cart) error
}

type OrderFilter struct {
	CustomerID string
	Brand      string
	Status     OrderStatus
}

type OrderRepository interface {
	Create(ctx context.Context, order *Order) error
	FindByID(ctx context.Context, id string) (*Order, error)
	List(ctx context.Context, filter OrderFilter) ([]*Order, error)
	// MarkPaid 是条件更新：仅 unpaid 订单会被修改，否则返回 ErrOrderAlreadyPaid。
	MarkPaid(ctx context.Context, id string, now time.Time) error
	// CountByCustomerForBrand 统计每个顾客包含该品牌商品的订单数。
	CountByCustomerForBrand(ctx context.Context, brand string) (map[string]int, error)
}
