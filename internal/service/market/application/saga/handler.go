package saga

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"

	"storefront/internal/service/market/domain"
)

// OrderContext 在下单责任链中传递上下文数据。
// 整条链运行在同一个数据库事务里，任何一步失败都会整体回滚，因此不再需要补偿函数。
type OrderContext struct {
	Ctx    context.Context
	Draft  *domain.OrderDraft
	Tracer trace.Tracer
	Now    time.Time

	Users    domain.UserRepository
	Products domain.ProductRepository
	Shops    domain.ShopRepository
	Orders   domain.OrderRepository

	// 以下字段由链上的处理器依次填充
	Customer      *domain.User
	Catalog       map[string]*domain.Product
	RelevantShops []*domain.Shop
	Quote         domain.Quote
	Order         *domain.Order
}

// ShopIDs 返回本单涉及的店铺 id。
func (c *OrderContext) ShopIDs() []string {
	ids := make([]string, 0, len(c.RelevantShops))
	for _, s := range c.RelevantShops {
		ids = append(ids, s.ID)
	}
	return ids
}

type Handler interface {
	SetNext(handler Handler) Handler
	Handle(orderCtx *OrderContext) error
}

type NextHandler struct {
	next Handler
}

func (h *NextHandler) SetNext(handler Handler) Handler {
	h.next = handler
	return handler
}

func (h *NextHandler) executeNext(orderCtx *OrderContext) error {
	if h.next != nil {
		return h.next.Handle(orderCtx)
	}
	return nil
}

// NewPlaceOrderChain 组装下单链：
// 加载顾客和商品 -> 确定涉及店铺 -> 计价 -> 落库 -> 忠诚度 -> 销量。
func NewPlaceOrderChain() Handler {
	chain := new(LoadPartiesHandler)
	chain.
		SetNext(new(ResolveShopsHandler)).
		SetNext(new(PricingHandler)).
		SetNext(new(CreateOrderHandler)).
		SetNext(new(LoyaltyHandler)).
		SetNext(new(SalesCounterHandler))
	return chain
}
