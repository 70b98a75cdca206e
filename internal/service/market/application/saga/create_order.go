package saga

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"storefront/internal/service/market/domain"
)

// CreateOrderHandler 持久化订单，初始状态为 pending / unpaid。
type CreateOrderHandler struct {
	NextHandler
}

func (h *CreateOrderHandler) Handle(orderCtx *OrderContext) error {
	ctx, span := orderCtx.Tracer.Start(orderCtx.Ctx, "saga.CreateOrder")
	defer span.End()

	order := domain.NewOrder(orderCtx.Draft, orderCtx.Quote, orderCtx.Now)
	if err := orderCtx.Orders.Create(ctx, order); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to save order")
		return err
	}
	orderCtx.Order = order

	span.SetAttributes(attribute.String("order.id", order.ID))
	span.AddEvent("Order saved with pending status.")
	return h.executeNext(orderCtx)
}

// LoyaltyHandler 为顾客在每个涉及店铺的忠诚度记录 +1。
type LoyaltyHandler struct {
	NextHandler
}

func (h *LoyaltyHandler) Handle(orderCtx *OrderContext) error {
	ctx, span := orderCtx.Tracer.Start(orderCtx.Ctx, "saga.Loyalty")
	defer span.End()

	customer := orderCtx.Customer
	for _, shop := range orderCtx.RelevantShops {
		if err := orderCtx.Shops.RecordCustomerOrder(ctx, shop.ID, customer.ID, customer.Name); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to record loyalty")
			return err
		}
	}

	span.AddEvent("Loyalty records updated.")
	return h.executeNext(orderCtx)
}

// SalesCounterHandler 累加每个订单行对应商品的销量和销售额。
type SalesCounterHandler struct {
	NextHandler
}

func (h *SalesCounterHandler) Handle(orderCtx *OrderContext) error {
	ctx, span := orderCtx.Tracer.Start(orderCtx.Ctx, "saga.SalesCounter")
	defer span.End()

	for _, item := range orderCtx.Order.Items {
		if err := orderCtx.Products.RecordSale(ctx, item.ProductID, item.Quantity, item.LineTotal(), orderCtx.Now); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to record sale")
			return err
		}
	}

	span.AddEvent("Product sale counters updated.")
	return h.executeNext(orderCtx)
}
