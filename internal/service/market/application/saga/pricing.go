package saga

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"storefront/internal/service/market/domain"
)

// PricingHandler 计算订单总价，平台折扣只累计本单涉及的店铺。
type PricingHandler struct {
	NextHandler
}

func (h *PricingHandler) Handle(orderCtx *OrderContext) error {
	_, span := orderCtx.Tracer.Start(orderCtx.Ctx, "saga.Pricing")
	defer span.End()

	draft := orderCtx.Draft
	quote, err := domain.QuoteOrder(draft.Items, draft.ShippingCost, draft.Discount, orderCtx.RelevantShops)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "pricing rejected")
		return err
	}
	orderCtx.Quote = quote

	span.SetAttributes(
		attribute.String("order.subtotal", quote.Subtotal.String()),
		attribute.String("order.discount", quote.Discount.String()),
		attribute.String("order.total", quote.Total.String()),
	)
	return h.executeNext(orderCtx)
}
