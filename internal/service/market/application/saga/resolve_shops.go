package saga

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// ResolveShopsHandler 只挑出本单实际涉及的店铺，即订单行商品在目录中挂靠的店铺。
type ResolveShopsHandler struct {
	NextHandler
}

func (h *ResolveShopsHandler) Handle(orderCtx *OrderContext) error {
	ctx, span := orderCtx.Tracer.Start(orderCtx.Ctx, "saga.ResolveShops")
	defer span.End()

	var shopIDs []string
	seen := make(map[string]bool)
	for _, item := range orderCtx.Draft.Items {
		p := orderCtx.Catalog[item.ProductID]
		if p == nil || p.ShopID == "" || seen[p.ShopID] {
			continue
		}
		seen[p.ShopID] = true
		shopIDs = append(shopIDs, p.ShopID)
	}

	shops, err := orderCtx.Shops.FindByIDs(ctx, shopIDs)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "shop lookup failed")
		return err
	}
	orderCtx.RelevantShops = shops

	span.SetAttributes(attribute.Int("order.shops", len(shops)))
	return h.executeNext(orderCtx)
}
