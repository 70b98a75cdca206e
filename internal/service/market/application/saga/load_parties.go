package saga

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"storefront/internal/service/market/domain"
)

// LoadPartiesHandler 加载顾客和订单行引用的商品，任一不存在即终止。
type LoadPartiesHandler struct {
	NextHandler
}

func (h *LoadPartiesHandler) Handle(orderCtx *OrderContext) error {
	ctx, span := orderCtx.Tracer.Start(orderCtx.Ctx, "saga.LoadParties")
	defer span.End()

	customer, err := orderCtx.Users.FindByID(ctx, orderCtx.Draft.CustomerID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "customer lookup failed")
		return err
	}
	orderCtx.Customer = customer

	ids := make([]string, 0, len(orderCtx.Draft.Items))
	for _, item := range orderCtx.Draft.Items {
		ids = append(ids, item.ProductID)
	}
	products, err := orderCtx.Products.FindByIDs(ctx, ids)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "product lookup failed")
		return err
	}
	orderCtx.Catalog = make(map[string]*domain.Product, len(products))
	for _, p := range products {
		orderCtx.Catalog[p.ID] = p
	}

	// 订单行的名称和品牌一律以商品目录为准，调用方传入的值被覆盖
	for i := range orderCtx.Draft.Items {
		item := &orderCtx.Draft.Items[i]
		p, ok := orderCtx.Catalog[item.ProductID]
		if !ok {
			span.SetAttributes(attribute.String("missing.product_id", item.ProductID))
			span.SetStatus(codes.Error, "product not found")
			return domain.ErrProductNotFound
		}
		item.Name = p.Name
		item.Brand = p.Brand
	}

	span.SetAttributes(attribute.Int("order.items", len(orderCtx.Draft.Items)))
	return h.executeNext(orderCtx)
}
