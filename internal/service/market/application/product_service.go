package application

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"storefront/internal/pkg/logger"
	"storefront/internal/service/market/domain"
	"storefront/internal/service/market/domain/port"
)

const bestSellerLimit = 20

type ProductApplicationService struct {
	tx       port.Transactor
	products domain.ProductRepository
	shops    domain.ShopRepository
	tracer   trace.Tracer
	now      func() time.Time
}

func NewProductApplicationService(tx port.Transactor, products domain.ProductRepository, shops domain.ShopRepository, tracer trace.Tracer) *ProductApplicationService {
	return &ProductApplicationService{tx: tx, products: products, shops: shops, tracer: tracer, now: time.Now}
}

// Add 新增商品。带 shopId 时商品挂到该店铺下，未填品牌时沿用店名。
func (s *ProductApplicationService) Add(ctx context.Context, req *AddProductRequest) (*ProductView, error) {
	ctx, span := s.tracer.Start(ctx, "app.AddProduct")
	defer span.End()

	var created *domain.Product
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		draft := req.toDomain()
		if draft.ShopID != "" {
			shop, err := s.shops.FindByID(ctx, draft.ShopID)
			if err != nil {
				return err
			}
			if strings.TrimSpace(draft.Brand) == "" {
				draft.Brand = shop.Name
			}
		}

		p, err := domain.NewProduct(draft, s.now().UTC())
		if err != nil {
			return err
		}
		if err := s.products.Create(ctx, p); err != nil {
			return err
		}
		if p.ShopID != "" {
			if err := s.shops.AttachProduct(ctx, p.ShopID, p.ID); err != nil {
				return err
			}
		}
		created = p
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to add product")
		return nil, err
	}

	span.SetAttributes(attribute.String("product.id", created.ID))
	logger.Ctx(ctx).Info().Str("product_id", created.ID).Str("shop_id", created.ShopID).Msg("product added")
	return toProductView(created), nil
}

func (s *ProductApplicationService) list(ctx context.Context, name string, filter domain.ProductFilter) ([]*ProductView, error) {
	ctx, span := s.tracer.Start(ctx, name)
	defer span.End()

	products, err := s.products.List(ctx, filter)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("product.count", len(products)))
	return toProductViews(products), nil
}

func (s *ProductApplicationService) All(ctx context.Context) ([]*ProductView, error) {
	return s.list(ctx, "app.AllProducts", domain.ProductFilter{})
}

func (s *ProductApplicationService) OnSale(ctx context.Context) ([]*ProductView, error) {
	return s.list(ctx, "app.OnSaleProducts", domain.ProductFilter{OnSale: true})
}

func (s *ProductApplicationService) Get(ctx context.Context, id string) (*ProductView, error) {
	ctx, span := s.tracer.Start(ctx, "app.GetProduct")
	defer span.End()

	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toProductView(p), nil
}

// StockedByShop 返回店铺（按店名即品牌）有货的商品。
func (s *ProductApplicationService) StockedByShop(ctx context.Context, shopName string) ([]*ProductView, error) {
	if strings.TrimSpace(shopName) == "" {
		return nil, domain.Invalidf("Shop name is required")
	}
	return s.list(ctx, "app.StockedProductsByShop", domain.ProductFilter{Brand: shopName, Stocked: true})
}

// BestSellersByShop 返回该品牌销量最高的商品。
func (s *ProductApplicationService) BestSellersByShop(ctx context.Context, brand string) ([]*ProductView, error) {
	if strings.TrimSpace(brand) == "" {
		return nil, domain.Invalidf("Brand is required")
	}
	return s.list(ctx, "app.BestSellersByShop", domain.ProductFilter{Brand: brand, TopSellers: true, Limit: bestSellerLimit})
}

func (s *ProductApplicationService) PlatformTotals(ctx context.Context) (*PlatformTotalsView, error) {
	ctx, span := s.tracer.Start(ctx, "app.PlatformTotals")
	defer span.End()

	products, err := s.products.List(ctx, domain.ProductFilter{})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	totals := domain.SumPlatformTotals(products)
	return &PlatformTotalsView{TotalSale: totals.TotalSale, TotalSaleValue: totals.TotalSaleValue}, nil
}
