package application

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"storefront/internal/pkg/logger"
	"storefront/internal/service/market/domain"
	"storefront/internal/service/market/domain/port"
)

type ShopApplicationService struct {
	tx       port.Transactor
	shops    domain.ShopRepository
	users    domain.UserRepository
	products domain.ProductRepository
	tracer   trace.Tracer
	now      func() time.Time
}

func NewShopApplicationService(tx port.Transactor, shops domain.ShopRepository, users domain.UserRepository, products domain.ProductRepository, tracer trace.Tracer) *ShopApplicationService {
	return &ShopApplicationService{tx: tx, shops: shops, users: users, products: products, tracer: tracer, now: time.Now}
}

// CheckShop 查询用户是否已开店。
func (s *ShopApplicationService) CheckShop(ctx context.Context, userID string) (*CheckShopResult, error) {
	ctx, span := s.tracer.Start(ctx, "app.CheckShop")
	defer span.End()

	if userID == "" {
		return nil, domain.Invalidf("User ID is required")
	}
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return nil, err
	}

	shop, err := s.shops.FindByOwner(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return &CheckShopResult{HasShop: false}, nil
	}
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return &CheckShopResult{HasShop: true, Shop: toShopView(shop)}, nil
}

// Create 为用户开店，每个用户最多一家。
func (s *ShopApplicationService) Create(ctx context.Context, req *CreateShopRequest) (*ShopView, error) {
	ctx, span := s.tracer.Start(ctx, "app.CreateShop")
	defer span.End()

	shop, err := domain.NewShop(req.UserID, req.Name, req.Description, domain.Location(req.Location), s.now().UTC())
	if err != nil {
		return nil, err
	}

	// 1. 店主必须存在
	if _, err := s.users.FindByID(ctx, req.UserID); err != nil {
		return nil, err
	}

	// 2. 已有店铺直接拒绝，唯一索引兜底并发开店
	if _, err := s.shops.FindByOwner(ctx, req.UserID); err == nil {
		return nil, domain.ErrShopExists
	} else if !errors.Is(err, domain.ErrNotFound) {
		span.RecordError(err)
		return nil, err
	}

	if err := s.shops.Create(ctx, shop); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create shop")
		return nil, err
	}

	span.SetAttributes(attribute.String("shop.id", shop.ID))
	logger.Ctx(ctx).Info().Str("shop_id", shop.ID).Str("owner_id", shop.OwnerID).Msg("shop created")
	return toShopView(shop), nil
}

func (s *ShopApplicationService) Edit(ctx context.Context, id string, req *EditShopRequest) (*ShopView, error) {
	ctx, span := s.tracer.Start(ctx, "app.EditShop")
	defer span.End()

	shop, err := s.shops.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := shop.Apply(req.toPatch(), s.now().UTC()); err != nil {
		return nil, err
	}
	if err := s.shops.Update(ctx, shop); err != nil {
		span.RecordError(err)
		return nil, err
	}
	logger.Ctx(ctx).Info().Str("shop_id", id).Msg("shop updated")
	return toShopView(shop), nil
}

// Delete 在同一事务里删除店铺及其全部商品。
func (s *ShopApplicationService) Delete(ctx context.Context, id string) (*DeleteShopResult, error) {
	ctx, span := s.tracer.Start(ctx, "app.DeleteShop")
	defer span.End()

	var deleted int64
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		shop, err := s.shops.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if deleted, err = s.products.DeleteByShop(ctx, shop.ID, shop.ProductIDs); err != nil {
			return err
		}
		return s.shops.Delete(ctx, shop.ID)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to delete shop")
		return nil, err
	}

	span.SetAttributes(attribute.Int64("shop.deleted_products", deleted))
	logger.Ctx(ctx).Info().Str("shop_id", id).Int64("deleted_products", deleted).Msg("shop deleted")
	return &DeleteShopResult{ShopID: id, DeletedProducts: deleted}, nil
}

// List 返回全部店铺，并展开店主、商品和顾客名称。
func (s *ShopApplicationService) List(ctx context.Context) ([]*ShopDetailView, error) {
	ctx, span := s.tracer.Start(ctx, "app.ListShops")
	defer span.End()

	shops, err := s.shops.List(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	var userIDs, productIDs []string
	for _, shop := range shops {
		userIDs = append(userIDs, shop.OwnerID)
		productIDs = append(productIDs, shop.ProductIDs...)
		for _, c := range shop.Customers {
			userIDs = append(userIDs, c.CustomerID)
		}
	}

	// 用户和商品两路并发加载
	var users []*domain.User
	var products []*domain.Product
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		users, err = s.users.FindByIDs(gctx, userIDs)
		return err
	})
	g.Go(func() error {
		var err error
		products, err = s.products.FindByIDs(gctx, productIDs)
		return err
	})
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to populate shops")
		return nil, err
	}

	userByID := make(map[string]*domain.User, len(users))
	for _, u := range users {
		userByID[u.ID] = u
	}
	productByID := make(map[string]*domain.Product, len(products))
	for _, p := range products {
		productByID[p.ID] = p
	}

	out := make([]*ShopDetailView, 0, len(shops))
	for _, shop := range shops {
		view := &ShopDetailView{
			ID:                       shop.ID,
			Name:                     shop.Name,
			Description:              shop.Description,
			Location:                 LocationDTO(shop.Location),
			Products:                 []ProductSummary{},
			Customers:                make([]ShopCustomerView, 0, len(shop.Customers)),
			PlatformDiscount:         shop.PlatformDiscount,
			PlatformShippingDiscount: shop.PlatformShippingDiscount,
			CreatedAt:                shop.CreatedAt,
			UpdatedAt:                shop.UpdatedAt,
		}
		if owner, ok := userByID[shop.OwnerID]; ok {
			view.Owner = &OwnerSummary{ID: owner.ID, Name: owner.Name}
		}
		for _, pid := range shop.ProductIDs {
			if p, ok := productByID[pid]; ok {
				view.Products = append(view.Products, ProductSummary{ID: p.ID, Name: p.Name, Price: p.Price})
			}
		}
		for _, c := range shop.Customers {
			cv := ShopCustomerView(c)
			if u, ok := userByID[c.CustomerID]; ok {
				cv.Name = u.Name
			}
			view.Customers = append(view.Customers, cv)
		}
		out = append(out, view)
	}
	span.SetAttributes(attribute.Int("shop.count", len(out)))
	return out, nil
}

// Customers 返回店铺的忠诚度记录。
func (s *ShopApplicationService) Customers(ctx context.Context, shopName string) ([]ShopCustomerView, error) {
	ctx, span := s.tracer.Start(ctx, "app.ShopCustomers")
	defer span.End()

	if strings.TrimSpace(shopName) == "" {
		return nil, domain.Invalidf("Shop name is required")
	}
	shop, err := s.shops.FindByName(ctx, shopName)
	if err != nil {
		return nil, err
	}
	return toShopCustomerViews(shop.Customers), nil
}
