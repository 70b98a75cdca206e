package application

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"storefront/internal/pkg/logger"
	"storefront/internal/service/market/domain"
	"storefront/internal/service/market/domain/port"
)

// CartApplicationService 管理买家购物车。同一用户的购物车修改按用户加锁串行。
type CartApplicationService struct {
	locker   port.Locker
	lockTTL  time.Duration
	carts    domain.CartRepository
	products domain.ProductRepository
	users    domain.UserRepository
	tracer   trace.Tracer
	now      func() time.Time
}

func NewCartApplicationService(locker port.Locker, lockTTL time.Duration, carts domain.CartRepository, products domain.ProductRepository, users domain.UserRepository, tracer trace.Tracer) *CartApplicationService {
	return &CartApplicationService{
		locker: locker, lockTTL: lockTTL,
		carts: carts, products: products, users: users,
		tracer: tracer, now: time.Now,
	}
}

func cartLockKey(userID string) string { return "cart:" + userID }

// withCartLock 持有用户购物车锁执行 fn。
func (s *CartApplicationService) withCartLock(ctx context.Context, userID string, fn func() error) error {
	release, err := s.locker.Acquire(ctx, cartLockKey(userID), s.lockTTL)
	if err != nil {
		return errors.Wrap(err, "acquire cart lock")
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			logger.Ctx(ctx).Warn().Err(err).Str("user_id", userID).Msg("failed to release cart lock")
		}
	}()
	return fn()
}

func (s *CartApplicationService) AddItem(ctx context.Context, req *AddCartItemRequest) (*CartView, error) {
	ctx, span := s.tracer.Start(ctx, "app.AddCartItem")
	defer span.End()

	// 1. 参数校验
	if req.UserID == "" || req.ProductID == "" {
		return nil, domain.Invalidf("User ID and product ID are required")
	}
	if req.Quantity <= 0 {
		return nil, domain.Invalidf("Quantity must be a positive integer")
	}
	span.SetAttributes(attribute.String("user.id", req.UserID), attribute.String("product.id", req.ProductID))

	// 2. 用户和商品必须存在
	if _, err := s.users.FindByID(ctx, req.UserID); err != nil {
		return nil, err
	}
	product, err := s.products.FindByID(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}

	// 3. 读-改-写购物车
	var cart *domain.Cart
	err = s.withCartLock(ctx, req.UserID, func() error {
		now := s.now().UTC()
		c, err := s.carts.FindByUser(ctx, req.UserID)
		if errors.Is(err, domain.ErrNotFound) {
			c = domain.NewCart(req.UserID, now)
		} else if err != nil {
			return err
		}
		if err := c.AddItem(product, req.Quantity, now); err != nil {
			return err
		}
		cart = c
		return s.carts.Save(ctx, c)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to add cart item")
		return nil, err
	}

	logger.Ctx(ctx).Info().Str("user_id", req.UserID).Str("product_id", req.ProductID).Int("quantity", req.Quantity).Msg("cart item added")
	return toCartView(cart), nil
}

func (s *CartApplicationService) Items(ctx context.Context, userID string) (*CartView, error) {
	ctx, span := s.tracer.Start(ctx, "app.CartItems")
	defer span.End()

	if userID == "" {
		return nil, domain.Invalidf("User ID is required")
	}
	cart, err := s.carts.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toCartView(cart), nil
}

// ItemCount 返回购物车行数。
func (s *CartApplicationService) ItemCount(ctx context.Context, userID string) (int, error) {
	ctx, span := s.tracer.Start(ctx, "app.CartItemCount")
	defer span.End()

	if userID == "" {
		return 0, domain.Invalidf("User ID is required")
	}
	cart, err := s.carts.FindByUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	return cart.ItemCount(), nil
}

func (s *CartApplicationService) RemoveItem(ctx context.Context, userID, productID string) (*CartView, error) {
	ctx, span := s.tracer.Start(ctx, "app.RemoveCartItem")
	defer span.End()

	if userID == "" || productID == "" {
		return nil, domain.Invalidf("User ID and product ID are required")
	}

	var cart *domain.Cart
	err := s.withCartLock(ctx, userID, func() error {
		c, err := s.carts.FindByUser(ctx, userID)
		if err != nil {
			return err
		}
		if err := c.RemoveItem(productID, s.now().UTC()); err != nil {
			return err
		}
		cart = c
		return s.carts.Save(ctx, c)
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	logger.Ctx(ctx).Info().Str("user_id", userID).Str("product_id", productID).Msg("cart item removed")
	return toCartView(cart), nil
}
