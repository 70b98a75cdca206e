package application

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"storefront/internal/pkg/logger"
	"storefront/internal/pkg/metrics"
	"storefront/internal/service/market/application/saga"
	"storefront/internal/service/market/domain"
	"storefront/internal/service/market/domain/port"
)

// OrderRepositories 聚合下单流程需要的仓储。
type OrderRepositories struct {
	Users    domain.UserRepository
	Products domain.ProductRepository
	Shops    domain.ShopRepository
	Orders   domain.OrderRepository
}

// OrderOptions 是订单流程的可调参数。
type OrderOptions struct {
	ProcessingTimeout  time.Duration
	LockTTL            time.Duration
	RegularCustomerMin int
}

// OrderApplicationService 编排下单、支付和订单查询。
type OrderApplicationService struct {
	tx        port.Transactor
	locker    port.Locker
	repos     OrderRepositories
	publisher port.EventPublisher
	opts      OrderOptions
	tracer    trace.Tracer
	now       func() time.Time
}

func NewOrderApplicationService(tx port.Transactor, locker port.Locker, repos OrderRepositories, publisher port.EventPublisher, opts OrderOptions, tracer trace.Tracer) *OrderApplicationService {
	return &OrderApplicationService{
		tx: tx, locker: locker, repos: repos,
		publisher: publisher, opts: opts,
		tracer: tracer, now: time.Now,
	}
}

// CreateOrder 在一个事务里执行下单链：落库、忠诚度和销量要么全部生效，要么全部回滚。
func (s *OrderApplicationService) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*OrderView, error) {
	ctx, span := s.tracer.Start(ctx, "app.CreateOrder")
	defer span.End()

	// 1. 参数校验
	draft := req.toDraft()
	if err := draft.Validate(); err != nil {
		span.SetStatus(codes.Error, "invalid order request")
		return nil, err
	}
	draft.RoundMoney()
	span.SetAttributes(attribute.String("customer.id", draft.CustomerID), attribute.Int("order.items", len(draft.Items)))

	// 2. 为整个下单流程设置独立的超时时间
	processingCtx, cancel := context.WithTimeout(ctx, s.opts.ProcessingTimeout)
	defer cancel()

	// 3. 构造责任链上下文
	orderCtx := &saga.OrderContext{
		Draft:    draft,
		Tracer:   s.tracer,
		Now:      s.now().UTC(),
		Users:    s.repos.Users,
		Products: s.repos.Products,
		Shops:    s.repos.Shops,
		Orders:   s.repos.Orders,
	}

	// 4. 在事务内执行责任链
	err := s.tx.WithinTx(processingCtx, func(txCtx context.Context) error {
		orderCtx.Ctx = txCtx
		return saga.NewPlaceOrderChain().Handle(orderCtx)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "order processing failed in chain")
		logger.Ctx(ctx).Error().Err(err).Str("customer_id", draft.CustomerID).Msg("order creation rolled back")
		return nil, err
	}

	order := orderCtx.Order
	metrics.OrdersPlaced.Inc()
	span.SetAttributes(attribute.String("order.id", order.ID))
	logger.Ctx(ctx).Info().
		Str("order_id", order.ID).
		Str("customer_id", order.CustomerID).
		Str("total", order.TotalAmount.String()).
		Msg("order created")

	// 5. 事务提交后再发布事件
	s.publishPlaced(ctx, domain.OrderPlaced{
		OrderID:     order.ID,
		CustomerID:  order.CustomerID,
		TotalAmount: order.TotalAmount,
		ShopIDs:     orderCtx.ShopIDs(),
		OccurredAt:  order.DateOrdered,
	})
	return toOrderView(order), nil
}

// PayOrder 用站内币支付订单。
// 同一订单的支付按订单 id 加锁串行，扣款和置为已支付在同一事务内条件更新。
func (s *OrderApplicationService) PayOrder(ctx context.Context, req *PayOrderRequest) (*PaymentResult, error) {
	ctx, span := s.tracer.Start(ctx, "app.PayOrder")
	defer span.End()

	if req.CustomerID == "" || req.OrderID == "" {
		return nil, domain.Invalidf("Customer ID and order ID are required")
	}
	span.SetAttributes(attribute.String("order.id", req.OrderID), attribute.String("customer.id", req.CustomerID))

	// 1. 订单级互斥锁
	release, err := s.locker.Acquire(ctx, "order:pay:"+req.OrderID, s.opts.LockTTL)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to acquire payment lock")
		return nil, errors.Wrap(err, "acquire payment lock")
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			logger.Ctx(ctx).Warn().Err(err).Str("order_id", req.OrderID).Msg("failed to release payment lock")
		}
	}()

	// 2. 校验、扣款、置为已支付
	var (
		order *domain.Order
		payer *domain.User
	)
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		now := s.now().UTC()
		o, err := s.repos.Orders.FindByID(ctx, req.OrderID)
		if err != nil {
			return err
		}
		if o.CustomerID != req.CustomerID {
			return domain.Invalidf("Order does not belong to this customer")
		}
		if o.PaymentStatus != domain.PaymentUnpaid {
			return domain.ErrOrderAlreadyPaid
		}
		u, err := s.repos.Users.FindByID(ctx, req.CustomerID)
		if err != nil {
			return err
		}
		if !u.CanAfford(o.TotalAmount) {
			return domain.ErrInsufficientBalance
		}
		if err := s.repos.Users.DebitCoin(ctx, u.ID, o.TotalAmount, now); err != nil {
			return err
		}
		if err := s.repos.Orders.MarkPaid(ctx, o.ID, now); err != nil {
			return err
		}
		if err := u.Debit(o.TotalAmount, now); err != nil {
			return err
		}
		if err := o.MarkPaid(now); err != nil {
			return err
		}
		order, payer = o, u
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInsufficientFunds):
			metrics.PaymentsRejected.WithLabelValues("insufficient_funds").Inc()
		case errors.Is(err, domain.ErrOrderAlreadyPaid):
			metrics.PaymentsRejected.WithLabelValues("already_paid").Inc()
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "payment rejected")
		logger.Ctx(ctx).Warn().Err(err).Str("order_id", req.OrderID).Msg("payment rejected")
		return nil, err
	}

	metrics.OrdersPaid.Inc()
	logger.Ctx(ctx).Info().
		Str("order_id", order.ID).
		Str("amount", order.TotalAmount.String()).
		Str("remaining", payer.Coin.String()).
		Msg("order paid")

	// 3. 事务提交后发布支付事件
	s.publishPaid(ctx, domain.OrderPaid{
		OrderID:    order.ID,
		CustomerID: order.CustomerID,
		Amount:     order.TotalAmount,
		OccurredAt: *order.DatePaid,
	})
	return &PaymentResult{Order: toOrderView(order), RemainingBalance: payer.Coin}, nil
}

// 事件发布失败只记录日志，订单已经提交。
func (s *OrderApplicationService) publishPlaced(ctx context.Context, event domain.OrderPlaced) {
	err := s.publisher.PublishOrderPlaced(ctx, event)
	s.recordPublish(ctx, domain.EventOrderPlaced, event.OrderID, err)
}

func (s *OrderApplicationService) publishPaid(ctx context.Context, event domain.OrderPaid) {
	err := s.publisher.PublishOrderPaid(ctx, event)
	s.recordPublish(ctx, domain.EventOrderPaid, event.OrderID, err)
}

func (s *OrderApplicationService) recordPublish(ctx context.Context, typ domain.EventType, orderID string, err error) {
	if err != nil {
		metrics.EventsPublished.WithLabelValues(string(typ), "error").Inc()
		trace.SpanFromContext(ctx).RecordError(err)
		logger.Ctx(ctx).Error().Err(err).Str("event", string(typ)).Str("order_id", orderID).Msg("failed to publish order event")
		return
	}
	metrics.EventsPublished.WithLabelValues(string(typ), "ok").Inc()
}

func (s *OrderApplicationService) Get(ctx context.Context, id string) (*OrderView, error) {
	ctx, span := s.tracer.Start(ctx, "app.GetOrder")
	defer span.End()

	order, err := s.repos.Orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toOrderView(order), nil
}

func (s *OrderApplicationService) list(ctx context.Context, name string, filter domain.OrderFilter) ([]*OrderView, error) {
	ctx, span := s.tracer.Start(ctx, name)
	defer span.End()

	orders, err := s.repos.Orders.List(ctx, filter)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("order.count", len(orders)))
	return toOrderViews(orders), nil
}

// ByBrandAndStatus 返回包含该品牌商品且处于指定状态的订单。
func (s *OrderApplicationService) ByBrandAndStatus(ctx context.Context, brand, status string) ([]*OrderView, error) {
	if strings.TrimSpace(brand) == "" {
		return nil, domain.Invalidf("Brand is required")
	}
	st := domain.OrderStatus(status)
	if !st.Valid() {
		return nil, domain.Invalidf("Invalid order status %q", status)
	}
	return s.list(ctx, "app.OrdersByBrandAndStatus", domain.OrderFilter{Brand: brand, Status: st})
}

func (s *OrderApplicationService) ByBrand(ctx context.Context, brand string) ([]*OrderView, error) {
	if strings.TrimSpace(brand) == "" {
		return nil, domain.Invalidf("Brand is required")
	}
	return s.list(ctx, "app.OrdersByBrand", domain.OrderFilter{Brand: brand})
}

func (s *OrderApplicationService) ByCustomer(ctx context.Context, customerID string) ([]*OrderView, error) {
	if customerID == "" {
		return nil, domain.Invalidf("Customer ID is required")
	}
	return s.list(ctx, "app.OrdersByCustomer", domain.OrderFilter{CustomerID: customerID})
}

// RegularCustomers 返回在该品牌下单次数不少于 minOrders 的顾客，按次数降序。
// minOrders <= 0 时使用配置的默认阈值。
func (s *OrderApplicationService) RegularCustomers(ctx context.Context, brand string, minOrders int) ([]RegularCustomerView, error) {
	ctx, span := s.tracer.Start(ctx, "app.RegularCustomers")
	defer span.End()

	if strings.TrimSpace(brand) == "" {
		return nil, domain.Invalidf("Brand is required")
	}
	if minOrders <= 0 {
		minOrders = s.opts.RegularCustomerMin
	}

	counts, err := s.repos.Orders.CountByCustomerForBrand(ctx, brand)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	ids := make([]string, 0, len(counts))
	for id, n := range counts {
		if n >= minOrders {
			ids = append(ids, id)
		}
	}

	users, err := s.repos.Users.FindByIDs(ctx, ids)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	// 已删除的账户不再计入
	out := make([]RegularCustomerView, 0, len(users))
	for _, u := range users {
		out = append(out, RegularCustomerView{
			CustomerID:  u.ID,
			Name:        u.Name,
			Email:       u.Email,
			OrdersCount: counts[u.ID],
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].OrdersCount != out[j].OrdersCount {
			return out[i].OrdersCount > out[j].OrdersCount
		}
		return out[i].CustomerID < out[j].CustomerID
	})

	span.SetAttributes(attribute.Int("customers.count", len(out)), attribute.Int("customers.min", minOrders))
	return out, nil
}
