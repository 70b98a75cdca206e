package application

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"golang.org/x/crypto/bcrypt"

	"storefront/internal/service/market/domain"
	"storefront/internal/service/market/infrastructure/adapter"
	"storefront/internal/service/market/infrastructure/memory"
)

var fixedNow = time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)

type recordingPublisher struct {
	mu     sync.Mutex
	placed []domain.OrderPlaced
	paid   []domain.OrderPaid
}

func (p *recordingPublisher) PublishOrderPlaced(_ context.Context, e domain.OrderPlaced) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.placed = append(p.placed, e)
	return nil
}

func (p *recordingPublisher) PublishOrderPaid(_ context.Context, e domain.OrderPaid) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.paid = append(p.paid, e)
	return nil
}

type testEnv struct {
	store     *memory.Store
	publisher *recordingPublisher

	users    *UserApplicationService
	products *ProductApplicationService
	shops    *ShopApplicationService
	carts    *CartApplicationService
	orders   *OrderApplicationService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := memory.NewStore()
	locker := adapter.NewLocalLocker()
	pub := &recordingPublisher{}
	tracer := otel.Tracer("test")
	clock := func() time.Time { return fixedNow }

	env := &testEnv{
		store:     store,
		publisher: pub,
		users: NewUserApplicationService(store.Users(), adapter.NewBcryptHasher(bcrypt.MinCost),
			adapter.NewJWTIssuer("test-secret", "storefront", time.Hour), tracer),
		products: NewProductApplicationService(store, store.Products(), store.Shops(), tracer),
		shops:    NewShopApplicationService(store, store.Shops(), store.Users(), store.Products(), tracer),
		carts:    NewCartApplicationService(locker, time.Second, store.Carts(), store.Products(), store.Users(), tracer),
		orders: NewOrderApplicationService(store, locker,
			OrderRepositories{Users: store.Users(), Products: store.Products(), Shops: store.Shops(), Orders: store.Orders()},
			pub,
			OrderOptions{ProcessingTimeout: 5 * time.Second, LockTTL: time.Second, RegularCustomerMin: 2},
			tracer),
	}
	env.users.now = clock
	env.products.now = clock
	env.shops.now = clock
	env.carts.now = clock
	env.orders.now = clock
	return env
}

// seedUser 直接写入一个带余额的账户。
func (e *testEnv) seedUser(t *testing.T, email string, coin int64) *domain.User {
	t.Helper()
	u := domain.NewUser(email, "User "+email, "x", fixedNow)
	u.Coin = decimal.NewFromInt(coin)
	require.NoError(t, e.store.Users().Create(context.Background(), u))
	return u
}

func (e *testEnv) seedProduct(t *testing.T, req AddProductRequest) *ProductView {
	t.Helper()
	p, err := e.products.Add(context.Background(), &req)
	require.NoError(t, err)
	return p
}

func (e *testEnv) balance(t *testing.T, userID string) decimal.Decimal {
	t.Helper()
	u, err := e.store.Users().FindByID(context.Background(), userID)
	require.NoError(t, err)
	return u.Coin
}

func shippingAddress() *ShippingAddressDTO {
	return &ShippingAddressDTO{
		FullName:     "Lan Nguyen",
		AddressLine1: "1 Phu Dong Thien Vuong",
		City:         "Da Lat",
		State:        "Lam Dong",
		PostalCode:   "670000",
		Country:      "VN",
		PhoneNumber:  "+84 263 000 000",
	}
}
