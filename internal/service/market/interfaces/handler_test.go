package interfaces

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"golang.org/x/crypto/bcrypt"

	"storefront/internal/service/market/application"
	"storefront/internal/service/market/domain"
	"storefront/internal/service/market/infrastructure/adapter"
	"storefront/internal/service/market/infrastructure/memory"
)

type testServer struct {
	store  *memory.Store
	server *httptest.Server
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := memory.NewStore()
	locker := adapter.NewLocalLocker()
	tracer := otel.Tracer("test")

	userSvc := application.NewUserApplicationService(store.Users(), adapter.NewBcryptHasher(bcrypt.MinCost),
		adapter.NewJWTIssuer("secret", "storefront", time.Hour), tracer)
	productSvc := application.NewProductApplicationService(store, store.Products(), store.Shops(), tracer)
	shopSvc := application.NewShopApplicationService(store, store.Shops(), store.Users(), store.Products(), tracer)
	cartSvc := application.NewCartApplicationService(locker, time.Second, store.Carts(), store.Products(), store.Users(), tracer)
	orderSvc := application.NewOrderApplicationService(store, locker,
		application.OrderRepositories{Users: store.Users(), Products: store.Products(), Shops: store.Shops(), Orders: store.Orders()},
		adapter.LogEventPublisher{},
		application.OrderOptions{ProcessingTimeout: 5 * time.Second, LockTTL: time.Second, RegularCustomerMin: 10},
		tracer)

	mux := http.NewServeMux()
	RegisterHomepage(mux)
	NewUserHandler(userSvc).RegisterRoutes(mux)
	NewProductHandler(productSvc).RegisterRoutes(mux)
	NewShopHandler(shopSvc, orderSvc).RegisterRoutes(mux)
	NewCartHandler(cartSvc).RegisterRoutes(mux)
	NewOrderHandler(orderSvc).RegisterRoutes(mux)

	srv := httptest.NewServer(CORS(mux))
	t.Cleanup(srv.Close)
	return &testServer{store: store, server: srv}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, s.server.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestUserRoutes(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, http.MethodPost, "/user/signup", map[string]string{"email": "lan@example.com", "name": "Lan", "password": "pw"})
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, true, body["success"])
	user := body["user"].(map[string]interface{})
	assert.NotContains(t, user, "password")
	userID := user["_id"].(string)

	status, body = s.do(t, http.MethodPost, "/user/signup", map[string]string{"email": "lan@example.com", "name": "Lan", "password": "pw"})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "User already exists", body["message"])

	status, body = s.do(t, http.MethodPost, "/user/signup", map[string]string{"email": "x@example.com"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Please provide email, name, and password", body["message"])

	status, body = s.do(t, http.MethodPost, "/user/login", map[string]string{"email": "lan@example.com", "password": "bad"})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body = s.do(t, http.MethodPost, "/user/login", map[string]string{"email": "lan@example.com", "password": "pw"})
	require.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, body["token"])

	status, _ = s.do(t, http.MethodGet, "/user/get/"+userID, nil)
	assert.Equal(t, http.StatusOK, status)

	status, body = s.do(t, http.MethodPatch, "/user/edit/"+userID, map[string]string{"role": "admin"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "admin", body["user"].(map[string]interface{})["role"])

	status, _ = s.do(t, http.MethodDelete, "/user/delete/"+userID, nil)
	assert.Equal(t, http.StatusOK, status)

	status, body = s.do(t, http.MethodGet, "/user/get/"+userID, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "User not found", body["message"])
}

func TestCheckoutFlow(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	buyer := domain.NewUser("lan@example.com", "Lan", "x", time.Now())
	buyer.Coin = decimal.NewFromInt(130)
	require.NoError(t, s.store.Users().Create(ctx, buyer))

	status, body := s.do(t, http.MethodPost, "/product/add", map[string]interface{}{"name": "Tea", "brand": "Acme", "price": 50, "stockQuantity": 4})
	require.Equal(t, http.StatusCreated, status)
	teaID := body["product"].(map[string]interface{})["_id"].(string)

	status, body = s.do(t, http.MethodPost, "/buyerCart/add", map[string]interface{}{"userID": buyer.ID, "productID": teaID, "quantity": 2})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(100), body["cart"].(map[string]interface{})["cartTotal"])

	status, body = s.do(t, http.MethodGet, "/buyerCart/items/count?userID="+buyer.ID, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(1), body["itemCount"])

	status, body = s.do(t, http.MethodPost, "/order/add", map[string]interface{}{
		"customerID":    buyer.ID,
		"products":      []map[string]interface{}{{"productID": teaID, "quantity": 2, "price": 50}},
		"paymentMethod": "dluCoin",
		"shippingAddress": map[string]string{
			"fullName": "Lan", "addressLine1": "1 Main", "city": "Da Lat", "state": "LD",
			"postalCode": "670000", "country": "VN", "phoneNumber": "0263",
		},
		"shippingCost": 10,
		"discount":     5,
	})
	require.Equal(t, http.StatusCreated, status)
	order := body["order"].(map[string]interface{})
	assert.Equal(t, float64(105), order["totalAmount"])
	orderID := order["_id"].(string)

	status, body = s.do(t, http.MethodPost, "/order/pay", map[string]string{"customerID": buyer.ID, "orderID": orderID})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(25), body["remainingBalance"])

	status, body = s.do(t, http.MethodPost, "/order/pay", map[string]string{"customerID": buyer.ID, "orderID": orderID})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, false, body["success"])

	status, body = s.do(t, http.MethodGet, "/order/by-customer-id?customerID="+buyer.ID, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["orders"], 1)

	status, body = s.do(t, http.MethodGet, "/order/getByShopOrderStatus?brand=Acme&status=pending", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["orders"], 1)

	status, body = s.do(t, http.MethodGet, "/product/platform/all", nil)
	require.Equal(t, http.StatusOK, status)
	totals := body["totals"].(map[string]interface{})
	assert.Equal(t, float64(2), totals["totalSale"])
	assert.Equal(t, float64(100), totals["totalSaleValue"])
}

func TestInsufficientFundsIs400(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	buyer := domain.NewUser("lan@example.com", "Lan", "x", time.Now())
	buyer.Coin = decimal.NewFromInt(50)
	require.NoError(t, s.store.Users().Create(ctx, buyer))
	p, err := domain.NewProduct(domain.Product{Name: "Tea", Brand: "Acme", Price: decimal.NewFromInt(125)}, time.Now())
	require.NoError(t, err)
	require.NoError(t, s.store.Products().Create(ctx, p))

	status, body := s.do(t, http.MethodPost, "/order/add", map[string]interface{}{
		"customerID":    buyer.ID,
		"products":      []map[string]interface{}{{"productID": p.ID, "quantity": 1, "price": 125}},
		"paymentMethod": "dluCoin",
		"shippingAddress": map[string]string{
			"fullName": "Lan", "addressLine1": "1 Main", "city": "Da Lat", "state": "LD",
			"postalCode": "670000", "country": "VN", "phoneNumber": "0263",
		},
	})
	require.Equal(t, http.StatusCreated, status)
	orderID := body["order"].(map[string]interface{})["_id"].(string)

	status, body = s.do(t, http.MethodPost, "/order/pay", map[string]string{"customerID": buyer.ID, "orderID": orderID})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Insufficient DLU Coin balance", body["message"])
}

func TestShopRoutes(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	owner := domain.NewUser("owner@example.com", "Owner", "x", time.Now())
	require.NoError(t, s.store.Users().Create(ctx, owner))

	status, body := s.do(t, http.MethodGet, "/shop/check-shop?userId="+owner.ID, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, body["hasShop"])

	status, body = s.do(t, http.MethodPost, "/shop/create", map[string]interface{}{"userId": owner.ID, "name": "Acme"})
	require.Equal(t, http.StatusCreated, status)
	shopID := body["shop"].(map[string]interface{})["_id"].(string)

	status, _ = s.do(t, http.MethodPost, "/shop/create", map[string]interface{}{"userId": owner.ID, "name": "Again"})
	assert.Equal(t, http.StatusConflict, status)

	status, body = s.do(t, http.MethodPut, "/shop/edit/"+shopID, map[string]interface{}{"description": "tea house"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "tea house", body["shop"].(map[string]interface{})["description"])

	status, body = s.do(t, http.MethodPost, "/shop/regular-customers", map[string]string{"shopName": "Acme"})
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, body["customers"])

	status, _ = s.do(t, http.MethodGet, "/shop/customers/regular?brand=Acme&min=abc", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = s.do(t, http.MethodGet, "/shop/get-all", nil)
	assert.Equal(t, http.StatusOK, status)

	status, body = s.do(t, http.MethodDelete, "/shop/delete/"+shopID, nil)
	require.Equal(t, http.StatusOK, status)
	status, _ = s.do(t, http.MethodDelete, "/shop/delete/"+shopID, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestMalformedBody(t *testing.T) {
	s := newTestServer(t)
	resp, err := http.Post(s.server.URL+"/order/add", "application/json", bytes.NewBufferString("{"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHomepageAndCORS(t *testing.T) {
	s := newTestServer(t)

	resp, err := http.Get(s.server.URL + "/homepage/vn")
	require.NoError(t, err)
	var msg string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&msg))
	resp.Body.Close()
	assert.Equal(t, "Chào mừng bạn đến với DLU Underground", msg)

	req, err := http.NewRequest(http.MethodOptions, s.server.URL+"/order/add", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://shop.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "content-type,traceparent")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Contains(t, resp.Header.Get("Access-Control-Allow-Methods"), http.MethodPost)
	assert.Contains(t, strings.ToLower(resp.Header.Get("Access-Control-Allow-Headers")), "traceparent")

	// 普通跨域请求照常进入路由
	req, err = http.NewRequest(http.MethodGet, s.server.URL+"/homepage/en", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://shop.example.com")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusFor(domain.Invalidf("x")))
	assert.Equal(t, http.StatusBadRequest, statusFor(domain.ErrInsufficientBalance))
	assert.Equal(t, http.StatusNotFound, statusFor(errors.Wrap(domain.ErrOrderNotFound, "load")))
	assert.Equal(t, http.StatusConflict, statusFor(domain.ErrOrderAlreadyPaid))
	assert.Equal(t, http.StatusUnauthorized, statusFor(domain.ErrInvalidCredentials))
	assert.Equal(t, http.StatusInternalServerError, statusFor(errors.New("boom")))
}

func TestUnexpectedErrorIsGeneric(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	writeError(rec, req, errors.New("dial tcp 10.0.0.7:3306: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "10.0.0.7")
	assert.Contains(t, rec.Body.String(), "An unexpected error occurred")
}
