package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/service/market/domain"
)

func TestAddProduct_AttachesToShop(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.seedUser(t, "owner@example.com", 0)
	shop, err := env.shops.Create(ctx, &CreateShopRequest{UserID: owner.ID, Name: "Acme"})
	require.NoError(t, err)

	p := env.seedProduct(t, AddProductRequest{ShopID: shop.ID, Name: "Kettle", Price: d("30")})
	assert.Equal(t, "Acme", p.Brand)
	assert.Equal(t, domain.DefaultCategory, p.Category)

	stored, err := env.store.Shops().FindByID(ctx, shop.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{p.ID}, stored.ProductIDs)

	_, err = env.products.Add(ctx, &AddProductRequest{ShopID: "missing", Name: "X", Price: d("1")})
	assert.ErrorIs(t, err, domain.ErrShopNotFound)
	all, err := env.products.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestProductQueries(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	customer := env.seedUser(t, "lan@example.com", 0)

	tea := env.seedProduct(t, AddProductRequest{Name: "Tea", Brand: "Acme", Price: d("50"), StockQuantity: 5})
	cup := env.seedProduct(t, AddProductRequest{Name: "Cup", Brand: "Acme", Price: d("20"), Discount: d("10"), StockQuantity: 0})
	env.seedProduct(t, AddProductRequest{Name: "Pot", Brand: "Acme", Price: d("80"), StockQuantity: 3, Status: string(domain.ProductDiscontinued)})
	env.seedProduct(t, AddProductRequest{Name: "Rice", Brand: "Other", Price: d("5"), StockQuantity: 9})

	onSale, err := env.products.OnSale(ctx)
	require.NoError(t, err)
	require.Len(t, onSale, 1)
	assert.Equal(t, cup.ID, onSale[0].ID)
	assert.Equal(t, "18", onSale[0].EffectivePrice.String())

	stocked, err := env.products.StockedByShop(ctx, "Acme")
	require.NoError(t, err)
	require.Len(t, stocked, 1)
	assert.Equal(t, tea.ID, stocked[0].ID)

	_, err = env.products.StockedByShop(ctx, "")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	placeSample(t, env, customer.ID, tea, cup)

	best, err := env.products.BestSellersByShop(ctx, "Acme")
	require.NoError(t, err)
	require.Len(t, best, 3)
	assert.Equal(t, tea.ID, best[0].ID)
	assert.Equal(t, 2, best[0].TotalSale)

	totals, err := env.products.PlatformTotals(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), totals.TotalSale)
	assert.Equal(t, "120", totals.TotalSaleValue.String())
}
