package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/service/market/domain"
)

func TestCreateShop_OnePerOwner(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.seedUser(t, "owner@example.com", 0)
	other := env.seedUser(t, "other@example.com", 0)

	check, err := env.shops.CheckShop(ctx, owner.ID)
	require.NoError(t, err)
	assert.False(t, check.HasShop)

	shop, err := env.shops.Create(ctx, &CreateShopRequest{UserID: owner.ID, Name: "Acme", Location: LocationDTO{City: "Hue"}})
	require.NoError(t, err)
	assert.Equal(t, "Hue", shop.Location.City)

	_, err = env.shops.Create(ctx, &CreateShopRequest{UserID: owner.ID, Name: "Acme Two"})
	assert.ErrorIs(t, err, domain.ErrShopExists)

	_, err = env.shops.Create(ctx, &CreateShopRequest{UserID: other.ID, Name: "Acme"})
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = env.shops.Create(ctx, &CreateShopRequest{UserID: "ghost", Name: "Ghost"})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	check, err = env.shops.CheckShop(ctx, owner.ID)
	require.NoError(t, err)
	assert.True(t, check.HasShop)
	assert.Equal(t, shop.ID, check.Shop.ID)

	_, err = env.shops.CheckShop(ctx, "ghost")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestDeleteShop_CascadesProducts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.seedUser(t, "owner@example.com", 0)
	shop, err := env.shops.Create(ctx, &CreateShopRequest{UserID: owner.ID, Name: "Acme"})
	require.NoError(t, err)

	p1, p2 := sampleProducts(t, env, shop.ID)
	keep := env.seedProduct(t, AddProductRequest{Name: "Loose", Price: d("1")})

	res, err := env.shops.Delete(ctx, shop.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.DeletedProducts)

	for _, id := range []string{p1.ID, p2.ID} {
		_, err := env.products.Get(ctx, id)
		assert.ErrorIs(t, err, domain.ErrProductNotFound)
	}
	_, err = env.products.Get(ctx, keep.ID)
	assert.NoError(t, err)

	_, err = env.store.Shops().FindByID(ctx, shop.ID)
	assert.ErrorIs(t, err, domain.ErrShopNotFound)

	_, err = env.shops.Delete(ctx, shop.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListShops_PopulatesRelations(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.seedUser(t, "owner@example.com", 0)
	customer := env.seedUser(t, "lan@example.com", 0)
	shop, err := env.shops.Create(ctx, &CreateShopRequest{UserID: owner.ID, Name: "Acme"})
	require.NoError(t, err)
	p1, p2 := sampleProducts(t, env, shop.ID)
	placeSample(t, env, customer.ID, p1, p2)

	shops, err := env.shops.List(ctx)
	require.NoError(t, err)
	require.Len(t, shops, 1)

	view := shops[0]
	require.NotNil(t, view.Owner)
	assert.Equal(t, owner.Name, view.Owner.Name)
	require.Len(t, view.Products, 2)
	assert.Equal(t, "Tea", view.Products[0].Name)
	assert.Equal(t, "50", view.Products[0].Price.String())
	require.Len(t, view.Customers, 1)
	assert.Equal(t, customer.Name, view.Customers[0].Name)
	assert.Equal(t, 1, view.Customers[0].OrdersCount)
}

func TestEditShop(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := env.seedUser(t, "a@example.com", 0)
	b := env.seedUser(t, "b@example.com", 0)
	shopA, err := env.shops.Create(ctx, &CreateShopRequest{UserID: a.ID, Name: "Acme"})
	require.NoError(t, err)
	_, err = env.shops.Create(ctx, &CreateShopRequest{UserID: b.ID, Name: "Bravo"})
	require.NoError(t, err)

	desc := "fine tea"
	edited, err := env.shops.Edit(ctx, shopA.ID, &EditShopRequest{Description: &desc, Location: &LocationDTO{Country: "VN"}})
	require.NoError(t, err)
	assert.Equal(t, "fine tea", edited.Description)
	assert.Equal(t, "VN", edited.Location.Country)

	taken := "Bravo"
	_, err = env.shops.Edit(ctx, shopA.ID, &EditShopRequest{Name: &taken})
	assert.ErrorIs(t, err, domain.ErrShopNameTaken)

	_, err = env.shops.Edit(ctx, "missing", &EditShopRequest{Description: &desc})
	assert.ErrorIs(t, err, domain.ErrShopNotFound)
}
