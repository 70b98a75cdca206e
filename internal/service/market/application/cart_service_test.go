package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/service/market/domain"
)

func TestCart_AddCountRemove(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.seedUser(t, "lan@example.com", 0)
	jacket := env.seedProduct(t, AddProductRequest{Name: "Jacket", Price: d("100"), Discount: d("10")})
	hat := env.seedProduct(t, AddProductRequest{Name: "Hat", Price: d("15")})

	_, err := env.carts.ItemCount(ctx, user.ID)
	assert.ErrorIs(t, err, domain.ErrCartNotFound)

	cart, err := env.carts.AddItem(ctx, &AddCartItemRequest{UserID: user.ID, ProductID: jacket.ID, Quantity: 2})
	require.NoError(t, err)
	assert.Equal(t, "180", cart.CartTotal.String())

	_, err = env.carts.AddItem(ctx, &AddCartItemRequest{UserID: user.ID, ProductID: hat.ID, Quantity: 1})
	require.NoError(t, err)
	cart, err = env.carts.AddItem(ctx, &AddCartItemRequest{UserID: user.ID, ProductID: jacket.ID, Quantity: 1})
	require.NoError(t, err)
	require.Len(t, cart.Items, 2)
	assert.Equal(t, 3, cart.Items[0].Quantity)
	assert.Equal(t, "285", cart.CartTotal.String())

	n, err := env.carts.ItemCount(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	cart, err = env.carts.RemoveItem(ctx, user.ID, jacket.ID)
	require.NoError(t, err)
	assert.Equal(t, "15", cart.CartTotal.String())

	first, err := env.carts.Items(ctx, user.ID)
	require.NoError(t, err)
	second, err := env.carts.Items(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestCart_Rejections(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.seedUser(t, "lan@example.com", 0)
	hat := env.seedProduct(t, AddProductRequest{Name: "Hat", Price: d("15")})

	_, err := env.carts.AddItem(ctx, &AddCartItemRequest{UserID: user.ID, ProductID: "missing", Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrProductNotFound)

	_, err = env.carts.AddItem(ctx, &AddCartItemRequest{UserID: user.ID, ProductID: hat.ID, Quantity: 0})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = env.carts.AddItem(ctx, &AddCartItemRequest{UserID: "ghost", ProductID: hat.ID, Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	_, err = env.carts.Items(ctx, "")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = env.carts.RemoveItem(ctx, user.ID, hat.ID)
	assert.ErrorIs(t, err, domain.ErrCartNotFound)

	_, err = env.carts.AddItem(ctx, &AddCartItemRequest{UserID: user.ID, ProductID: hat.ID, Quantity: 1})
	require.NoError(t, err)
	_, err = env.carts.RemoveItem(ctx, user.ID, "missing")
	assert.ErrorIs(t, err, domain.ErrCartItemNotFound)
}
