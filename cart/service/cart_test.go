package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arvglez/storefront/cart/pkg/request"
	"github.com/arvglez/storefront/internal/errors"
)

func TestGetCart_EmptyWhenNoActiveCart(t *testing.T) {
	env := setupTest(t)
	c := context.Background()

	cart, err := env.carts.GetCart(c, uuid.New())
	require.NoError(t, err)

	assert.NotNil(t, cart.Items)
	assert.Empty(t, cart.Items)
	assert.True(t, cart.Total.IsZero())
}

func TestAddItem_MergesIntoSingleLine(t *testing.T) {
	env := setupTest(t)
	c := context.Background()

	userId := uuid.New()
	product := seedProduct(t, env, "Yerba Mate 1kg", "19.99", 10)

	newStock, err := env.carts.AddItem(c, userId, request.AddCartItem{
		ProductId: product.ID,
		Quantity:  3,
	})
	require.NoError(t, err)
	assert.Equal(t, int32(7), newStock)

	newStock, err = env.carts.AddItem(c, userId, request.AddCartItem{
		ProductId: product.ID,
		Quantity:  4,
	})
	require.NoError(t, err)
	assert.Equal(t, int32(3), newStock)

	cart, err := env.carts.GetCart(c, userId)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, int32(7), cart.Items[0].QuantityInCart)
	assert.Equal(t, "139.93", cart.Items[0].Subtotal.String())
	assert.Equal(t, "139.93", cart.Total.String())
}

func TestAddItem_AdvisoryStockCheck(t *testing.T) {
	env := setupTest(t)
	c := context.Background()

	userId := uuid.New()
	product := seedProduct(t, env, "Mate Imperial", "45.50", 2)

	_, err := env.carts.AddItem(c, userId, request.AddCartItem{
		ProductId: product.ID,
		Quantity:  5,
	})
	var advisory *errors.StockAdvisoryError
	require.ErrorAs(t, err, &advisory)
	assert.Equal(t, int32(2), advisory.Available)
	assert.Equal(t, int32(0), advisory.InCart)

	// the rejection accounts for what is already in the cart
	_, err = env.carts.AddItem(c, userId, request.AddCartItem{
		ProductId: product.ID,
		Quantity:  2,
	})
	require.NoError(t, err)
	_, err = env.carts.AddItem(c, userId, request.AddCartItem{
		ProductId: product.ID,
		Quantity:  1,
	})
	require.ErrorAs(t, err, &advisory)
	assert.Equal(t, int32(2), advisory.Available)
	assert.Equal(t, int32(2), advisory.InCart)
}

func TestAddItem_UnknownProduct(t *testing.T) {
	env := setupTest(t)

	_, err := env.carts.AddItem(context.Background(), uuid.New(), request.AddCartItem{
		ProductId: uuid.New(),
		Quantity:  1,
	})
	require.ErrorIs(t, err, errors.ErrProductNotFound)
}

func TestUpdateItem_SetsQuantity(t *testing.T) {
	env := setupTest(t)
	c := context.Background()

	userId := uuid.New()
	product := seedProduct(t, env, "Termo Acero", "30.00", 10)
	_, err := env.carts.AddItem(c, userId, request.AddCartItem{
		ProductId: product.ID,
		Quantity:  3,
	})
	require.NoError(t, err)

	newQuantity, stockAvailable, err := env.carts.UpdateItem(c, userId, request.UpdateCartItem{
		ProductId: product.ID,
		Quantity:  8,
	})
	require.NoError(t, err)
	assert.Equal(t, int32(8), newQuantity)
	assert.Equal(t, int32(10), stockAvailable)
	assert.Equal(t, int32(8), cartLineQuantity(t, env, userId, product.ID))

	// above stock is rejected without touching the line
	_, _, err = env.carts.UpdateItem(c, userId, request.UpdateCartItem{
		ProductId: product.ID,
		Quantity:  11,
	})
	var advisory *errors.StockAdvisoryError
	require.ErrorAs(t, err, &advisory)
	assert.Equal(t, int32(8), cartLineQuantity(t, env, userId, product.ID))
}

func TestUpdateItem_ZeroRemovesLine(t *testing.T) {
	env := setupTest(t)
	c := context.Background()

	userId := uuid.New()
	product := seedProduct(t, env, "Bombilla", "5.00", 10)
	_, err := env.carts.AddItem(c, userId, request.AddCartItem{
		ProductId: product.ID,
		Quantity:  2,
	})
	require.NoError(t, err)

	_, _, err = env.carts.UpdateItem(c, userId, request.UpdateCartItem{
		ProductId: product.ID,
		Quantity:  0,
	})
	require.NoError(t, err)

	cart, err := env.carts.GetCart(c, userId)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)

	_, _, err = env.carts.UpdateItem(c, userId, request.UpdateCartItem{
		ProductId: product.ID,
		Quantity:  0,
	})
	require.ErrorIs(t, err, errors.ErrCartItemNotFound)
}

func TestRemoveItem(t *testing.T) {
	env := setupTest(t)
	c := context.Background()

	userId := uuid.New()
	product := seedProduct(t, env, "Azucarera", "8.00", 10)

	// no cart yet
	err := env.carts.RemoveItem(c, userId, product.ID)
	require.ErrorIs(t, err, errors.ErrCartNotFound)

	_, err = env.carts.AddItem(c, userId, request.AddCartItem{
		ProductId: product.ID,
		Quantity:  1,
	})
	require.NoError(t, err)

	// a product that was never carted
	err = env.carts.RemoveItem(c, userId, uuid.New())
	require.ErrorIs(t, err, errors.ErrCartItemNotFound)

	err = env.carts.RemoveItem(c, userId, product.ID)
	require.NoError(t, err)

	cart, err := env.carts.GetCart(c, userId)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}

func TestAddItem_ConcurrentUpsertsShareOneCart(t *testing.T) {
	env := setupTest(t)
	c := context.Background()

	userId := uuid.New()
	productA := seedProduct(t, env, "Yerba Suave", "10.00", 50)
	productB := seedProduct(t, env, "Yerba Fuerte", "11.00", 50)

	done := make(chan error, 2)
	go func() {
		_, err := env.carts.AddItem(c, userId, request.AddCartItem{
			ProductId: productA.ID,
			Quantity:  1,
		})
		done <- err
	}()
	go func() {
		_, err := env.carts.AddItem(c, userId, request.AddCartItem{
			ProductId: productB.ID,
			Quantity:  1,
		})
		done <- err
	}()
	require.NoError(t, <-done)
	require.NoError(t, <-done)

	// both lines landed in the same active cart
	cart, err := env.carts.GetCart(c, userId)
	require.NoError(t, err)
	assert.Len(t, cart.Items, 2)

	var count int
	err = env.pool.QueryRow(c,
		"SELECT count(*) FROM carts WHERE owner_id = $1 AND status = 'active'", userId).
		Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
