package service

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	pgx "github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arvglez/storefront/internal/cache"
	"github.com/arvglez/storefront/internal/errors"
	"github.com/arvglez/storefront/internal/repository"
	"github.com/arvglez/storefront/order/pkg/request"
)

func TestCheckout_Success(t *testing.T) {
	env := setupTest(t)
	c := context.Background()

	userId := uuid.New()
	product := seedProduct(t, env, "Yerba Mate 1kg", "19.99", 5)
	address := seedAddress(t, env, userId)
	cart := seedCartLine(t, env, userId, product.ID, 3)

	order, err := env.orders.Checkout(c, userId, request.Checkout{AddressId: address.ID})
	require.NoError(t, err)

	assert.Equal(t, userId, order.OwnerId)
	assert.Equal(t, address.ID, order.AddressId)
	assert.Equal(t, string(repository.OrderStatusPending), order.Status)
	assert.Equal(t, "59.97", order.Total.String())
	require.Len(t, order.Items, 1)
	assert.Equal(t, product.ID, order.Items[0].ProductId)
	assert.Equal(t, int32(3), order.Items[0].Quantity)
	assert.Equal(t, "19.99", order.Items[0].UnitPrice.String())
	assert.Equal(t, "59.97", order.Items[0].Subtotal.String())
	require.NotNil(t, order.Address)
	assert.Equal(t, address.Street, order.Address.Street)

	assert.Equal(t, int32(2), productStock(t, env, product.ID))

	// the cart is consumed, a later mutation starts a fresh one
	_, err = env.queries.FindActiveCartByOwnerId(c, userId)
	require.ErrorIs(t, err, pgx.ErrNoRows)
	fresh, err := env.queries.UpsertActiveCart(c, userId)
	require.NoError(t, err)
	assert.NotEqual(t, cart.ID, fresh.ID)

	persisted, err := env.queries.FindOrderById(c, order.ID)
	require.NoError(t, err)
	assert.Equal(t, repository.OrderStatusPending, persisted.Status)
}

func TestCheckout_PriceSnapshotSurvivesRepricing(t *testing.T) {
	env := setupTest(t)
	c := context.Background()

	userId := uuid.New()
	product := seedProduct(t, env, "Termo Acero", "30.00", 10)
	address := seedAddress(t, env, userId)
	seedCartLine(t, env, userId, product.ID, 2)

	order, err := env.orders.Checkout(c, userId, request.Checkout{AddressId: address.ID})
	require.NoError(t, err)

	_, err = env.pool.Exec(c, "UPDATE products SET price = 99.99 WHERE id = $1", product.ID)
	require.NoError(t, err)

	items, err := env.queries.FindOrderItemsWithProduct(c, order.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "30.00", repository.DecimalFromNumeric(items[0].UnitPrice).String())
	assert.Equal(t, "60.00", repository.DecimalFromNumeric(items[0].Subtotal).String())
}

func TestCheckout_DropsCachedProductsAfterCommit(t *testing.T) {
	env := setupTest(t)
	c := context.Background()

	userId := uuid.New()
	product := seedProduct(t, env, "Mate Imperial", "25.00", 5)
	address := seedAddress(t, env, userId)
	seedCartLine(t, env, userId, product.ID, 2)

	productKey := cache.KeyProduct + product.ID.String()
	require.NoError(t, env.cache.Set(c, productKey, []byte(`{}`), cache.TTL).Err())
	require.NoError(t, env.cache.Set(c, cache.KeyProducts, []byte(`[]`), cache.TTL).Err())

	_, err := env.orders.Checkout(c, userId, request.Checkout{AddressId: address.ID})
	require.NoError(t, err)

	remaining, err := env.cache.Exists(c, productKey, cache.KeyProducts).Result()
	require.NoError(t, err)
	assert.Zero(t, remaining)
}

func TestCheckout_StockShortfallRollsBackEverything(t *testing.T) {
	env := setupTest(t)
	c := context.Background()

	userId := uuid.New()
	product := seedProduct(t, env, "Mate Imperial", "45.50", 2)
	address := seedAddress(t, env, userId)
	cart := seedCartLine(t, env, userId, product.ID, 5)

	_, err := env.orders.Checkout(c, userId, request.Checkout{AddressId: address.ID})

	var checkoutErr *errors.CheckoutError
	require.ErrorAs(t, err, &checkoutErr)
	assert.Equal(t, errors.CheckoutStockError, checkoutErr.Code)
	require.Len(t, checkoutErr.Shortfalls, 1)
	assert.Equal(t, product.ID, checkoutErr.Shortfalls[0].ProductID)
	assert.Equal(t, int32(2), checkoutErr.Shortfalls[0].Available)
	assert.Equal(t, int32(5), checkoutErr.Shortfalls[0].Requested)

	// nothing committed: stock untouched, cart still active, no orders
	assert.Equal(t, int32(2), productStock(t, env, product.ID))
	active, err := env.queries.FindActiveCartByOwnerId(c, userId)
	require.NoError(t, err)
	assert.Equal(t, cart.ID, active.ID)
	orders, err := env.queries.FindOrdersByOwnerId(c, userId)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestCheckout_ReportsEveryShortfall(t *testing.T) {
	env := setupTest(t)
	c := context.Background()

	userId := uuid.New()
	ok := seedProduct(t, env, "Bombilla", "5.00", 10)
	shortA := seedProduct(t, env, "Yerba Orgánica", "12.00", 1)
	shortB := seedProduct(t, env, "Azucarera", "8.00", 0)
	address := seedAddress(t, env, userId)
	seedCartLine(t, env, userId, ok.ID, 2)
	seedCartLine(t, env, userId, shortA.ID, 3)
	seedCartLine(t, env, userId, shortB.ID, 1)

	_, err := env.orders.Checkout(c, userId, request.Checkout{AddressId: address.ID})

	var checkoutErr *errors.CheckoutError
	require.ErrorAs(t, err, &checkoutErr)
	assert.Equal(t, errors.CheckoutStockError, checkoutErr.Code)
	require.Len(t, checkoutErr.Shortfalls, 2)

	reported := map[uuid.UUID]errors.Shortfall{}
	for _, shortfall := range checkoutErr.Shortfalls {
		reported[shortfall.ProductID] = shortfall
	}
	assert.Equal(t, int32(1), reported[shortA.ID].Available)
	assert.Equal(t, int32(3), reported[shortA.ID].Requested)
	assert.Equal(t, int32(0), reported[shortB.ID].Available)
	assert.Equal(t, int32(1), reported[shortB.ID].Requested)

	// the sufficient line is not decremented either
	assert.Equal(t, int32(10), productStock(t, env, ok.ID))
}

func TestCheckout_EmptyCart(t *testing.T) {
	env := setupTest(t)
	c := context.Background()

	userId := uuid.New()
	address := seedAddress(t, env, userId)

	_, err := env.orders.Checkout(c, userId, request.Checkout{AddressId: address.ID})

	var checkoutErr *errors.CheckoutError
	require.ErrorAs(t, err, &checkoutErr)
	assert.Equal(t, errors.CheckoutEmptyCart, checkoutErr.Code)
}

func TestCheckout_InvalidAddress(t *testing.T) {
	env := setupTest(t)
	c := context.Background()

	userId := uuid.New()
	otherUser := uuid.New()
	product := seedProduct(t, env, "Pava Eléctrica", "80.00", 3)
	foreignAddress := seedAddress(t, env, otherUser)
	seedCartLine(t, env, userId, product.ID, 1)

	for _, addressId := range []uuid.UUID{foreignAddress.ID, uuid.New()} {
		_, err := env.orders.Checkout(c, userId, request.Checkout{AddressId: addressId})

		var checkoutErr *errors.CheckoutError
		require.ErrorAs(t, err, &checkoutErr)
		assert.Equal(t, errors.CheckoutInvalidAddress, checkoutErr.Code)
	}

	assert.Equal(t, int32(3), productStock(t, env, product.ID))
}

func TestCheckout_ConcurrentBuyersNeverOversell(t *testing.T) {
	env := setupTest(t)
	c := context.Background()

	product := seedProduct(t, env, "Edición Limitada", "150.00", 5)

	buyerA := uuid.New()
	buyerB := uuid.New()
	addressA := seedAddress(t, env, buyerA)
	addressB := seedAddress(t, env, buyerB)
	seedCartLine(t, env, buyerA, product.ID, 3)
	seedCartLine(t, env, buyerB, product.ID, 3)

	results := make([]error, 2)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, results[0] = env.orders.Checkout(c, buyerA, request.Checkout{AddressId: addressA.ID})
	}()
	go func() {
		defer wg.Done()
		_, results[1] = env.orders.Checkout(c, buyerB, request.Checkout{AddressId: addressB.ID})
	}()
	wg.Wait()

	succeeded := 0
	for _, err := range results {
		if err == nil {
			succeeded++
			continue
		}
		var checkoutErr *errors.CheckoutError
		require.ErrorAs(t, err, &checkoutErr)
		assert.Equal(t, errors.CheckoutStockError, checkoutErr.Code)
	}
	assert.Equal(t, 1, succeeded)

	assert.Equal(t, int32(2), productStock(t, env, product.ID))
	allOrders, err := env.queries.FindOrders(c)
	require.NoError(t, err)
	assert.Len(t, allOrders, 1)
}

func checkoutOrder(t *testing.T, env *testEnv, stock int32) (uuid.UUID, uuid.UUID) {
	t.Helper()
	c := context.Background()
	userId := uuid.New()
	product := seedProduct(t, env, "Producto de Prueba", "10.00", stock)
	address := seedAddress(t, env, userId)
	seedCartLine(t, env, userId, product.ID, 1)
	order, err := env.orders.Checkout(c, userId, request.Checkout{AddressId: address.ID})
	require.NoError(t, err)
	return order.ID, userId
}

func TestUpdateStatus_FollowsLifecycle(t *testing.T) {
	env := setupTest(t)
	c := context.Background()

	orderId, _ := checkoutOrder(t, env, 5)

	order, err := env.orders.UpdateStatus(c, orderId, repository.OrderStatusProcessing)
	require.NoError(t, err)
	assert.Equal(t, string(repository.OrderStatusProcessing), order.Status)

	order, err = env.orders.UpdateStatus(c, orderId, repository.OrderStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, string(repository.OrderStatusCompleted), order.Status)

	// completed is terminal
	_, err = env.orders.UpdateStatus(c, orderId, repository.OrderStatusProcessing)
	require.ErrorIs(t, err, errors.ErrInvalidTransition)
	_, err = env.orders.UpdateStatus(c, orderId, repository.OrderStatusCancelled)
	require.ErrorIs(t, err, errors.ErrInvalidTransition)
}

func TestUpdateStatus_RejectsSkippingStates(t *testing.T) {
	env := setupTest(t)
	c := context.Background()

	orderId, _ := checkoutOrder(t, env, 5)

	_, err := env.orders.UpdateStatus(c, orderId, repository.OrderStatusCompleted)
	require.ErrorIs(t, err, errors.ErrInvalidTransition)

	_, err = env.orders.UpdateStatus(c, uuid.New(), repository.OrderStatusProcessing)
	require.ErrorIs(t, err, errors.ErrOrderNotFound)
}

func TestFindOrderById_ScopedToOwner(t *testing.T) {
	env := setupTest(t)
	c := context.Background()

	orderId, ownerId := checkoutOrder(t, env, 5)

	order, err := env.orders.FindOrderById(c, ownerId, orderId, false)
	require.NoError(t, err)
	assert.Equal(t, orderId, order.ID)
	require.Len(t, order.Items, 1)
	require.NotNil(t, order.Address)

	// another customer cannot see it, an administrator can
	_, err = env.orders.FindOrderById(c, uuid.New(), orderId, false)
	require.ErrorIs(t, err, errors.ErrOrderNotFound)
	_, err = env.orders.FindOrderById(c, uuid.New(), orderId, true)
	require.NoError(t, err)
}

func TestDeleteOrder_OwnerNeedsTerminalStatus(t *testing.T) {
	env := setupTest(t)
	c := context.Background()

	orderId, ownerId := checkoutOrder(t, env, 5)

	err := env.orders.DeleteOrder(c, ownerId, orderId, false)
	require.ErrorIs(t, err, errors.ErrOrderNotDeletable)

	_, err = env.orders.UpdateStatus(c, orderId, repository.OrderStatusCancelled)
	require.NoError(t, err)

	err = env.orders.DeleteOrder(c, ownerId, orderId, false)
	require.NoError(t, err)

	_, err = env.queries.FindOrderById(c, orderId)
	require.ErrorIs(t, err, pgx.ErrNoRows)
}

func TestDeleteOrder_AdminBypassesStatusGuard(t *testing.T) {
	env := setupTest(t)
	c := context.Background()

	orderId, ownerId := checkoutOrder(t, env, 5)

	// someone else's pending order: invisible to customers, deletable by admin
	err := env.orders.DeleteOrder(c, uuid.New(), orderId, false)
	require.ErrorIs(t, err, errors.ErrOrderNotFound)

	err = env.orders.DeleteOrder(c, uuid.New(), orderId, true)
	require.NoError(t, err)

	orders, err := env.queries.FindOrdersByOwnerId(c, ownerId)
	require.NoError(t, err)
	assert.Empty(t, orders)
}
