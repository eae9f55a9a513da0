package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arvglez/storefront/internal/errors"
)

func TestFindProductById_ServesFromCacheUntilInvalidated(t *testing.T) {
	env := setupTest(t)
	c := context.Background()

	seeded := seedProduct(t, env, "Yerba Mate 1kg", "19.99", 5)

	product, err := env.products.FindProductById(c, seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, "19.99", product.Price.String())
	assert.Equal(t, int32(5), product.Stock)

	// a direct database write is invisible while the cache entry lives
	_, err = env.pool.Exec(c, "UPDATE products SET stock = 2 WHERE id = $1", seeded.ID)
	require.NoError(t, err)

	product, err = env.products.FindProductById(c, seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, int32(5), product.Stock)

	env.products.InvalidateProducts(c, seeded.ID)

	product, err = env.products.FindProductById(c, seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, int32(2), product.Stock)
}

func TestFindProducts_ListsAndCaches(t *testing.T) {
	env := setupTest(t)
	c := context.Background()

	seedProduct(t, env, "Termo Acero", "30.00", 3)
	seedProduct(t, env, "Bombilla", "5.00", 7)

	products, err := env.products.FindProducts(c)
	require.NoError(t, err)
	assert.Len(t, products, 2)

	seedProduct(t, env, "Azucarera", "8.00", 1)

	// listing still comes from the cache
	products, err = env.products.FindProducts(c)
	require.NoError(t, err)
	assert.Len(t, products, 2)

	env.products.InvalidateProducts(c)

	products, err = env.products.FindProducts(c)
	require.NoError(t, err)
	assert.Len(t, products, 3)
}

func TestFindProductById_NotFound(t *testing.T) {
	env := setupTest(t)

	_, err := env.products.FindProductById(context.Background(), uuid.New())
	require.ErrorIs(t, err, errors.ErrProductNotFound)
}
