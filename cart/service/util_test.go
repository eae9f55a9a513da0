package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	pgx "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	pgxuuid "github.com/vgarvardt/pgx-google-uuid/v5"

	"github.com/arvglez/storefront/internal/repository"
)

type testEnv struct {
	pool    *pgxpool.Pool
	queries *repository.Queries
	carts   CartService
}

func setupTest(t *testing.T) *testEnv {
	t.Helper()
	c := context.Background()

	migrations := []string{
		filepath.Join("..", "..", "..", "db", "migrations", "000001_create_table_products.up.sql"),
		filepath.Join("..", "..", "..", "db", "migrations", "000002_create_table_addresses.up.sql"),
		filepath.Join("..", "..", "..", "db", "migrations", "000003_create_table_carts.up.sql"),
		filepath.Join("..", "..", "..", "db", "migrations", "000004_create_table_orders.up.sql"),
	}
	pgContainer, err := postgres.Run(c,
		"postgres:16-alpine",
		postgres.WithInitScripts(migrations...),
		postgres.WithDatabase("storefront"),
		postgres.WithUsername("storefront"),
		postgres.WithPassword("storefront"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pgContainer.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate postgres container: %s", err)
		}
	})

	dbUrl, err := pgContainer.ConnectionString(c, "sslmode=disable")
	require.NoError(t, err)

	pgxConfig, err := pgxpool.ParseConfig(dbUrl)
	require.NoError(t, err)
	pgxConfig.AfterConnect = func(c context.Context, conn *pgx.Conn) error {
		pgxuuid.Register(conn.TypeMap())
		return nil
	}
	pool, err := pgxpool.NewWithConfig(c, pgxConfig)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	queries := repository.New(pool)
	return &testEnv{
		pool:    pool,
		queries: queries,
		carts:   NewCartService(queries),
	}
}

func seedProduct(
	t *testing.T,
	env *testEnv,
	title string,
	price string,
	stock int32,
) repository.Product {
	t.Helper()
	product, err := env.queries.InsertProduct(context.Background(), repository.InsertProductParams{
		Title: title,
		Price: repository.NumericFromDecimal(decimal.RequireFromString(price)),
		Stock: stock,
	})
	require.NoError(t, err)
	return product
}

func cartLineQuantity(
	t *testing.T,
	env *testEnv,
	ownerId uuid.UUID,
	productId uuid.UUID,
) int32 {
	t.Helper()
	c := context.Background()
	cart, err := env.queries.FindActiveCartByOwnerId(c, ownerId)
	require.NoError(t, err)
	item, err := env.queries.FindCartItem(c, repository.FindCartItemParams{
		CartID:    cart.ID,
		ProductID: productId,
	})
	require.NoError(t, err)
	return item.Quantity
}
