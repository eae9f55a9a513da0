package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	pgx "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"
	pgxuuid "github.com/vgarvardt/pgx-google-uuid/v5"

	"github.com/arvglez/storefront/internal/repository"
)

type testEnv struct {
	pool     *pgxpool.Pool
	queries  *repository.Queries
	cache    *redis.Client
	products ProductService
}

func setupTest(t *testing.T) *testEnv {
	t.Helper()
	c := context.Background()

	migrations := []string{
		filepath.Join("..", "..", "..", "db", "migrations", "000001_create_table_products.up.sql"),
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

	redisContainer, err := tcredis.Run(c, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := redisContainer.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate redis container: %s", err)
		}
	})

	redisUrl, err := redisContainer.ConnectionString(c)
	require.NoError(t, err)
	redisOpts, err := redis.ParseURL(redisUrl)
	require.NoError(t, err)
	cache := redis.NewClient(redisOpts)
	t.Cleanup(func() { _ = cache.Close() })

	queries := repository.New(pool)
	return &testEnv{
		pool:     pool,
		queries:  queries,
		cache:    cache,
		products: NewProductService(pool, queries, cache),
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
