package service

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/arvglez/storefront/internal/errors"
	"github.com/arvglez/storefront/internal/log"
	inOtel "github.com/arvglez/storefront/internal/otel"
	"github.com/arvglez/storefront/internal/repository"
	"github.com/arvglez/storefront/internal/cache"
	"github.com/arvglez/storefront/product/otel"
	"github.com/arvglez/storefront/product/pkg/response"

	pgx "github.com/jackc/pgx/v5"
)

type ProductService struct {
	pool    *pgxpool.Pool
	queries *repository.Queries
	cache   *redis.Client
}

func NewProductService(
	pool *pgxpool.Pool,
	queries *repository.Queries,
	cache *redis.Client,
) ProductService {
	return ProductService{pool: pool, queries: queries, cache: cache}
}

func (svc ProductService) FindProducts(c context.Context) ([]response.Product, error) {
	c, span := otel.Tracer.Start(c, "ProductService FindProducts")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "ProductService FindProducts").
		Str(log.KeyCacheKey, cache.KeyProducts).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding products in cache").Logger()
	logger.Trace().Msg("finding products in cache")
	cached, err := svc.cache.Get(c, cache.KeyProducts).Result()
	if err == nil && cached != "" {
		products := []response.Product{}
		if err := json.Unmarshal([]byte(cached), &products); err == nil {
			span.AddEvent("found products in cache")
			logger.Debug().Msg("found products in cache")
			return products, nil
		}
	}
	logger.Trace().Msg("products not in cache")

	logger = logger.With().Str(log.KeyProcess, "finding products in database").Logger()
	logger.Trace().Msg("finding products in database")
	span.AddEvent("finding products in database")
	rows, err := svc.queries.FindProducts(c)
	if err != nil {
		err = fmt.Errorf("failed to find products in database with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	span.AddEvent("found products in database")
	logger.Info().Msg("found products in database")

	products := make([]response.Product, 0, len(rows))
	for _, row := range rows {
		products = append(products, row.Response())
	}

	logger = logger.With().Str(log.KeyProcess, "inserting products to cache").Logger()
	logger.Trace().Msg("inserting products to cache")
	encoded, err := json.Marshal(products)
	if err == nil {
		if err := svc.cache.Set(c, cache.KeyProducts, encoded, cache.TTL).Err(); err != nil {
			err = fmt.Errorf("failed to insert products to cache with error=%w", err)
			logger.Info().Err(err).Msg(err.Error())
		}
	}

	return products, nil
}

func (svc ProductService) FindProductById(
	c context.Context,
	id uuid.UUID,
) (response.Product, error) {
	c, span := otel.Tracer.Start(c, "ProductService FindProductById")
	defer span.End()

	cacheKey := cache.KeyProduct + id.String()
	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "ProductService FindProductById").
		Str(log.KeyProductID, id.String()).
		Str(log.KeyCacheKey, cacheKey).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding product in cache").Logger()
	logger.Trace().Msg("finding product in cache")
	cached, err := svc.cache.Get(c, cacheKey).Result()
	if err == nil && cached != "" {
		product := response.Product{}
		if err := json.Unmarshal([]byte(cached), &product); err == nil {
			span.AddEvent("found product in cache")
			logger.Debug().Msg("found product in cache")
			return product, nil
		}
	}
	logger.Trace().Msg("product not in cache")

	logger = logger.With().Str(log.KeyProcess, "finding product in database").Logger()
	logger.Trace().Msg("finding product in database")
	span.AddEvent("finding product in database")
	row, err := svc.queries.FindProductById(c, id)
	if err != nil {
		if stderrors.Is(err, pgx.ErrNoRows) {
			err = fmt.Errorf("failed to find product by id=%s with error=%w", id, errors.ErrProductNotFound)
			logger.Info().Err(err).Msg(err.Error())
			return response.Product{}, err
		}
		err = fmt.Errorf("failed to find product in database with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Product{}, err
	}
	span.AddEvent("found product in database")
	logger.Info().Msg("found product in database")

	product := row.Response()

	logger = logger.With().Str(log.KeyProcess, "inserting product to cache").Logger()
	logger.Trace().Msg("inserting product to cache")
	encoded, err := json.Marshal(product)
	if err == nil {
		if err := svc.cache.Set(c, cacheKey, encoded, cache.TTL).Err(); err != nil {
			err = fmt.Errorf("failed to insert product to cache with error=%w", err)
			logger.Info().Err(err).Msg(err.Error())
		}
	}

	return product, nil
}

// InvalidateProducts drops the listing key and the given product keys from
// the cache. Called after a committed checkout changed stock levels; cache
// errors are logged and swallowed, the database already holds the truth.
func (svc ProductService) InvalidateProducts(c context.Context, ids ...uuid.UUID) {
	c, span := otel.Tracer.Start(c, "ProductService InvalidateProducts")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "ProductService InvalidateProducts").
		Str(log.KeyProcess, "invalidating product cache").
		Logger()

	logger.Trace().Msg("invalidating product cache")
	if err := cache.InvalidateProducts(c, svc.cache, ids...); err != nil {
		err = fmt.Errorf("failed to invalidate product cache with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return
	}
	logger.Info().Msg("invalidated product cache")
}
