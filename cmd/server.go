package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	addressController "github.com/arvglez/storefront/address/controller"
	addressService "github.com/arvglez/storefront/address/service"
	cartController "github.com/arvglez/storefront/cart/controller"
	cartService "github.com/arvglez/storefront/cart/service"
	"github.com/arvglez/storefront/internal/config"
	"github.com/arvglez/storefront/internal/constants"
	"github.com/arvglez/storefront/internal/infra"
	"github.com/arvglez/storefront/internal/log"
	"github.com/arvglez/storefront/internal/middleware"
	"github.com/arvglez/storefront/internal/otel"
	"github.com/arvglez/storefront/internal/repository"
	orderController "github.com/arvglez/storefront/order/controller"
	orderService "github.com/arvglez/storefront/order/service"
	productController "github.com/arvglez/storefront/product/controller"
	productService "github.com/arvglez/storefront/product/service"
)

func RunServer(c context.Context) {
	cfg := config.Get(c, constants.AppName)

	logger := log.InitLogger(cfg.Application.LogPath, cfg.Application.Env).
		With().
		Str(log.KeyAppName, constants.AppName).
		Str(log.KeyTag, "main RunServer").
		Logger()
	c = logger.WithContext(c)

	// prices and totals serialize as JSON numbers, not quoted strings
	decimal.MarshalJSONWithoutQuotes = true

	logger.Info().Str(log.KeyProcess, "init otel").Msg("initializing otel sdk")
	otelShutdowns, err := otel.InitOtelSdk(c, constants.AppName, cfg.Otel)
	if err != nil {
		logger.Error().
			Err(err).
			Str(log.KeyProcess, "init otel").
			Msgf("failed initializing otel sdk with error=%s", err.Error())
	}
	logger.Info().Str(log.KeyProcess, "init otel").Msg("initialized otel sdk")

	logger.Info().Str(log.KeyProcess, "init database").Msg("initializing database")
	pool := infra.NewDatabaseClient(c, cfg.Database)
	defer pool.Close()
	logger.Info().Str(log.KeyProcess, "init database").Msg("initialized database")

	logger.Info().Str(log.KeyProcess, "init cache").Msg("initializing cache")
	cache := infra.NewCacheClient(c, cfg.Cache)
	defer func() {
		if err := cache.Close(); err != nil {
			logger.Error().
				Err(err).
				Str(log.KeyProcess, "shutdown server").
				Msgf("failed closing cache client with error=%s", err.Error())
		}
	}()
	logger.Info().Str(log.KeyProcess, "init cache").Msg("initialized cache")

	logger.Info().Str(log.KeyProcess, "init services").Msg("initializing services")
	queries := repository.New(pool)
	products := productService.NewProductService(pool, queries, cache)
	carts := cartService.NewCartService(queries)
	addresses := addressService.NewAddressService(queries)
	orders := orderService.NewOrderService(pool, queries, cache)
	logger.Info().Str(log.KeyProcess, "init services").Msg("initialized services")

	logger.Info().Str(log.KeyProcess, "init router").Msg("initializing router")
	router := mux.NewRouter()
	router.Use(
		otelmux.Middleware(constants.AppName),
		middleware.Logging,
		middleware.RecoverPanic,
	)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	productController.AttachProductController(router, &products)

	authRouter := router.NewRoute().Subrouter()
	authRouter.Use(middleware.Auth(cfg.Application.SecretKey))
	cartController.AttachCartController(authRouter, &carts)
	addressController.AttachAddressController(authRouter, &addresses)
	orderController.AttachOrderController(authRouter, &orders)

	adminRouter := router.PathPrefix("/admin").Subrouter()
	adminRouter.Use(middleware.Auth(cfg.Application.SecretKey), middleware.Admin)
	orderController.AttachAdminOrderController(adminRouter, &orders)
	logger.Info().Str(log.KeyProcess, "init router").Msg("initialized router")

	server := http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Application.Host, cfg.Application.Port),
		BaseContext:  func(net.Listener) context.Context { return c },
		Handler:      otelhttp.NewHandler(router, constants.AppName),
		ReadTimeout:  45 * time.Second,
		WriteTimeout: 45 * time.Second,
	}

	go func() {
		logger.Info().
			Str(log.KeyProcess, "start server").
			Msgf("start listening request at %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().
				Err(err).
				Str(log.KeyProcess, "start server").
				Msgf("error=%s occured while server is running", err.Error())
		}
	}()

	<-c.Done()
	logger.Info().
		Str(log.KeyProcess, "shutdown server").
		Msg("received interruption signal shutting down")

	if err := otel.ShutdownOtel(c, otelShutdowns); err != nil {
		logger.Error().
			Err(err).
			Str(log.KeyProcess, "shutdown server").
			Msgf("failed shutting down otel with error=%s", err.Error())
	}
	logger.Info().Str(log.KeyProcess, "shutdown server").Msg("shutdown otel")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().
			Err(err).
			Str(log.KeyProcess, "shutdown server").
			Msgf("failed shutting down http server with error=%s", err.Error())
	}
	logger.Info().Str(log.KeyProcess, "shutdown server").Msg("shutdown http server")
}
