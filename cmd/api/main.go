package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/retailpoint/purchasing-backend/api/routes"
	cartsvc "github.com/retailpoint/purchasing-backend/internal/cart"
	"github.com/retailpoint/purchasing-backend/internal/catalog"
	checkoutsvc "github.com/retailpoint/purchasing-backend/internal/checkout"
	ordersvc "github.com/retailpoint/purchasing-backend/internal/orders"
	"github.com/retailpoint/purchasing-backend/internal/pricing"
	"github.com/retailpoint/purchasing-backend/internal/suppliers"
	"github.com/retailpoint/purchasing-backend/pkg/config"
	"github.com/retailpoint/purchasing-backend/pkg/db"
	"github.com/retailpoint/purchasing-backend/pkg/logger"
	"github.com/retailpoint/purchasing-backend/pkg/metrics"
	"github.com/retailpoint/purchasing-backend/pkg/migrate"
	"github.com/retailpoint/purchasing-backend/pkg/outbox"
	pkgredis "github.com/retailpoint/purchasing-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	var redisPinger pkgredis.Pinger
	var idempotencyStore pkgredis.IdempotencyStore
	if cfg.Redis.URL != "" || cfg.Redis.Address != "" {
		redisClient, err := pkgredis.New(context.Background(), cfg.Redis)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
		redisPinger = redisClient
		idempotencyStore = redisClient
	} else {
		logg.Warn(context.Background(), "redis not configured, idempotency guard disabled")
	}

	conn := dbClient.DB()
	cartRepo := cartsvc.NewRepository(conn)
	catalogRepo := catalog.NewRepository(conn)
	supplierRepo := suppliers.NewRepository(conn)
	orderRepo := ordersvc.NewRepository(conn)

	resolver, err := pricing.NewResolver(supplierRepo, pricing.SelectorForPolicy(cfg.Pricing.OfferPolicy))
	if err != nil {
		logg.Error(context.Background(), "failed to build pricing resolver", err)
		os.Exit(1)
	}

	cartService, err := cartsvc.NewService(cartRepo, catalogRepo, supplierRepo, resolver, dbClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to build cart service", err)
		os.Exit(1)
	}

	ordersService, err := ordersvc.NewService(orderRepo, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to build orders service", err)
		os.Exit(1)
	}

	checkoutMetrics := metrics.NewCheckoutMetrics(prometheus.DefaultRegisterer)
	outboxService := outbox.NewService(outbox.NewRepository(conn), logg)

	checkoutService, err := checkoutsvc.NewService(
		cartRepo,
		orderRepo,
		supplierRepo,
		resolver,
		ordersvc.PolicyFromConfig(cfg.Pricing),
		dbClient,
		outboxService,
		checkoutMetrics,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to build checkout service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:           cfg,
			Logger:           logg,
			DBPinger:         dbClient,
			RedisPinger:      redisPinger,
			IdempotencyStore: idempotencyStore,
			CartService:      cartService,
			CheckoutService:  checkoutService,
			OrdersService:    ordersService,
			CatalogRepo:      catalogRepo,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
