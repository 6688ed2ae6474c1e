package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"github.com/cia-labs/nischte-app/api/routes"
	"github.com/cia-labs/nischte-app/internal/cart"
	"github.com/cia-labs/nischte-app/internal/checkout"
	"github.com/cia-labs/nischte-app/internal/handoff"
	"github.com/cia-labs/nischte-app/internal/offers"
	"github.com/cia-labs/nischte-app/internal/platform"
	"github.com/cia-labs/nischte-app/internal/reconcile"
	"github.com/cia-labs/nischte-app/pkg/config"
	"github.com/cia-labs/nischte-app/pkg/logger"
	"github.com/cia-labs/nischte-app/pkg/metrics"
	"github.com/cia-labs/nischte-app/pkg/redis"
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

	// Money fields serialize as JSON numbers, matching the platform wire
	// format.
	decimal.MarshalJSONWithoutQuotes = true

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	platformClient, err := platform.NewClient(cfg.Platform)
	if err != nil {
		logg.Error(context.Background(), "failed to create platform client", err)
		os.Exit(1)
	}

	mailbox, err := handoff.NewRedisMailbox(redisClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create hand-off mailbox", err)
		os.Exit(1)
	}

	cartService, err := cart.NewService(redisClient, cfg.Checkout.CartTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	offerService, err := offers.NewService(platformClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create offer service", err)
		os.Exit(1)
	}

	checkoutMetrics := metrics.NewCheckoutMetrics(prometheus.DefaultRegisterer)

	checkoutService, err := checkout.NewService(cartService, offerService, platformClient, mailbox, cfg.Checkout, checkoutMetrics, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	reconcileService, err := reconcile.NewService(mailbox, platformClient, redisClient, cartService, cfg.Checkout, checkoutMetrics, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create reconciliation service", err)
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
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, redisClient, cartService, offerService, checkoutService, reconcileService),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
