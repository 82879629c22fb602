package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"

	"github.com/angelmondragon/marketbill-backend/api/routes"
	"github.com/angelmondragon/marketbill-backend/internal/customers"
	"github.com/angelmondragon/marketbill-backend/internal/orders"
	"github.com/angelmondragon/marketbill-backend/internal/owners"
	"github.com/angelmondragon/marketbill-backend/internal/payments"
	"github.com/angelmondragon/marketbill-backend/internal/subscriptions"
	asaaswebhook "github.com/angelmondragon/marketbill-backend/internal/webhooks/asaas"
	"github.com/angelmondragon/marketbill-backend/pkg/asaas"
	"github.com/angelmondragon/marketbill-backend/pkg/config"
	"github.com/angelmondragon/marketbill-backend/pkg/db"
	"github.com/angelmondragon/marketbill-backend/pkg/logger"
	"github.com/angelmondragon/marketbill-backend/pkg/metrics"
	"github.com/angelmondragon/marketbill-backend/pkg/migrate"
	"github.com/angelmondragon/marketbill-backend/pkg/outbox"
	"github.com/angelmondragon/marketbill-backend/pkg/redis"
)

const (
	serviceName     = "api"
	webhookScope    = "asaas_webhook"
	shutdownTimeout = 15 * time.Second
)

func main() {
	logg := logger.New(logger.Options{ServiceName: serviceName})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}
	cfg.Service.Kind = serviceName

	logg = logger.New(logger.Options{
		ServiceName: serviceName,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	if cfg.Sentry.Enabled() {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.Sentry.DSN,
			Environment:      cfg.App.Env,
			EnableTracing:    cfg.Sentry.TracesSampleRate > 0,
			TracesSampleRate: cfg.Sentry.TracesSampleRate,
		}); err != nil {
			logg.Error(context.Background(), "failed to init sentry", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": serviceName,
	})

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(ctx, "api stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(ctx, "api shut down gracefully")
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) (err error) {
	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, dbClient.Close()) }()

	if err := migrate.EnsureSchema(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, redisClient.Close()) }()

	billingMetrics := metrics.NewBillingMetrics(prometheus.DefaultRegisterer)
	gateway, err := asaas.NewClient(asaas.ConfigFromApp(cfg.Asaas), logg, billingMetrics)
	if err != nil {
		return err
	}

	gormDB := dbClient.DB()
	ownersRepo := owners.NewRepository(gormDB)
	ordersRepo := orders.NewRepository(gormDB)
	subsRepo := subscriptions.NewRepository(gormDB)
	paymentsRepo := payments.NewRepository(gormDB)
	emitter := outbox.NewService(outbox.NewRepository(gormDB), logg)

	customerSvc, err := customers.NewService(customers.ServiceParams{
		Gateway:     gateway,
		Owners:      ownersRepo,
		Logger:      logg,
		Metrics:     billingMetrics,
		SettleDelay: cfg.Asaas.SettleDelay,
		RepairDelay: cfg.Asaas.RepairSettleDelay,
	})
	if err != nil {
		return err
	}

	lifecycle := subscriptions.ServiceParams{
		Repo:      subsRepo,
		Owners:    ownersRepo,
		Orders:    ordersRepo,
		Customers: customerSvc,
		Gateway:   gateway,
		TxRunner:  dbClient,
		Outbox:    emitter,
		Locks:     redisClient,
		LockTTL:   cfg.Subscriptions.CreateLockTTL,
		Logger:    logg,
		Metrics:   billingMetrics,
	}
	sellers, err := subscriptions.NewSellerService(lifecycle)
	if err != nil {
		return err
	}
	shoppers, err := subscriptions.NewShopperService(lifecycle)
	if err != nil {
		return err
	}

	sync, err := subscriptions.NewSync(subscriptions.SyncParams{
		Repo:     subsRepo,
		TxRunner: dbClient,
		Outbox:   emitter,
		Logger:   logg,
	})
	if err != nil {
		return err
	}
	guard, err := asaaswebhook.NewIdempotencyGuard(redisClient, cfg.Webhooks.IdempotencyTTL, webhookScope)
	if err != nil {
		return err
	}
	webhooks, err := asaaswebhook.NewService(asaaswebhook.ServiceParams{
		Owners:        ownersRepo,
		Subscriptions: subsRepo,
		Payments:      paymentsRepo,
		Sync:          sync,
		Gateway:       gateway,
		TxRunner:      dbClient,
		Outbox:        emitter,
		Guard:         guard,
		Logger:        logg,
		Metrics:       billingMetrics,
	})
	if err != nil {
		return err
	}

	handler := routes.NewRouter(routes.RouterParams{
		Config:   cfg,
		Logger:   logg,
		DB:       dbClient,
		Redis:    redisClient,
		Sellers:  sellers,
		Shoppers: shoppers,
		Webhooks: webhooks,
		Metrics:  promhttp.Handler(),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		// Subscription creation can spend several settle delays waiting on the gateway.
		WriteTimeout: 2 * time.Minute,
	}

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(logg.WithField(ctx, "addr", srv.Addr), "http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	logg.Info(ctx, "shutting down http server")
	return srv.Shutdown(shutdownCtx)
}
