package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/angelmondragon/marketbill-backend/internal/cron"
	"github.com/angelmondragon/marketbill-backend/internal/subscriptions"
	"github.com/angelmondragon/marketbill-backend/pkg/asaas"
	"github.com/angelmondragon/marketbill-backend/pkg/config"
	"github.com/angelmondragon/marketbill-backend/pkg/db"
	"github.com/angelmondragon/marketbill-backend/pkg/instance"
	"github.com/angelmondragon/marketbill-backend/pkg/logger"
	"github.com/angelmondragon/marketbill-backend/pkg/metrics"
	"github.com/angelmondragon/marketbill-backend/pkg/migrate"
	"github.com/angelmondragon/marketbill-backend/pkg/outbox"
	"github.com/angelmondragon/marketbill-backend/pkg/redis"
)

const serviceName = "cron-worker"

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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": serviceName,
		"instance":    instance.GetID(),
	})

	if err := run(ctx, cfg, logg); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(ctx, "cron worker shutting down gracefully")
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

	gateway, err := asaas.NewClient(asaas.ConfigFromApp(cfg.Asaas), logg, metrics.NewBillingMetrics(prometheus.DefaultRegisterer))
	if err != nil {
		return err
	}

	subsRepo := subscriptions.NewRepository(dbClient.DB())
	outboxRepo := outbox.NewRepository(dbClient.DB())
	sync, err := subscriptions.NewSync(subscriptions.SyncParams{
		Repo:     subsRepo,
		TxRunner: dbClient,
		Outbox:   outbox.NewService(outboxRepo, logg),
		Logger:   logg,
	})
	if err != nil {
		return err
	}

	reconcile, err := cron.NewSubscriptionReconcileJob(cron.SubscriptionReconcileJobParams{
		Logger:  logg,
		Repo:    subsRepo,
		Gateway: gateway,
		Sync:    sync,
		Limit:   cfg.Cron.ReconcileLimit,
	})
	if err != nil {
		return err
	}
	retention, err := cron.NewOutboxRetentionJob(cron.OutboxRetentionJobParams{
		Logger:       logg,
		DB:           dbClient,
		Outbox:       outboxRepo,
		DLQ:          outbox.NewDLQRepository(dbClient.DB()),
		Retention:    cfg.Outbox.Retention,
		DLQRetention: cfg.Outbox.DLQRetention,
		MinAttempts:  cfg.Outbox.MaxAttempts,
	})
	if err != nil {
		return err
	}

	lock, err := redis.NewLock(redisClient, redisClient.LockKey("cron", cfg.App.Env), cfg.Cron.LockTTL)
	if err != nil {
		return err
	}

	// A job must finish while this replica still owns the lock.
	jobTimeout := cfg.Cron.JobTimeout
	if jobTimeout <= 0 {
		jobTimeout = cfg.Cron.LockTTL
	}
	service, err := cron.NewService(cron.ServiceParams{
		Logger:     logg,
		Registry:   cron.NewRegistry(reconcile, retention),
		Lock:       lock,
		Metrics:    metrics.NewCronJobMetrics(prometheus.DefaultRegisterer),
		Interval:   cfg.Cron.Interval,
		JobTimeout: jobTimeout,
	})
	if err != nil {
		return err
	}

	go func() {
		if err := metrics.Serve(ctx, ":"+cfg.App.Port, prometheus.DefaultGatherer); err != nil {
			logg.Error(ctx, "metrics server failed", err)
		}
	}()

	logg.Info(ctx, "starting cron worker")
	return service.Run(ctx)
}
