package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/marketbill-backend/pkg/config"
	"github.com/angelmondragon/marketbill-backend/pkg/db"
	"github.com/angelmondragon/marketbill-backend/pkg/instance"
	"github.com/angelmondragon/marketbill-backend/pkg/logger"
	"github.com/angelmondragon/marketbill-backend/pkg/metrics"
	"github.com/angelmondragon/marketbill-backend/pkg/migrate"
	"github.com/angelmondragon/marketbill-backend/pkg/outbox"
	"github.com/angelmondragon/marketbill-backend/pkg/outbox/registry"
	"github.com/angelmondragon/marketbill-backend/pkg/pubsub"
)

const serviceName = "outbox-publisher"

func main() {
	var dlqCmd dlqCommand
	flag.BoolVar(&dlqCmd.list, "list-dlq", false, "print dead-lettered events as JSON lines and exit")
	flag.StringVar(&dlqCmd.reason, "reason", "", "with -list-dlq, only show this error reason")
	flag.IntVar(&dlqCmd.limit, "limit", 50, "with -list-dlq, maximum rows to print")
	flag.StringVar(&dlqCmd.requeue, "requeue", "", "requeue the dead-lettered outbox event with this id and exit")
	flag.Parse()

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

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.EnsureSchema(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to check schema migrations", err)
		os.Exit(1)
	}

	outboxRepo := outbox.NewRepository(dbClient.DB())
	dlqRepo := outbox.NewDLQRepository(dbClient.DB())
	if dlqCmd.requested() {
		if err := runDLQCommand(ctx, logg, dlqCmd, dlqRepo, outboxRepo, os.Stdout); err != nil {
			logg.Error(ctx, "dlq command failed", err)
			os.Exit(1)
		}
		return
	}

	eventRegistry, err := registry.NewEventRegistry(cfg.PubSub)
	if err != nil {
		logg.Error(ctx, "failed to build event registry", err)
		os.Exit(1)
	}

	pubsubClient, err := pubsub.NewClient(ctx, cfg.GCP, eventRegistry.Topics(), logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap pubsub", err)
		os.Exit(1)
	}
	defer func() {
		if err := pubsubClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing pubsub client", err)
		}
	}()

	promRegistry := prometheus.NewRegistry()
	service, err := NewService(ServiceParams{
		Config:        cfg.Outbox,
		Logger:        logg,
		DB:            dbClient,
		PubSub:        pubsubClient,
		Repository:    outboxRepo,
		DLQRepository: dlqRepo,
		Registry:      eventRegistry,
		Metrics:       metrics.NewOutboxMetrics(promRegistry),
	})
	if err != nil {
		logg.Error(ctx, "failed to create outbox publisher", err)
		os.Exit(1)
	}

	go func() {
		if err := metrics.Serve(ctx, ":"+cfg.App.Port, promRegistry); err != nil {
			logg.Error(ctx, "metrics server failed", err)
		}
	}()

	logg.Info(logg.WithField(ctx, "topics", eventRegistry.Topics()), "starting outbox publisher")
	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "outbox publisher stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(ctx, "outbox publisher shutting down gracefully")
}
