package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/angelmondragon/marketbill-backend/pkg/config"
	"github.com/angelmondragon/marketbill-backend/pkg/db"
	"github.com/angelmondragon/marketbill-backend/pkg/logger"
	"github.com/angelmondragon/marketbill-backend/pkg/migrate"
)

const serviceName = "migrate"

var errUsage = errors.New("usage")

func main() {
	cmd := flag.String("cmd", "up", "migration command: up|down|status|redo|version|pending|create|validate")
	dir := flag.String("dir", migrate.DefaultDir, "goose migrations directory (default reads the embedded schema)")
	name := flag.String("name", "", "migration name (for create)")
	version := flag.String("version", "", "target version YYYYMMDDHHMMSS (for version)")
	flag.Parse()

	logg := logger.New(logger.Options{ServiceName: serviceName})
	_ = godotenv.Load()

	ctx := logg.WithFields(context.Background(), map[string]any{"cmd": *cmd, "dir": *dir})
	if err := run(ctx, logg, *cmd, *dir, *name, *version); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, err)
			flag.Usage()
			os.Exit(2)
		}
		logg.Error(ctx, "migration failed", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logg *logger.Logger, cmd, dir, name, version string) error {
	// create and validate only touch the filesystem.
	switch cmd {
	case "create":
		if name == "" {
			return fmt.Errorf("%w: -name is required for create", errUsage)
		}
		path, err := migrate.CreateSQLMigration(dir, name, time.Now())
		if err != nil {
			return err
		}
		fmt.Println("created migration:", path)
		return nil
	case "validate":
		if err := migrate.ValidateDir(dir); err != nil {
			return err
		}
		fmt.Println("migration validation passed")
		return nil
	case "version":
		if version == "" {
			return fmt.Errorf("%w: -version is required for version", errUsage)
		}
	case "up", "down", "status", "redo", "pending":
	default:
		return fmt.Errorf("%w: unknown -cmd %q", errUsage, cmd)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.DB.IsSQLite() {
		return errors.New("migrations target postgres; sqlite databases are not supported")
	}
	logg = logger.New(logger.Options{
		ServiceName: serviceName,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx = logg.WithField(ctx, "env", cfg.App.Env)

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer dbClient.Close()

	sqlDB, err := dbClient.DB().DB()
	if err != nil {
		return fmt.Errorf("extract sql.DB: %w", err)
	}

	logg.Info(ctx, "migrate ready")
	if cmd == "pending" {
		current, latest, err := migrate.Versions(ctx, sqlDB)
		if err != nil {
			return err
		}
		fmt.Printf("db version %d, latest embedded %d\n", current, latest)
		if current < latest {
			return errors.New("pending migrations")
		}
		return nil
	}
	if cmd == "version" {
		return migrate.MigrateToVersion(ctx, sqlDB, dir, version)
	}
	return migrate.Run(ctx, sqlDB, dir, cmd)
}
