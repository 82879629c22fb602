package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/pressly/goose/v3"

	"github.com/angelmondragon/marketbill-backend/pkg/config"
	"github.com/angelmondragon/marketbill-backend/pkg/db"
	"github.com/angelmondragon/marketbill-backend/pkg/logger"
)

// EnsureSchema applies the embedded migrations in dev when auto-migrate is
// enabled. Everywhere else it only compares the database version with the
// newest embedded migration and warns when the schema is behind, leaving
// the upgrade to cmd/migrate. sqlite databases are skipped.
func EnsureSchema(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if cfg.DB.IsSQLite() {
		logg.Warn(ctx, "skipping goose migrations: schema is postgres only")
		return nil
	}
	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}
	ctx = logg.WithField(ctx, "env", cfg.App.Env)

	if cfg.App.IsDev() && cfg.FeatureFlags.AutoMigrate {
		logg.Info(ctx, "running goose migrations (dev auto-run)")
		if err := Run(ctx, sqlDB, DefaultDir, "up"); err != nil {
			return fmt.Errorf("running goose up: %w", err)
		}
		logg.Info(ctx, "goose migrations completed")
		return nil
	}

	current, latest, err := Versions(ctx, sqlDB)
	if err != nil {
		logg.Warn(logg.WithField(ctx, "error", err.Error()), "could not read schema version")
		return nil
	}
	if current < latest {
		logg.Warn(logg.WithFields(ctx, map[string]any{
			"db_version":     current,
			"latest_version": latest,
		}), "database schema is behind the embedded migrations")
	}
	return nil
}

// Versions returns the applied schema version and the newest embedded one.
func Versions(ctx context.Context, sqlDB *sql.DB) (current, latest int64, err error) {
	fsys, root := source(DefaultDir)
	versions, err := scan(fsys, root)
	if err != nil {
		return 0, 0, err
	}
	if n := len(versions); n > 0 {
		latest, err = strconv.ParseInt(versions[n-1], 10, 64)
		if err != nil {
			return 0, 0, err
		}
	}
	err = withGoose(DefaultDir, func(string) error {
		var verr error
		current, verr = goose.GetDBVersionContext(ctx, sqlDB)
		return verr
	})
	if err != nil {
		return 0, 0, fmt.Errorf("get db version: %w", err)
	}
	return current, latest, nil
}
