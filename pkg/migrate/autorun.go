package migrate

import (
	"context"
	"fmt"

	"github.com/angelmondragon/coffeemarket/pkg/config"
	"github.com/angelmondragon/coffeemarket/pkg/db"
	"github.com/angelmondragon/coffeemarket/pkg/logger"
)

// MaybeRun applies the embedded migrations when auto-migrate is enabled.
func MaybeRun(ctx context.Context, cfg config.StorageConfig, logg *logger.Logger, client *db.Client) error {
	if !cfg.AutoMigrate {
		return nil
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	if logg == nil {
		logg = logger.Nop()
	}
	ctx = logg.WithFields(ctx, map[string]any{"driver": cfg.NormalizedDriver(), "dialect": client.Dialect()})
	logg.Debug(ctx, "running goose migrations")

	if err := Up(ctx, sqlDB, client.Dialect()); err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}

	logg.Debug(ctx, "goose migrations completed")
	return nil
}
