// Package kv persists the small set of client state entries (tokens, cached
// profile, guest session id) behind one key-value contract.
package kv

import (
	"context"
	"errors"
	"fmt"

	"github.com/angelmondragon/coffeemarket/pkg/config"
	"github.com/angelmondragon/coffeemarket/pkg/db"
	"github.com/angelmondragon/coffeemarket/pkg/logger"
	"github.com/angelmondragon/coffeemarket/pkg/migrate"
	"github.com/angelmondragon/coffeemarket/pkg/redis"
)

// Persisted keys.
const (
	KeyAccessToken  = "accessToken"
	KeyRefreshToken = "refreshToken"
	KeyUser         = "user"
	KeySessionID    = "sessionId"
)

// ErrNotFound is returned by Get when the key has no value.
var ErrNotFound = errors.New("kv: key not found")

// Store is the persistence contract used by the session store. SetMany is
// atomic: either every pair is written or none is.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	SetMany(ctx context.Context, values map[string]string) error
	Delete(ctx context.Context, keys ...string) error
	Close() error
}

// Open picks the backend named by cfg.Storage.Driver.
func Open(ctx context.Context, cfg *config.Config, logg *logger.Logger) (Store, error) {
	if logg == nil {
		logg = logger.Nop()
	}
	driver := cfg.Storage.NormalizedDriver()
	ctx = logg.WithField(ctx, "storage_driver", driver)

	switch driver {
	case config.StorageDriverMemory:
		return NewMemory(), nil

	case config.StorageDriverSQLite, config.StorageDriverPostgres:
		client, err := db.New(ctx, cfg.Storage, logg)
		if err != nil {
			return nil, fmt.Errorf("opening state database: %w", err)
		}
		if err := migrate.MaybeRun(ctx, cfg.Storage, logg, client); err != nil {
			_ = client.Close()
			return nil, err
		}
		return NewSQL(client, cfg.App.DeviceID), nil

	case config.StorageDriverRedis:
		client, err := redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return nil, fmt.Errorf("opening state redis: %w", err)
		}
		return NewRedis(client, cfg.App.DeviceID), nil

	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
	}
}
