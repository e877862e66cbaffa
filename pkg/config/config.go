package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App     AppConfig
	Backend BackendConfig
	Storage StorageConfig
	Redis   RedisConfig
	Metrics MetricsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Backend.validate(); err != nil {
		return nil, err
	}
	if err := cfg.Storage.validate(cfg.Redis); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"COFFEEMARKET_APP_ENV" default:"dev"`
	LogLevel     string `envconfig:"COFFEEMARKET_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"COFFEEMARKET_LOG_WARN_STACK" default:"false"`
	DeviceID     string `envconfig:"COFFEEMARKET_DEVICE_ID" default:"local"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// BackendConfig points the client at the commerce backend.
type BackendConfig struct {
	BaseURL   string        `envconfig:"COFFEEMARKET_API_BASE_URL" default:"http://localhost:8080"`
	Timeout   time.Duration `envconfig:"COFFEEMARKET_API_TIMEOUT" default:"15s"`
	UserAgent string        `envconfig:"COFFEEMARKET_API_USER_AGENT" default:"coffeemarket-client/1.0"`
	Debug     bool          `envconfig:"COFFEEMARKET_API_DEBUG" default:"false"`
}

func (b BackendConfig) validate() error {
	trimmed := strings.TrimSpace(b.BaseURL)
	if trimmed == "" {
		return fmt.Errorf("%s is required", EnvAPIBaseURL)
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", EnvAPIBaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must be an http(s) url, got %q", EnvAPIBaseURL, b.BaseURL)
	}
	return nil
}

// StorageConfig selects where the persisted client state lives.
type StorageConfig struct {
	Driver      string `envconfig:"COFFEEMARKET_STORAGE_DRIVER" default:"sqlite"`
	SQLitePath  string `envconfig:"COFFEEMARKET_SQLITE_PATH" default:"coffeemarket.db"`
	PostgresDSN string `envconfig:"COFFEEMARKET_POSTGRES_DSN"`
	AutoMigrate bool   `envconfig:"COFFEEMARKET_AUTO_MIGRATE" default:"true"`
}

// NormalizedDriver lowercases the driver name.
func (s StorageConfig) NormalizedDriver() string {
	return strings.ToLower(strings.TrimSpace(s.Driver))
}

func (s StorageConfig) validate(redis RedisConfig) error {
	switch s.NormalizedDriver() {
	case StorageDriverMemory:
		return nil
	case StorageDriverSQLite:
		if strings.TrimSpace(s.SQLitePath) == "" {
			return fmt.Errorf("%s is required for the sqlite driver", EnvSQLitePath)
		}
		return nil
	case StorageDriverPostgres:
		if strings.TrimSpace(s.PostgresDSN) == "" {
			return fmt.Errorf("%s is required for the postgres driver", EnvPostgresDSN)
		}
		return nil
	case StorageDriverRedis:
		if redis.URL == "" && redis.Address == "" {
			return fmt.Errorf("either %s or %s is required for the redis driver", EnvRedisURL, EnvRedisAddr)
		}
		return nil
	default:
		return fmt.Errorf("unsupported %s %q", EnvStorageDriver, s.Driver)
	}
}

type RedisConfig struct {
	URL          string        `envconfig:"COFFEEMARKET_REDIS_URL"`
	Address      string        `envconfig:"COFFEEMARKET_REDIS_ADDR"`
	Password     string        `envconfig:"COFFEEMARKET_REDIS_PASSWORD"`
	DB           int           `envconfig:"COFFEEMARKET_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"COFFEEMARKET_REDIS_POOL_SIZE" default:"4"`
	MinIdleConns int           `envconfig:"COFFEEMARKET_REDIS_MIN_IDLE_CONNS" default:"1"`
	DialTimeout  time.Duration `envconfig:"COFFEEMARKET_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"COFFEEMARKET_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"COFFEEMARKET_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type MetricsConfig struct {
	Enabled   bool   `envconfig:"COFFEEMARKET_METRICS_ENABLED" default:"false"`
	Namespace string `envconfig:"COFFEEMARKET_METRICS_NAMESPACE" default:"coffeemarket"`
}
