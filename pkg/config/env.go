package config

const (
	EnvPrefix = "COFFEEMARKET"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	StorageDriverMemory   = "memory"
	StorageDriverSQLite   = "sqlite"
	StorageDriverPostgres = "postgres"
	StorageDriverRedis    = "redis"
)

const (
	EnvAppEnv        = "COFFEEMARKET_APP_ENV"
	EnvLogLevel      = "COFFEEMARKET_LOG_LEVEL"
	EnvDeviceID      = "COFFEEMARKET_DEVICE_ID"
	EnvAPIBaseURL    = "COFFEEMARKET_API_BASE_URL"
	EnvAPITimeout    = "COFFEEMARKET_API_TIMEOUT"
	EnvStorageDriver = "COFFEEMARKET_STORAGE_DRIVER"
	EnvSQLitePath    = "COFFEEMARKET_SQLITE_PATH"
	EnvPostgresDSN   = "COFFEEMARKET_POSTGRES_DSN"
	EnvRedisURL      = "COFFEEMARKET_REDIS_URL"
	EnvRedisAddr     = "COFFEEMARKET_REDIS_ADDR"
	EnvMetrics       = "COFFEEMARKET_METRICS_ENABLED"
)
