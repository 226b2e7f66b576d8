package config

const EnvPrefix = "FARMCART"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	VaultBackendSQLite = "sqlite"
	VaultBackendRedis  = "redis"
)

const (
	EnvAppEnv       = "FARMCART_APP_ENV"
	EnvAppHost      = "FARMCART_APP_HOST"
	EnvPort         = "FARMCART_APP_PORT"
	EnvLogLevel     = "FARMCART_LOG_LEVEL"
	EnvCORSOrigins  = "FARMCART_APP_CORS_ORIGINS"
	EnvDBPath       = "FARMCART_DB_PATH"
	EnvDBBusy       = "FARMCART_DB_BUSY_TIMEOUT"
	EnvDBAutoMig    = "FARMCART_DB_AUTO_MIGRATE"
	EnvVaultBackend = "FARMCART_VAULT_BACKEND"
	EnvVaultPath    = "FARMCART_VAULT_PATH"
	EnvVaultKey     = "FARMCART_VAULT_KEY"
	EnvVaultKeyFile = "FARMCART_VAULT_KEY_FILE"
	EnvRedisURL     = "FARMCART_REDIS_URL"
	EnvRedisAddr    = "FARMCART_REDIS_ADDR"
	EnvMetrics      = "FARMCART_METRICS_ENABLED"
)
