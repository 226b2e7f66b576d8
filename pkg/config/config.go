package config

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App      AppConfig
	DB       DBConfig
	Password PasswordConfig
	Vault    VaultConfig
	Redis    RedisConfig
	Metrics  MetricsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.DB.Path) == "" {
		return fmt.Errorf("%s is required", EnvDBPath)
	}
	switch c.Vault.Backend {
	case VaultBackendSQLite:
		if strings.TrimSpace(c.Vault.Path) == "" {
			return fmt.Errorf("%s is required for the %s vault backend", EnvVaultPath, VaultBackendSQLite)
		}
	case VaultBackendRedis:
		if c.Redis.URL == "" && c.Redis.Address == "" {
			return fmt.Errorf("%s or %s is required for the %s vault backend", EnvRedisURL, EnvRedisAddr, VaultBackendRedis)
		}
	default:
		return fmt.Errorf("%s must be one of %s, %s (got %q)", EnvVaultBackend, VaultBackendSQLite, VaultBackendRedis, c.Vault.Backend)
	}
	if c.Vault.Key != "" {
		if _, err := c.Vault.DecodedKey(); err != nil {
			return err
		}
	}
	return nil
}

type AppConfig struct {
	Env          string `envconfig:"FARMCART_APP_ENV" default:"dev"`
	Host         string `envconfig:"FARMCART_APP_HOST" default:"127.0.0.1"`
	Port         string `envconfig:"FARMCART_APP_PORT" default:"8089"`
	LogLevel     string `envconfig:"FARMCART_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"FARMCART_LOG_WARN_STACK" default:"false"`
	// Origins allowed to call the local API, e.g. the Expo web preview.
	CORSOrigins []string `envconfig:"FARMCART_APP_CORS_ORIGINS" default:"http://localhost:8081,http://localhost:19006"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// Addr is the loopback listen address for the API.
func (a AppConfig) Addr() string {
	return a.Host + ":" + a.Port
}

type DBConfig struct {
	Path         string        `envconfig:"FARMCART_DB_PATH" default:"farmcart.db"`
	BusyTimeout  time.Duration `envconfig:"FARMCART_DB_BUSY_TIMEOUT" default:"5s"`
	MaxOpenConns int           `envconfig:"FARMCART_DB_MAX_OPEN_CONNS" default:"1"`
	AutoMigrate  bool          `envconfig:"FARMCART_DB_AUTO_MIGRATE" default:"true"`
}

// DSN builds the sqlite3 connection string for the store file.
func (d DBConfig) DSN() string {
	return BuildSQLiteDSN(d.Path, d.BusyTimeout)
}

// BuildSQLiteDSN appends the pragmas every store connection needs.
func BuildSQLiteDSN(path string, busyTimeout time.Duration) string {
	q := url.Values{}
	q.Set("_foreign_keys", "on")
	q.Set("_journal_mode", "WAL")
	if busyTimeout > 0 {
		q.Set("_busy_timeout", fmt.Sprintf("%d", busyTimeout.Milliseconds()))
	}
	return "file:" + path + "?" + q.Encode()
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"FARMCART_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"FARMCART_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"FARMCART_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"FARMCART_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"FARMCART_ARGON_KEY_LEN" default:"32"`
}

type VaultConfig struct {
	Backend string `envconfig:"FARMCART_VAULT_BACKEND" default:"sqlite"`
	Path    string `envconfig:"FARMCART_VAULT_PATH" default:"farmcart.vault"`
	Key     string `envconfig:"FARMCART_VAULT_KEY"`
	KeyFile string `envconfig:"FARMCART_VAULT_KEY_FILE" default:"farmcart.key"`
}

// DecodedKey returns the configured base64 key. An empty key returns nil.
func (v VaultConfig) DecodedKey() ([]byte, error) {
	if v.Key == "" {
		return nil, nil
	}
	raw, err := base64.StdEncoding.DecodeString(v.Key)
	if err != nil {
		return nil, fmt.Errorf("%s must be base64: %w", EnvVaultKey, err)
	}
	if len(raw) != 32 {
		return nil, fmt.Errorf("%s must decode to 32 bytes, got %d", EnvVaultKey, len(raw))
	}
	return raw, nil
}

type RedisConfig struct {
	URL          string        `envconfig:"FARMCART_REDIS_URL"`
	Address      string        `envconfig:"FARMCART_REDIS_ADDR"`
	Password     string        `envconfig:"FARMCART_REDIS_PASSWORD"`
	DB           int           `envconfig:"FARMCART_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"FARMCART_REDIS_POOL_SIZE" default:"4"`
	MinIdleConns int           `envconfig:"FARMCART_REDIS_MIN_IDLE_CONNS" default:"1"`
	DialTimeout  time.Duration `envconfig:"FARMCART_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"FARMCART_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"FARMCART_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type MetricsConfig struct {
	Enabled bool `envconfig:"FARMCART_METRICS_ENABLED" default:"true"`
}
