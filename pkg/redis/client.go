package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/farmcart/pkg/config"
	"github.com/angelmondragon/farmcart/pkg/logger"
	"github.com/redis/go-redis/v9"
)

const (
	keyNamespace = "fc"
	vaultPrefix  = "vault"
)

var errNotInitialized = errors.New("redis client not initialized")

// Cmdable is the subset of go-redis commands the client relies on.
type Cmdable interface {
	Ping(context.Context) *redis.StatusCmd
	Set(context.Context, string, any, time.Duration) *redis.StatusCmd
	Get(context.Context, string) *redis.StringCmd
	Del(context.Context, ...string) *redis.IntCmd
}

// Client wraps the redis connection helpers used by the vault backend.
type Client struct {
	store Cmdable
	raw   *redis.Client
}

// New bootstraps a Redis client with pooling/timeouts and verifies connectivity.
func New(ctx context.Context, cfg config.RedisConfig, logg *logger.Logger) (*Client, error) {
	opts, err := optionsFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	raw := redis.NewClient(opts)
	if err := raw.Ping(ctx).Err(); err != nil {
		_ = raw.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	if logg != nil {
		logg.Info(logg.WithField(ctx, "redis_addr", opts.Addr), "redis connection established")
	}
	return &Client{store: raw, raw: raw}, nil
}

// NewFromCmdable wraps an existing command surface, used by tests.
func NewFromCmdable(store Cmdable) *Client {
	return &Client{store: store}
}

// optionsFromConfig prefers URL over Address; pool and timeout settings
// fill whatever the URL left unset.
func optionsFromConfig(cfg config.RedisConfig) (*redis.Options, error) {
	opts := &redis.Options{Addr: cfg.Address, Password: cfg.Password}
	switch {
	case cfg.URL != "":
		parsed, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("parsing redis url: %w", err)
		}
		opts = parsed
	case cfg.Address == "":
		return nil, errors.New("redis url or address is required")
	}

	orDefault(&opts.DB, cfg.DB)
	orDefault(&opts.PoolSize, cfg.PoolSize)
	orDefault(&opts.MinIdleConns, cfg.MinIdleConns)
	orDefault(&opts.DialTimeout, cfg.DialTimeout)
	orDefault(&opts.ReadTimeout, cfg.ReadTimeout)
	orDefault(&opts.WriteTimeout, cfg.WriteTimeout)
	return opts, nil
}

func orDefault[T int | time.Duration](dst *T, fallback T) {
	if *dst == 0 {
		*dst = fallback
	}
}

// SetBytes stores a binary value without expiry.
func (c *Client) SetBytes(ctx context.Context, key string, value []byte) error {
	if c.store == nil {
		return errNotInitialized
	}
	return c.store.Set(ctx, key, value, 0).Err()
}

// GetBytes returns the value at key, or nil when the key is absent.
func (c *Client) GetBytes(ctx context.Context, key string) ([]byte, error) {
	if c.store == nil {
		return nil, errNotInitialized
	}
	value, err := c.store.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Del removes the provided keys. Missing keys are not an error.
func (c *Client) Del(ctx context.Context, keys ...string) error {
	if c.store == nil {
		return errNotInitialized
	}
	return c.store.Del(ctx, keys...).Err()
}

// VaultKey returns the namespaced key for a vault slot.
func (c *Client) VaultKey(name string) string {
	return c.buildKey(vaultPrefix, name)
}

// Ping verifies the connection.
func (c *Client) Ping(ctx context.Context) error {
	if c.store == nil {
		return errNotInitialized
	}
	return c.store.Ping(ctx).Err()
}

// Close shuts down the underlying client if available.
func (c *Client) Close() error {
	if c.raw == nil {
		return nil
	}
	return c.raw.Close()
}

func (c *Client) buildKey(parts ...string) string {
	clean := []string{keyNamespace}
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		clean = append(clean, part)
	}
	return strings.Join(clean, ":")
}
