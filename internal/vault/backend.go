package vault

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/angelmondragon/farmcart/pkg/config"
	"github.com/angelmondragon/farmcart/pkg/db"
	"github.com/angelmondragon/farmcart/pkg/db/models"
	"github.com/angelmondragon/farmcart/pkg/redis"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Backend stores opaque sealed blobs by key.
type Backend interface {
	// Get returns nil, nil when the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// Delete is a no-op for absent keys.
	Delete(ctx context.Context, key string) error
}

// SQLiteBackend keeps sealed values in a dedicated store file, separate from
// the relational store.
type SQLiteBackend struct {
	db *gorm.DB
}

// OpenSQLite opens (and creates when missing) the vault file at path.
func OpenSQLite(path string, busyTimeout time.Duration) (*SQLiteBackend, error) {
	if path == "" {
		return nil, fmt.Errorf("vault path is required")
	}
	conn, err := db.Open(config.BuildSQLiteDSN(path, busyTimeout), nil)
	if err != nil {
		return nil, err
	}
	sqlDB, err := conn.DB()
	if err != nil {
		return nil, fmt.Errorf("getting vault sql handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	return NewSQLiteBackend(conn)
}

// NewSQLiteBackend prepares the vault table on an open handle.
func NewSQLiteBackend(conn *gorm.DB) (*SQLiteBackend, error) {
	if conn == nil {
		return nil, fmt.Errorf("vault db is required")
	}
	if err := conn.AutoMigrate(&models.VaultEntry{}); err != nil {
		return nil, fmt.Errorf("prepare vault table: %w", err)
	}
	return &SQLiteBackend{db: conn}, nil
}

func (b *SQLiteBackend) Get(ctx context.Context, key string) ([]byte, error) {
	var entry models.VaultEntry
	err := b.db.WithContext(ctx).Where("slot = ?", key).Take(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return entry.Value, nil
}

func (b *SQLiteBackend) Set(ctx context.Context, key string, value []byte) error {
	entry := models.VaultEntry{Key: key, Value: value}
	return b.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slot"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
}

func (b *SQLiteBackend) Delete(ctx context.Context, key string) error {
	return b.db.WithContext(ctx).Where("slot = ?", key).Delete(&models.VaultEntry{}).Error
}

// Close releases the vault file.
func (b *SQLiteBackend) Close() error {
	sqlDB, err := b.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// RedisBackend keeps sealed values under the fc:vault namespace.
type RedisBackend struct {
	client *redis.Client
}

func NewRedisBackend(client *redis.Client) (*RedisBackend, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	return &RedisBackend{client: client}, nil
}

func (b *RedisBackend) Get(ctx context.Context, key string) ([]byte, error) {
	return b.client.GetBytes(ctx, b.client.VaultKey(key))
}

func (b *RedisBackend) Set(ctx context.Context, key string, value []byte) error {
	return b.client.SetBytes(ctx, b.client.VaultKey(key), value)
}

func (b *RedisBackend) Delete(ctx context.Context, key string) error {
	return b.client.Del(ctx, b.client.VaultKey(key))
}
