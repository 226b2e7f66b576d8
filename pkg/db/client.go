package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/farmcart/pkg/config"
	"github.com/angelmondragon/farmcart/pkg/logger"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Client wraps the shared GORM connection to the embedded store.
type Client struct {
	conn *gorm.DB
}

// Pinger exposes the health check surface.
type Pinger interface {
	Ping(ctx context.Context) error
}

// SlowQueryThreshold is the latency above which statements are logged.
const SlowQueryThreshold = 200 * time.Millisecond

// New opens the store file described by cfg.
func New(ctx context.Context, cfg config.DBConfig, logg *logger.Logger) (*Client, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("database path is required")
	}

	conn, err := Open(cfg.DSN(), logg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, fmt.Errorf("getting sql db handle: %w", err)
	}
	// SQLite serializes writers, so one connection avoids SQLITE_BUSY
	// between pooled connections of the same process.
	maxOpen := max(cfg.MaxOpenConns, 1)
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxOpen)

	if logg != nil {
		logg.Info(logg.WithField(ctx, "db_path", cfg.Path), "database opened")
	}
	return &Client{conn: conn}, nil
}

// Open returns a gorm handle over a sqlite3 DSN with the store's defaults.
// Slow statements and driver errors go to logg; a nil logg silences gorm.
func Open(dsn string, logg *logger.Logger) (*gorm.DB, error) {
	glog := gormlogger.Discard
	if logg != nil {
		glog = gormlogger.New(gormWriter{logg: logg}, gormlogger.Config{
			SlowThreshold:             SlowQueryThreshold,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		})
	}

	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                 glog,
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening db connection: %w", err)
	}
	return conn, nil
}

// gormWriter feeds gorm's printf-style output into the structured logger.
type gormWriter struct {
	logg *logger.Logger
}

func (w gormWriter) Printf(format string, args ...any) {
	ctx := w.logg.WithOperation(context.Background(), "db.query")
	w.logg.Warn(ctx, strings.TrimSpace(fmt.Sprintf(format, args...)))
}

// DB returns the underlying GORM connection.
func (c *Client) DB() *gorm.DB {
	return c.conn
}

// SQL returns the database/sql handle, used by goose.
func (c *Client) SQL() (*sql.DB, error) {
	return c.conn.DB()
}

// Ping verifies the datasource is reachable.
func (c *Client) Ping(ctx context.Context) error {
	sqlDB, err := c.conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the store file.
func (c *Client) Close() error {
	sqlDB, err := c.conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// WithTx executes fn inside a transaction, rolling back on error/panic.
func (c *Client) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	tx := c.conn.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit().Error
}
