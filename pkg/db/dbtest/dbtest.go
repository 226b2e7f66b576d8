// Package dbtest opens migrated throwaway stores for tests.
package dbtest

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/angelmondragon/farmcart/pkg/config"
	"github.com/angelmondragon/farmcart/pkg/db"
	"github.com/angelmondragon/farmcart/pkg/migrate"
	"github.com/pressly/goose/v3"
)

// New returns a client over a fresh store file with every migration applied.
func New(t testing.TB) *db.Client {
	t.Helper()

	cfg := config.DBConfig{
		Path:         filepath.Join(t.TempDir(), "farmcart.db"),
		BusyTimeout:  time.Second,
		MaxOpenConns: 1,
	}
	client, err := db.New(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	sqlDB, err := client.SQL()
	if err != nil {
		t.Fatalf("sql handle: %v", err)
	}
	goose.SetLogger(goose.NopLogger())
	if err := migrate.Up(context.Background(), sqlDB); err != nil {
		t.Fatalf("migrate test store: %v", err)
	}
	return client
}

// SeedUser inserts a bare user row and returns its id.
func SeedUser(t testing.TB, client *db.Client, username string) int64 {
	t.Helper()
	var id int64
	err := client.DB().
		Raw(`INSERT INTO users (username, password_hash) VALUES (?, 'x') RETURNING id`, username).
		Scan(&id).Error
	if err != nil {
		t.Fatalf("seed user %q: %v", username, err)
	}
	return id
}
