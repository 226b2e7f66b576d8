package migrate_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/angelmondragon/farmcart/pkg/db/dbtest"
	"github.com/angelmondragon/farmcart/pkg/migrate"
)

func TestEmbeddedMigrationsCreateSchema(t *testing.T) {
	client := dbtest.New(t)

	for _, table := range []string{"users", "cart", "orders"} {
		var count int64
		err := client.DB().
			Raw(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, table).
			Scan(&count).Error
		if err != nil {
			t.Fatalf("inspect %s: %v", table, err)
		}
		if count != 1 {
			t.Fatalf("expected table %s to exist", table)
		}
	}

	sqlDB, err := client.SQL()
	if err != nil {
		t.Fatalf("sql handle: %v", err)
	}
	version, err := migrate.CurrentVersion(context.Background(), sqlDB)
	if err != nil {
		t.Fatalf("current version: %v", err)
	}
	if version != 20260301090200 {
		t.Fatalf("unexpected schema version %d", version)
	}
}

func TestCartMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "*_create_cart.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS cart",
		"FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE",
		"UNIQUE (user_id, product_id)",
		"CHECK (quantity >= 1)",
		"DROP TABLE IF EXISTS cart",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestQuantityCheckRejectsZero(t *testing.T) {
	client := dbtest.New(t)
	userID := dbtest.SeedUser(t, client, "alice")

	err := client.DB().Exec(
		`INSERT INTO cart (user_id, product_id, quantity) VALUES (?, 'p1', 0)`, userID,
	).Error
	if err == nil {
		t.Fatal("expected CHECK constraint to reject zero quantity")
	}
}

func TestCreateAndValidate(t *testing.T) {
	dir := t.TempDir()

	if err := migrate.ValidateDir(dir); err == nil {
		t.Fatal("expected empty dir to fail validation")
	}

	path, err := migrate.CreateSQLMigration(dir, "Add Farm Index!")
	if err != nil {
		t.Fatalf("create migration: %v", err)
	}
	if !strings.HasSuffix(path, "_add_farm_index.sql") {
		t.Fatalf("unexpected migration path %q", path)
	}
	if err := migrate.ValidateDir(dir); err != nil {
		t.Fatalf("validate after create: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "bad-name.sql"), []byte("-- +goose Up\n"), 0o644); err != nil {
		t.Fatalf("write bad migration: %v", err)
	}
	if err := migrate.ValidateDir(dir); err == nil {
		t.Fatal("expected invalid filename to fail validation")
	}
}

func TestShippedMigrationsValidate(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("shipped migrations invalid: %v", err)
	}
}

func readMigration(t *testing.T, pattern string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no migration file matches %s", pattern)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}
