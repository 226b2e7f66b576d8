package db

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/angelmondragon/farmcart/pkg/config"
	"github.com/angelmondragon/farmcart/pkg/logger"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

type testModel struct {
	ID   int
	Name string `gorm:"uniqueIndex"`
}

func newTestClient(t *testing.T) *Client {
	t.Helper()
	cfg := config.DBConfig{
		Path:         filepath.Join(t.TempDir(), "test.db"),
		BusyTimeout:  time.Second,
		MaxOpenConns: 1,
	}
	client, err := New(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	if err := client.DB().AutoMigrate(&testModel{}); err != nil {
		t.Fatalf("failed to migrate sqlite: %v", err)
	}
	return client
}

func TestNew_RequiresPath(t *testing.T) {
	if _, err := New(context.Background(), config.DBConfig{}, nil); err == nil {
		t.Fatal("expected missing path to fail")
	}
}

func TestWithTx_CommitsAndRollbacks(t *testing.T) {
	client := newTestClient(t)
	db := client.DB()

	ctx := context.Background()
	if err := client.WithTx(ctx, func(tx *gorm.DB) error {
		return tx.Create(&testModel{Name: "committed"}).Error
	}); err != nil {
		t.Fatalf("WithTx commit failed: %v", err)
	}

	var count int64
	if err := db.Model(&testModel{}).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 record, got %d", count)
	}

	err := client.WithTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(&testModel{Name: "rolled"}).Error; err != nil {
			return err
		}
		return errors.New("boom")
	})
	if err == nil {
		t.Fatal("expected WithTx to return an error")
	}
	if err := db.Model(&testModel{}).Count(&count).Error; err != nil {
		t.Fatalf("count failed after rollback: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected rollback to leave 1 record, got %d", count)
	}
}

func TestWithTx_RollsBackOnPanic(t *testing.T) {
	client := newTestClient(t)

	func() {
		defer func() {
			if r := recover(); r == nil {
				t.Fatal("expected panic to propagate")
			}
		}()
		_ = client.WithTx(context.Background(), func(tx *gorm.DB) error {
			if err := tx.Create(&testModel{Name: "panicked"}).Error; err != nil {
				return err
			}
			panic("boom")
		})
	}()

	var count int64
	if err := client.DB().Model(&testModel{}).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected panic rollback, got %d rows", count)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	client := newTestClient(t)
	db := client.DB()

	if err := db.Create(&testModel{Name: "dup"}).Error; err != nil {
		t.Fatalf("first insert failed: %v", err)
	}
	err := db.Create(&testModel{Name: "dup"}).Error
	if err == nil {
		t.Fatal("expected duplicate insert to fail")
	}
	if !IsUniqueViolation(err) {
		t.Fatalf("expected unique violation, got %v", err)
	}
	if !IsUniqueViolation(fmt.Errorf("wrapped: %w", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique})) {
		t.Fatal("expected raw sqlite unique error to match")
	}
	if IsUniqueViolation(errors.New("disk I/O error")) || IsUniqueViolation(nil) {
		t.Fatal("unexpected unique match")
	}
}

func TestIsForeignKeyViolation(t *testing.T) {
	client := newTestClient(t)
	db := client.DB()

	if err := db.Exec(`CREATE TABLE test_children (
		id INTEGER PRIMARY KEY,
		parent_id INTEGER NOT NULL REFERENCES test_models(id)
	)`).Error; err != nil {
		t.Fatalf("create child table: %v", err)
	}
	err := db.Exec(`INSERT INTO test_children (parent_id) VALUES (?)`, 404).Error
	if err == nil {
		t.Fatal("expected orphan insert to fail with foreign keys on")
	}
	if !IsForeignKeyViolation(fmt.Errorf("insert child: %w", err)) {
		t.Fatalf("expected foreign key violation, got %v", err)
	}
	if IsUniqueViolation(err) {
		t.Fatalf("foreign key failure must not read as unique violation")
	}
	if !IsForeignKeyViolation(sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintForeignKey}) {
		t.Fatal("expected raw sqlite foreign key error to match")
	}
	if IsForeignKeyViolation(errors.New("disk I/O error")) || IsForeignKeyViolation(nil) {
		t.Fatal("unexpected foreign key match")
	}
}

func TestPing(t *testing.T) {
	client := newTestClient(t)
	if err := client.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected ping error: %v", err)
	}
}

func TestGormWriterLogsAsWarning(t *testing.T) {
	var buf bytes.Buffer
	logg := logger.New(logger.Options{Output: &buf, Format: logger.FormatJSON})

	gormWriter{logg: logg}.Printf("SLOW SQL >= %v\n[%.3fms] %s", SlowQueryThreshold, 250.0, "SELECT 1")

	out := buf.String()
	for _, want := range []string{`"level":"warn"`, `"operation":"db.query"`, "SELECT 1"} {
		if !bytes.Contains(buf.Bytes(), []byte(want)) {
			t.Fatalf("expected %s in %s", want, out)
		}
	}
}
