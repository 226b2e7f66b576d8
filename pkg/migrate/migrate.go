package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/angelmondragon/farmcart/pkg/migrate/migrations"
	"github.com/pressly/goose/v3"
)

const (
	// DefaultDir is the on-disk location used by create/validate.
	DefaultDir = "pkg/migrate/migrations"
	// Embedded selects the migrations compiled into the binary.
	Embedded = "embedded"
)

// Run executes a standard goose command that requires a DB connection.
func Run(ctx context.Context, db *sql.DB, dir string, command string, args ...string) error {
	if db == nil {
		return fmt.Errorf("db is required")
	}
	dir, err := prepare(dir)
	if err != nil {
		return err
	}

	// RunContext prints status output to stdout (goose internal)
	if err := goose.RunContext(ctx, command, db, dir, args...); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}

// Up applies every embedded migration.
func Up(ctx context.Context, db *sql.DB) error {
	return Run(ctx, db, Embedded, "up")
}

// MigrateToVersion migrates up/down to the requested version by comparing current DB version.
func MigrateToVersion(ctx context.Context, db *sql.DB, dir string, targetVersion string) error {
	if targetVersion == "" {
		return fmt.Errorf("targetVersion is required")
	}
	dir, err := prepare(dir)
	if err != nil {
		return err
	}

	target, err := strconv.ParseInt(targetVersion, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid version %q (expected YYYYMMDDHHMMSS): %w", targetVersion, err)
	}

	current, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return fmt.Errorf("get db version: %w", err)
	}

	switch {
	case current == target:
		return nil
	case current < target:
		if err := goose.UpToContext(ctx, db, dir, target); err != nil {
			return fmt.Errorf("goose up-to %d: %w", target, err)
		}
		return nil
	default:
		if err := goose.DownToContext(ctx, db, dir, target); err != nil {
			return fmt.Errorf("goose down-to %d: %w", target, err)
		}
		return nil
	}
}

// CurrentVersion reports the schema version recorded in the store.
func CurrentVersion(ctx context.Context, db *sql.DB) (int64, error) {
	if _, err := prepare(Embedded); err != nil {
		return 0, err
	}
	return goose.GetDBVersionContext(ctx, db)
}

func prepare(dir string) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("dir is required")
	}
	if err := goose.SetDialect("sqlite3"); err != nil {
		return "", fmt.Errorf("set goose dialect: %w", err)
	}
	if dir == Embedded {
		goose.SetBaseFS(migrations.FS)
		return ".", nil
	}
	goose.SetBaseFS(nil)
	return dir, nil
}
