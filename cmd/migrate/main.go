package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/angelmondragon/farmcart/pkg/config"
	"github.com/angelmondragon/farmcart/pkg/db"
	"github.com/angelmondragon/farmcart/pkg/logger"
	"github.com/angelmondragon/farmcart/pkg/migrate"
	"github.com/joho/godotenv"
)

type options struct {
	cmd     string
	dir     string
	name    string
	version string
}

// offline commands work on the migration files and never open the store.
var offline = map[string]func(opts options) error{
	"create": func(opts options) error {
		if opts.name == "" {
			return errors.New("missing -name for create")
		}
		path, err := migrate.CreateSQLMigration(opts.dir, opts.name)
		if err != nil {
			return fmt.Errorf("create migration: %w", err)
		}
		fmt.Println("created migration:", path)
		return nil
	},
	"validate": func(opts options) error {
		if err := migrate.ValidateDir(opts.dir); err != nil {
			return fmt.Errorf("validate migrations: %w", err)
		}
		fmt.Println("migrations in", opts.dir, "are valid")
		return nil
	},
}

var online = map[string]func(ctx context.Context, sqlDB *sql.DB, opts options) error{
	"up":     goose("up"),
	"down":   goose("down"),
	"status": goose("status"),
	"version": func(ctx context.Context, sqlDB *sql.DB, opts options) error {
		if opts.version == "" {
			return errors.New("missing -version for version")
		}
		return migrate.MigrateToVersion(ctx, sqlDB, opts.dir, opts.version)
	},
	"current": func(ctx context.Context, sqlDB *sql.DB, _ options) error {
		v, err := migrate.CurrentVersion(ctx, sqlDB)
		if err != nil {
			return err
		}
		fmt.Println(v)
		return nil
	},
}

func goose(command string) func(context.Context, *sql.DB, options) error {
	return func(ctx context.Context, sqlDB *sql.DB, opts options) error {
		return migrate.Run(ctx, sqlDB, opts.dir, command)
	}
}

func main() {
	_ = godotenv.Load()

	var opts options
	flag.StringVar(&opts.cmd, "cmd", "up", "up|down|status|version|current|create|validate")
	flag.StringVar(&opts.dir, "dir", "", "migrations directory (default: embedded, or "+migrate.DefaultDir+" for create/validate)")
	flag.StringVar(&opts.name, "name", "", "migration name for -cmd=create")
	flag.StringVar(&opts.version, "version", "", "target version for -cmd=version")
	flag.Parse()

	if err := run(opts); err != nil {
		fmt.Fprintln(os.Stderr, "migrate:", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logg := logger.New(logger.Options{
		ServiceName: "farmcart-migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	if opts.dir == "" {
		opts.dir = migrate.Embedded
		if _, ok := offline[opts.cmd]; ok {
			opts.dir = migrate.DefaultDir
		}
	}

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env": cfg.App.Env,
		"cmd": opts.cmd,
		"dir": opts.dir,
	})

	if fn, ok := offline[opts.cmd]; ok {
		return fn(opts)
	}
	fn, ok := online[opts.cmd]
	if !ok {
		return fmt.Errorf("unknown -cmd %q", opts.cmd)
	}

	client, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "open store", err)
		return err
	}
	defer client.Close()

	sqlDB, err := client.SQL()
	if err != nil {
		return fmt.Errorf("sql handle: %w", err)
	}

	logg.Info(ctx, "migrate ready")
	if err := fn(ctx, sqlDB, opts); err != nil {
		logg.Error(ctx, "migrate failed", err)
		return err
	}
	return nil
}
