package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/angelmondragon/farmcart/api/routes"
	"github.com/angelmondragon/farmcart/internal/auth"
	"github.com/angelmondragon/farmcart/internal/cart"
	"github.com/angelmondragon/farmcart/internal/orders"
	"github.com/angelmondragon/farmcart/internal/session"
	"github.com/angelmondragon/farmcart/internal/users"
	"github.com/angelmondragon/farmcart/internal/vault"
	"github.com/angelmondragon/farmcart/pkg/config"
	"github.com/angelmondragon/farmcart/pkg/db"
	"github.com/angelmondragon/farmcart/pkg/logger"
	"github.com/angelmondragon/farmcart/pkg/metrics"
	"github.com/angelmondragon/farmcart/pkg/migrate"
	"github.com/angelmondragon/farmcart/pkg/redis"
	"github.com/angelmondragon/farmcart/pkg/security"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api stopped", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var closers []io.Closer
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			err = multierr.Append(err, closers[i].Close())
		}
	}()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	closers = append(closers, dbClient)

	if err := migrate.MaybeAutoRun(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	backend, closer, err := openVaultBackend(ctx, cfg, logg)
	if err != nil {
		return err
	}
	closers = append(closers, closer)

	key, err := cfg.Vault.DecodedKey()
	if err != nil {
		return err
	}
	if key == nil {
		if key, err = security.LoadOrCreateKey(cfg.Vault.KeyFile); err != nil {
			return err
		}
	}
	sealed, err := vault.New(backend, key)
	if err != nil {
		return err
	}

	var (
		gatherer prometheus.Gatherer
		storeMet *metrics.StoreMetrics
	)
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		storeMet = metrics.NewStoreMetrics(reg)
		gatherer = reg
	}

	sessions, err := session.NewManager(sealed, logg, storeMet)
	if err != nil {
		return err
	}

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       users.NewRepository(dbClient.DB()),
		PasswordConfig: cfg.Password,
		Logger:         logg,
		Metrics:        storeMet,
	})
	if err != nil {
		return err
	}

	cartRepo := cart.NewRepository(dbClient.DB())
	cartService, err := cart.NewService(cart.ServiceParams{
		Repo:    cartRepo,
		Logger:  logg,
		Metrics: storeMet,
	})
	if err != nil {
		return err
	}

	ordersService, err := orders.NewService(orders.ServiceParams{
		Tx:       dbClient,
		Repo:     orders.NewRepository(dbClient.DB()),
		CartRepo: cartRepo,
		Logger:   logg,
		Metrics:  storeMet,
	})
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr: cfg.App.Addr(),
		Handler: routes.NewRouter(cfg, logg, routes.Deps{
			Store:    dbClient,
			Gatherer: gatherer,
			Sessions: sessions,
			Auth:     authService,
			Cart:     cartService,
			Orders:   ordersService,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	logCtx := logg.WithFields(ctx, map[string]any{
		"env":           cfg.App.Env,
		"addr":          server.Addr,
		"db_path":       cfg.DB.Path,
		"vault_backend": cfg.Vault.Backend,
	})
	logg.Info(logCtx, "starting api server")

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logg.Info(logCtx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func openVaultBackend(ctx context.Context, cfg *config.Config, logg *logger.Logger) (vault.Backend, io.Closer, error) {
	switch cfg.Vault.Backend {
	case config.VaultBackendRedis:
		client, err := redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return nil, nil, err
		}
		backend, err := vault.NewRedisBackend(client)
		if err != nil {
			_ = client.Close()
			return nil, nil, err
		}
		return backend, client, nil
	default:
		backend, err := vault.OpenSQLite(cfg.Vault.Path, cfg.DB.BusyTimeout)
		if err != nil {
			return nil, nil, err
		}
		return backend, backend, nil
	}
}
