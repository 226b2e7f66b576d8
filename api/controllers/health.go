package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/angelmondragon/farmcart/api/responses"
	"github.com/angelmondragon/farmcart/pkg/config"
	"github.com/angelmondragon/farmcart/pkg/db"
	pkgerrors "github.com/angelmondragon/farmcart/pkg/errors"
	"github.com/angelmondragon/farmcart/pkg/logger"
)

const envHeader = "X-FarmCart-Env"

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports ready once the store answers a ping.
func HealthReady(cfg *config.Config, logg *logger.Logger, store db.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		if store == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeStorageFailure, "store not configured"))
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := store.Ping(ctx); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Storage(err, "store ping failed"))
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
