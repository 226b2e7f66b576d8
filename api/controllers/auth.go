package controllers

import (
	"context"
	"net/http"

	"github.com/angelmondragon/farmcart/api/middleware"
	"github.com/angelmondragon/farmcart/api/responses"
	"github.com/angelmondragon/farmcart/api/validators"
	"github.com/angelmondragon/farmcart/internal/auth"
	"github.com/angelmondragon/farmcart/internal/session"
	pkgerrors "github.com/angelmondragon/farmcart/pkg/errors"
	"github.com/angelmondragon/farmcart/pkg/logger"
)

type sessionStore interface {
	StoreSession(ctx context.Context, user session.Snapshot)
	Logout(ctx context.Context)
}

type credentialsRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthRegister creates a user and signs them in on this device.
func AuthRegister(svc auth.Service, sessions sessionStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil || sessions == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var body credentialsRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := svc.Register(r.Context(), body.Username, body.Password)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sessions.StoreSession(r.Context(), session.FromUser(user))
		responses.WriteSuccessStatus(w, http.StatusCreated, user)
	}
}

// AuthLogin verifies credentials and stores the session snapshot.
func AuthLogin(svc auth.Service, sessions sessionStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil || sessions == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var body credentialsRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := svc.Login(r.Context(), body.Username, body.Password)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sessions.StoreSession(r.Context(), session.FromUser(user))
		responses.WriteSuccess(w, user)
	}
}

func AuthLogout(sessions sessionStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if sessions == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "session store unavailable"))
			return
		}
		sessions.Logout(r.Context())
		responses.WriteSuccess(w, map[string]string{"status": "logged_out"})
	}
}

// SessionCurrent echoes the identity the session middleware put on the context.
func SessionCurrent() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, session.Snapshot{
			ID:       middleware.UserIDFromContext(r.Context()),
			Username: middleware.UsernameFromContext(r.Context()),
		})
	}
}
