package middleware

import (
	"context"
	"net/http"

	"github.com/angelmondragon/farmcart/api/responses"
	"github.com/angelmondragon/farmcart/internal/session"
	"github.com/angelmondragon/farmcart/internal/users"
	pkgerrors "github.com/angelmondragon/farmcart/pkg/errors"
	"github.com/angelmondragon/farmcart/pkg/logger"
)

// SessionReader loads the stored session snapshot.
type SessionReader interface {
	GetSession(ctx context.Context) (*session.Snapshot, bool)
}

// UserResolver confirms a session's user is still in the directory.
type UserResolver interface {
	Resolve(ctx context.Context, userID int64) (*users.UserDTO, error)
}

// Session resolves the stored session once per request and hands the user
// id down through the request context. Requests without a session, or whose
// session names a user the directory no longer has, get 401.
func Session(reader SessionReader, directory UserResolver, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if reader == nil || directory == nil {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "session store unavailable"))
				return
			}
			snap, ok := reader.GetSession(ctx)
			if !ok {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in required"))
				return
			}

			if _, err := directory.Resolve(ctx, snap.ID); err != nil {
				if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
					if logg != nil {
						logg.Warn(logg.WithUserID(ctx, snap.ID), "session.stale")
					}
					responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in required"))
					return
				}
				responses.WriteError(ctx, logg, w, err)
				return
			}

			ctx = WithUser(ctx, snap.ID, snap.Username)
			if logg != nil {
				ctx = logg.WithUserID(ctx, snap.ID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
