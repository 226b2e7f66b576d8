package controllers

import (
	"net/http"

	"github.com/angelmondragon/farmcart/api/middleware"
	"github.com/angelmondragon/farmcart/api/responses"
	"github.com/angelmondragon/farmcart/api/validators"
	"github.com/angelmondragon/farmcart/internal/cart"
	pkgerrors "github.com/angelmondragon/farmcart/pkg/errors"
	"github.com/angelmondragon/farmcart/pkg/logger"
)

type quantityRequest struct {
	Quantity *int `json:"quantity" validate:"required"`
}

// CartGet returns the signed-in user's cart with its canonical total.
func CartGet(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}
		responses.WriteSuccess(w, svc.Summary(r.Context(), middleware.UserIDFromContext(r.Context())))
	}
}

// CartAddItem adds one unit of the posted product and returns the updated cart.
func CartAddItem(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		var body cart.Product
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		userID := middleware.UserIDFromContext(r.Context())
		svc.AddToCart(r.Context(), userID, body)
		responses.WriteSuccess(w, svc.Summary(r.Context(), userID))
	}
}

// CartUpdateItem sets the quantity of a cart row. Zero or less removes it.
func CartUpdateItem(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		productID, err := validators.PathString(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body quantityRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		userID := middleware.UserIDFromContext(r.Context())
		svc.UpdateQuantity(r.Context(), userID, productID, *body.Quantity)
		responses.WriteSuccess(w, svc.Summary(r.Context(), userID))
	}
}

func CartRemoveItem(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		productID, err := validators.PathString(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		userID := middleware.UserIDFromContext(r.Context())
		svc.RemoveFromCart(r.Context(), userID, productID)
		responses.WriteSuccess(w, svc.Summary(r.Context(), userID))
	}
}
