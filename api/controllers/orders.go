package controllers

import (
	"net/http"

	"github.com/angelmondragon/farmcart/api/middleware"
	"github.com/angelmondragon/farmcart/api/responses"
	"github.com/angelmondragon/farmcart/api/validators"
	"github.com/angelmondragon/farmcart/internal/orders"
	pkgerrors "github.com/angelmondragon/farmcart/pkg/errors"
	"github.com/angelmondragon/farmcart/pkg/logger"
	"github.com/angelmondragon/farmcart/pkg/pricing"
	"github.com/shopspring/decimal"
)

type placeOrderRequest struct {
	Products []orders.LineItem `json:"products" validate:"required,min=1,dive"`
	// Optional; computed from the line items when omitted.
	TotalAmount *decimal.Decimal `json:"total_amount"`
}

// OrdersPlace records caller-supplied line items and clears the cart.
func OrdersPlace(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		var body placeOrderRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		total := pricing.Total(body.Products)
		if body.TotalAmount != nil {
			total = *body.TotalAmount
		}
		if total.IsNegative() {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "total_amount must not be negative"))
			return
		}

		if !svc.PlaceOrder(r.Context(), middleware.UserIDFromContext(r.Context()), body.Products, total) {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeStorageFailure, "order could not be placed"))
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{
			"placed":       true,
			"total_amount": pricing.Format(total),
		})
	}
}

// OrdersCheckout turns the current cart into an order.
func OrdersCheckout(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}
		order, err := svc.Checkout(r.Context(), middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

func OrdersList(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}
		responses.WriteSuccess(w, svc.GetOrders(r.Context(), middleware.UserIDFromContext(r.Context())))
	}
}

func OrderGet(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}
		orderID, err := validators.ParsePathID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.GetOrder(r.Context(), middleware.UserIDFromContext(r.Context()), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}
