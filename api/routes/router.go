package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/farmcart/api/controllers"
	"github.com/angelmondragon/farmcart/api/middleware"
	"github.com/angelmondragon/farmcart/internal/auth"
	"github.com/angelmondragon/farmcart/internal/cart"
	"github.com/angelmondragon/farmcart/internal/orders"
	"github.com/angelmondragon/farmcart/internal/session"
	"github.com/angelmondragon/farmcart/pkg/config"
	"github.com/angelmondragon/farmcart/pkg/db"
	"github.com/angelmondragon/farmcart/pkg/enums"
	"github.com/angelmondragon/farmcart/pkg/logger"
)

type sessionManager interface {
	StoreSession(ctx context.Context, user session.Snapshot)
	GetSession(ctx context.Context) (*session.Snapshot, bool)
	Logout(ctx context.Context)
	SetLanguage(ctx context.Context, lang enums.Language) error
	Language(ctx context.Context) enums.Language
}

// Deps carries everything the HTTP surface is wired to.
type Deps struct {
	Store    db.Pinger
	Gatherer prometheus.Gatherer
	Sessions sessionManager
	Auth     auth.Service
	Cart     cart.Service
	Orders   orders.Service
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.Store))
	})

	if cfg.Metrics.Enabled && deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", controllers.AuthRegister(deps.Auth, deps.Sessions, logg))
			r.Post("/login", controllers.AuthLogin(deps.Auth, deps.Sessions, logg))
			r.Post("/logout", controllers.AuthLogout(deps.Sessions, logg))
		})

		r.Route("/settings", func(r chi.Router) {
			r.Get("/language", controllers.LanguageGet(deps.Sessions, logg))
			r.Put("/language", controllers.LanguageSet(deps.Sessions, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Session(deps.Sessions, deps.Auth, logg))

			r.Get("/session", controllers.SessionCurrent())

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.CartGet(deps.Cart, logg))
				r.Post("/items", controllers.CartAddItem(deps.Cart, logg))
				r.Put("/items/{productId}", controllers.CartUpdateItem(deps.Cart, logg))
				r.Delete("/items/{productId}", controllers.CartRemoveItem(deps.Cart, logg))
			})

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.OrdersList(deps.Orders, logg))
				r.Post("/", controllers.OrdersPlace(deps.Orders, logg))
				r.Get("/{orderId}", controllers.OrderGet(deps.Orders, logg))
			})
			r.Post("/checkout", controllers.OrdersCheckout(deps.Orders, logg))
		})
	})

	return r
}
