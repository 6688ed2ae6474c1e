package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cia-labs/nischte-app/api/controllers"
	"github.com/cia-labs/nischte-app/api/middleware"
	cartsvc "github.com/cia-labs/nischte-app/internal/cart"
	checkoutsvc "github.com/cia-labs/nischte-app/internal/checkout"
	"github.com/cia-labs/nischte-app/internal/offers"
	"github.com/cia-labs/nischte-app/internal/reconcile"
	"github.com/cia-labs/nischte-app/pkg/config"
	"github.com/cia-labs/nischte-app/pkg/logger"
	"github.com/cia-labs/nischte-app/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	redisP redis.Pinger,
	cartService cartsvc.Service,
	offerService offers.Service,
	checkoutService checkoutsvc.Service,
	reconcileService reconcile.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, redisP))
	})

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartGet(cartService, offerService, logg))
			r.Put("/", controllers.CartLoad(cartService, logg))
			r.Post("/items", controllers.CartAddItem(cartService, logg))
			r.Patch("/items/{itemID}", controllers.CartUpdateQuantity(cartService, cfg.Checkout, logg))
			r.Delete("/items/{itemID}", controllers.CartRemoveItem(cartService, logg))
			r.Post("/offer", controllers.CartSelectOffer(cartService, logg))
			r.Delete("/offer", controllers.CartClearOffer(cartService, logg))
		})

		r.Post("/checkout", controllers.Checkout(checkoutService, logg))
		r.Post("/payment/callback", controllers.PaymentCallback(reconcileService, logg))
	})

	return r
}
