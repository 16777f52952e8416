package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/greencart/api/controllers"
	"github.com/angelmondragon/greencart/api/middleware"
	"github.com/angelmondragon/greencart/pkg/config"
	"github.com/angelmondragon/greencart/pkg/logger"
)

// NewRouter builds the UI bridge. conn may be nil, in which case the
// connectivity signal is read-only. gatherer may be nil to skip /metrics.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	engine controllers.CartEngine,
	conn controllers.ConnectivitySwitch,
	gatherer prometheus.Gatherer,
	readyChecks map[string]controllers.Pinger,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, engine, readyChecks))
	})

	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/v1", func(r chi.Router) {
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartGet(engine))
			r.Post("/items", controllers.CartAddItem(engine, logg))
			r.Patch("/items/{productId}", controllers.CartSetQuantity(engine, logg))
			r.Delete("/items/{productId}", controllers.CartRemoveItem(engine, logg))
			r.Post("/green-delivery/toggle", controllers.CartToggleGreenDelivery(engine))
			r.Post("/carbon-offset/toggle", controllers.CartToggleCarbonOffset(engine))
			r.Post("/sync", controllers.CartSync(engine, logg))
		})
		r.Post("/checkout", controllers.Checkout(engine, logg))

		r.Get("/connectivity", controllers.ConnectivityGet(engine))
		if conn != nil {
			r.Put("/connectivity", controllers.ConnectivitySet(engine, conn, logg))
		}
	})

	return r
}
