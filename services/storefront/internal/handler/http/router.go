package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/EcommerceGo/pkg/health"
	"github.com/utafrali/EcommerceGo/pkg/middleware"
)

const serviceName = "storefront"

// Handlers groups the route handlers mounted by NewRouter.
type Handlers struct {
	Products *ProductHandler
	Cart     *CartHandler
	Checkout *CheckoutHandler
}

// RouterConfig holds the router settings taken from service configuration.
type RouterConfig struct {
	Environment    string
	AllowedOrigins []string
	PprofCIDRs     []string

	// CatalogCacheSeconds is the max-age sent on product reads.
	CatalogCacheSeconds int

	// WriteRateLimit applies to product create/delete and checkout.
	WriteRateLimit middleware.RateLimitConfig
}

// NewRouter creates a chi router with all storefront routes registered.
func NewRouter(h Handlers, healthHandler *health.Handler, logger *slog.Logger, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.Environment = cfg.Environment
	if len(cfg.AllowedOrigins) > 0 {
		corsCfg.AllowedOrigins = cfg.AllowedOrigins
	}

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics(serviceName))
	r.Use(middleware.Tracing(serviceName))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.CORS(corsCfg))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	// Pprof debug endpoints with IP allowlist.
	middleware.RegisterPprof(r, cfg.PprofCIDRs, logger)

	limitWrites := middleware.RateLimit(cfg.WriteRateLimit, logger)

	r.Route("/api/v1", func(r chi.Router) {
		// The count stream is long-lived, so it stays outside the timeout
		// and compression group.
		r.Get("/cart/count/stream", h.Cart.StreamCount)

		r.Group(func(r chi.Router) {
			r.Use(chimw.Compress(5))
			r.Use(chimw.Timeout(30 * time.Second))
			r.Use(ContentTypeJSON)

			r.Route("/products", func(r chi.Router) {
				r.Use(middleware.CacheControl(cfg.CatalogCacheSeconds))
				r.Get("/", h.Products.ListProducts)
				r.Get("/{id}", h.Products.GetProduct)
				r.With(limitWrites).Post("/", h.Products.CreateProduct)
				r.With(limitWrites).Delete("/{id}", h.Products.DeleteProduct)
			})

			r.Route("/cart", func(r chi.Router) {
				r.Use(middleware.CacheControl(0))
				r.Get("/", h.Cart.GetCart)
				r.Delete("/", h.Cart.ClearCart)
				r.Get("/count", h.Cart.GetCount)

				r.Post("/items", h.Cart.AddItem)
				r.Delete("/items/{index}", h.Cart.RemoveItem)
				r.Post("/items/{index}/increment", h.Cart.IncrementItem)
				r.Post("/items/{index}/decrement", h.Cart.DecrementItem)
			})

			r.With(limitWrites, middleware.CacheControl(0)).Post("/checkout", h.Checkout.PlaceOrder)
		})
	})

	return r
}
