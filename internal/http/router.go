package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/makahco2025-svg/test3/internal/catalog"
	"github.com/makahco2025-svg/test3/internal/session"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

type RouterConfig struct {
	Catalog        catalog.Repository
	Sessions       *session.Registry
	Orders         OrderHistory
	Cookie         CookieConfig
	AdminPassword  string
	AllowedOrigins []string
	RequestTimeout time.Duration
	Logger         *zap.Logger
}

func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	catalogHandler := NewCatalogHandler(cfg.Catalog, cfg.RequestTimeout, logger.Named("catalog"))
	cartHandler := NewCartHandler(cfg.Catalog, cfg.RequestTimeout, logger.Named("cart"))
	checkoutHandler := NewCheckoutHandler(cfg.Orders, cfg.RequestTimeout, logger.Named("checkout"))
	adminHandler := NewAdminHandler(cfg.Catalog, cfg.AdminPassword, cfg.RequestTimeout, logger.Named("admin"))

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(logger.Named("http")))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: !allowsAnyOrigin(cfg.AllowedOrigins),
		MaxAge:           300,
	}))
	r.Use(middleware.Compress(5))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/categories", catalogHandler.Categories)
		r.Route("/products", func(r chi.Router) {
			r.Get("/", catalogHandler.List)
			r.Get("/offers", catalogHandler.Offers)
			r.Get("/{product_id}", catalogHandler.Get)
		})

		r.Group(func(r chi.Router) {
			r.Use(SessionMiddleware(cfg.Sessions, cfg.Cookie))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", cartHandler.GetCart)
				r.Delete("/", cartHandler.ClearCart)
				r.Post("/items", cartHandler.AddItem)
				r.Put("/items/{product_id}", cartHandler.UpdateQuantity)
				r.Delete("/items/{product_id}", cartHandler.RemoveItem)
			})

			r.Get("/notifications", Notifications)
			r.Get("/orders", checkoutHandler.Orders)
			r.Get("/orders/{order_id}", checkoutHandler.Order)

			r.Route("/checkout", func(r chi.Router) {
				r.Get("/", checkoutHandler.GetState)
				r.Post("/", checkoutHandler.Submit)
				r.Post("/open", checkoutHandler.Open)
				r.Post("/close", checkoutHandler.Close)
				r.Post("/location", checkoutHandler.FetchLocation)
			})

			r.Route("/admin", func(r chi.Router) {
				r.Post("/login", adminHandler.Login)
				r.Post("/logout", adminHandler.Logout)
				r.Group(func(r chi.Router) {
					r.Use(AdminOnly)
					r.Get("/products", adminHandler.ListProducts)
					r.Post("/products", adminHandler.CreateProduct)
					r.Put("/products/{product_id}", adminHandler.UpdateProduct)
					r.Delete("/products/{product_id}", adminHandler.DeleteProduct)
				})
			})
		})
	})

	return otelhttp.NewHandler(r, "storefront")
}

// allowsAnyOrigin reports a wildcard origin list; cors treats an empty list
// the same way. Cookies are only shared with origins listed explicitly.
func allowsAnyOrigin(origins []string) bool {
	if len(origins) == 0 {
		return true
	}
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
