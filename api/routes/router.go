package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/warehousepos-backend/api/controllers"
	"github.com/angelmondragon/warehousepos-backend/api/middleware"
	"github.com/angelmondragon/warehousepos-backend/internal/auth"
	"github.com/angelmondragon/warehousepos-backend/internal/basket"
	"github.com/angelmondragon/warehousepos-backend/internal/catalog"
	checkoutsvc "github.com/angelmondragon/warehousepos-backend/internal/checkout"
	"github.com/angelmondragon/warehousepos-backend/internal/customers"
	"github.com/angelmondragon/warehousepos-backend/internal/orders"
	"github.com/angelmondragon/warehousepos-backend/internal/reports"
	"github.com/angelmondragon/warehousepos-backend/internal/users"
	"github.com/angelmondragon/warehousepos-backend/pkg/auth/session"
	"github.com/angelmondragon/warehousepos-backend/pkg/config"
	"github.com/angelmondragon/warehousepos-backend/pkg/enums"
	"github.com/angelmondragon/warehousepos-backend/pkg/logger"
	"github.com/angelmondragon/warehousepos-backend/pkg/metrics"
)

// redisSurface is the slice of the Redis client the HTTP layer touches.
type redisSurface interface {
	controllers.Pinger
	middleware.IdempotencyStore
	middleware.RateLimitStore
}

// Services bundles the domain services exposed over HTTP.
type Services struct {
	Auth      auth.Service
	Users     users.Service
	Catalog   catalog.Service
	Customers customers.Service
	Basket    basket.Service
	Checkout  checkoutsvc.Service
	Orders    orders.Service
	Reports   reports.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	redisClient redisSurface,
	sessions session.AccessSessionChecker,
	gatherer prometheus.Gatherer,
	httpMetrics *metrics.HTTPMetrics,
	svc Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, httpMetrics),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginUserLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, map[string]controllers.Pinger{
			"db":    dbP,
			"redis": redisClient,
		}, logg))
	})

	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Get("/api/public/ping", controllers.PublicPing())

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.AuthLogin(svc.Auth, logg))
		r.Post("/refresh", controllers.AuthRefresh(svc.Auth, logg))
		r.Post("/logout", controllers.AuthLogout(svc.Auth, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessions, logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		adminOnly := middleware.RequireRole(logg, enums.UserRoleAdmin)

		r.Get("/ping", controllers.PrivatePing())

		r.Route("/catalog", func(r chi.Router) {
			r.Get("/products", controllers.ProductsList(svc.Catalog, logg))
			r.Get("/products/{productID}", controllers.ProductsGet(svc.Catalog, logg))
			r.Get("/edge-banding-tiers", controllers.TiersList(svc.Catalog, logg))

			r.Group(func(r chi.Router) {
				r.Use(adminOnly)
				r.Post("/products", controllers.ProductsCreate(svc.Catalog, logg))
				r.Patch("/products/{productID}", controllers.ProductsUpdate(svc.Catalog, logg))
				r.Post("/products/{productID}/stock", controllers.ProductsAdjustStock(svc.Catalog, logg))
				r.Post("/edge-banding-tiers", controllers.TiersCreate(svc.Catalog, logg))
			})
		})

		r.Route("/customers", func(r chi.Router) {
			r.Get("/", controllers.CustomersList(svc.Customers, logg))
			r.Post("/", controllers.CustomersCreate(svc.Customers, logg))
			r.Get("/{customerID}", controllers.CustomersGet(svc.Customers, logg))
			r.Patch("/{customerID}", controllers.CustomersUpdate(svc.Customers, logg))
			r.Get("/{customerID}/payments", controllers.CustomersListPayments(svc.Customers, logg))
			r.Post("/{customerID}/payments", controllers.CustomersRecordPayment(svc.Customers, logg))
		})

		r.Route("/basket", func(r chi.Router) {
			r.Get("/", controllers.BasketGet(svc.Basket, logg))
			r.Delete("/", controllers.BasketClear(svc.Basket, logg))
			r.Post("/items", controllers.BasketAddItem(svc.Basket, logg))
			r.Route("/items/{itemID}", func(r chi.Router) {
				r.Patch("/", controllers.BasketUpdateQuantity(svc.Basket, logg))
				r.Delete("/", controllers.BasketRemoveItem(svc.Basket, logg))
				r.Put("/cutting", controllers.BasketAttachCutting(svc.Basket, logg))
				r.Delete("/cutting", controllers.BasketDetachCutting(svc.Basket, logg))
				r.Put("/edge-banding", controllers.BasketAttachEdgeBanding(svc.Basket, logg))
				r.Delete("/edge-banding", controllers.BasketDetachEdgeBanding(svc.Basket, logg))
			})
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Post("/", controllers.Checkout(svc.Checkout, logg))
			r.Post("/preview", controllers.CheckoutPreview(svc.Checkout, logg))
			r.Get("/status", controllers.CheckoutStatus(svc.Checkout, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.OrdersList(svc.Orders, logg))
			r.Post("/", controllers.OrdersCreate(svc.Orders, logg))
			r.Get("/{orderID}", controllers.OrdersGet(svc.Orders, logg))
		})

		r.Route("/reports", func(r chi.Router) {
			r.Use(adminOnly)
			r.Get("/sales", controllers.ReportsSales(svc.Reports, logg))
			r.Get("/top-products", controllers.ReportsTopProducts(svc.Reports, logg))
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(adminOnly)
			r.Get("/", controllers.UsersList(svc.Users, logg))
			r.Post("/", controllers.UsersCreate(svc.Users, logg))
			r.Patch("/{userID}", controllers.UsersSetActive(svc.Users, logg))
		})
	})

	return r
}
