package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/retailpoint/purchasing-backend/api/controllers"
	"github.com/retailpoint/purchasing-backend/api/middleware"
	cartsvc "github.com/retailpoint/purchasing-backend/internal/cart"
	"github.com/retailpoint/purchasing-backend/internal/catalog"
	checkoutsvc "github.com/retailpoint/purchasing-backend/internal/checkout"
	ordersvc "github.com/retailpoint/purchasing-backend/internal/orders"
	pkgauth "github.com/retailpoint/purchasing-backend/pkg/auth"
	"github.com/retailpoint/purchasing-backend/pkg/config"
	"github.com/retailpoint/purchasing-backend/pkg/db"
	"github.com/retailpoint/purchasing-backend/pkg/logger"
	pkgredis "github.com/retailpoint/purchasing-backend/pkg/redis"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Config           *config.Config
	Logger           *logger.Logger
	DBPinger         db.Pinger
	RedisPinger      pkgredis.Pinger
	IdempotencyStore pkgredis.IdempotencyStore
	CartService      cartsvc.Service
	CheckoutService  checkoutsvc.Service
	OrdersService    ordersvc.Service
	CatalogRepo      catalog.Repository
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DBPinger, deps.RedisPinger))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", controllers.ProductList(deps.CatalogRepo, logg))
		r.Get("/{productId}", controllers.ProductDetail(deps.CatalogRepo, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(deps.IdempotencyStore, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartFetch(deps.CartService, logg))
			r.Post("/", controllers.CartAddItem(deps.CartService, logg))
			r.Delete("/", controllers.CartClear(deps.CartService, logg))
			r.Route("/items/{itemId}", func(r chi.Router) {
				r.Put("/", controllers.CartUpdateItem(deps.CartService, logg))
				r.Delete("/", controllers.CartRemoveItem(deps.CartService, logg))
			})
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", controllers.OrderCreate(deps.CheckoutService, logg))
			r.Get("/", controllers.OrderList(deps.OrdersService, logg))
			r.Get("/{orderId}", controllers.OrderDetail(deps.OrdersService, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(string(pkgauth.RoleAdmin), logg))
			r.Post("/admin/orders/{orderId}/status", controllers.AdminSetOrderStatus(deps.OrdersService, logg))
			r.Post("/admin/orders/{orderId}/mark-paid", controllers.AdminMarkOrderPaid(deps.OrdersService, logg))
		})
	})

	return r
}
