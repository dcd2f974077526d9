package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/homegoods-vn/homegoods-backend/api/controllers"
	"github.com/homegoods-vn/homegoods-backend/api/middleware"
	"github.com/homegoods-vn/homegoods-backend/internal/auth"
	"github.com/homegoods-vn/homegoods-backend/internal/cart"
	"github.com/homegoods-vn/homegoods-backend/internal/orders"
	"github.com/homegoods-vn/homegoods-backend/internal/products"
	"github.com/homegoods-vn/homegoods-backend/internal/promotions"
	"github.com/homegoods-vn/homegoods-backend/internal/users"
	"github.com/homegoods-vn/homegoods-backend/pkg/auth/legacy"
	"github.com/homegoods-vn/homegoods-backend/pkg/auth/session"
	"github.com/homegoods-vn/homegoods-backend/pkg/config"
	"github.com/homegoods-vn/homegoods-backend/pkg/db"
	"github.com/homegoods-vn/homegoods-backend/pkg/enums"
	"github.com/homegoods-vn/homegoods-backend/pkg/logger"
	"github.com/homegoods-vn/homegoods-backend/pkg/metrics"
	"github.com/homegoods-vn/homegoods-backend/pkg/redis"
)

// Deps bundles everything the router wires into handlers.
type Deps struct {
	Config       *config.Config
	Logger       *logger.Logger
	DB           db.Pinger
	Redis        *redis.Client
	Sessions     session.AccessSessionChecker
	LegacyCodec  *legacy.Codec
	HTTPMetrics  *metrics.HTTPMetrics
	AuthService  auth.Service
	UserService  users.Service
	Catalog      products.Service
	CartService  cart.Service
	OrderService orders.Service
	Promotions   promotions.Service
}

// NewRouter assembles the HTTP surface.
func NewRouter(d Deps) http.Handler {
	cfg := d.Config
	logg := d.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(d.HTTPMetrics),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, d.DB, d.Redis))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, d.Redis, logg)).
			Post("/login", controllers.AuthLogin(d.AuthService, cfg, logg))
		r.Post("/register", controllers.AuthRegister(d.AuthService, logg))
		r.Post("/refresh", controllers.AuthRefresh(d.AuthService, cfg, logg))
		r.Post("/logout", controllers.AuthLogout(d.AuthService, cfg, logg))
	})

	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", controllers.ProductList(d.Catalog, logg))
		r.Get("/{slug}", controllers.ProductDetail(d.Catalog, logg))
	})
	r.Get("/api/categories", controllers.CategoryList(d.Catalog, logg))
	r.Post("/api/promotions/validate", controllers.PromotionValidate(d.Promotions, logg))

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, d.Sessions, d.LegacyCodec, logg))

		r.Route("/users/me", func(r chi.Router) {
			r.Get("/", controllers.UserProfile(d.UserService, logg))
			r.Put("/", controllers.UserUpdateProfile(d.UserService, logg))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartFetch(d.CartService, logg))
			r.Post("/items", controllers.CartAddItem(d.CartService, logg))
			r.Put("/items/{itemId}", controllers.CartUpdateItem(d.CartService, logg))
			r.Delete("/items/{itemId}", controllers.CartRemoveItem(d.CartService, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", controllers.OrderPlace(d.OrderService, logg))
			r.Get("/", controllers.OrderList(d.OrderService, logg))
			r.Get("/{orderId}", controllers.OrderDetail(d.OrderService, logg))
			r.Post("/{orderId}/cancel", controllers.OrderCancel(d.OrderService, logg))
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireRole(logg, string(enums.UserRoleAdmin)))

			r.Route("/users", func(r chi.Router) {
				r.Get("/", controllers.AdminUserList(d.UserService, logg))
				r.Put("/{userId}/role", controllers.AdminUserUpdateRole(d.UserService, logg))
				r.Post("/{userId}/deactivate", controllers.AdminUserDeactivate(d.UserService, logg))
			})

			r.Route("/catalog", func(r chi.Router) {
				r.Post("/categories", controllers.AdminCategoryCreate(d.Catalog, logg))
				r.Post("/products", controllers.AdminProductCreate(d.Catalog, logg))
				r.Post("/products/{productId}/variants", controllers.AdminVariantCreate(d.Catalog, logg))
				r.Put("/variants/{variantId}", controllers.AdminVariantUpdate(d.Catalog, logg))
			})

			r.Route("/promotions", func(r chi.Router) {
				r.Get("/", controllers.AdminPromotionList(d.Promotions, logg))
				r.Post("/", controllers.AdminPromotionCreate(d.Promotions, logg))
				r.Put("/{promotionId}", controllers.AdminPromotionUpdate(d.Promotions, logg))
			})

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.AdminOrderList(d.OrderService, logg))
				r.Put("/{orderId}/status", controllers.AdminOrderUpdateStatus(d.OrderService, logg))
			})
		})
	})

	return r
}
