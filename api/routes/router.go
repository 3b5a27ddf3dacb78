package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/agrilinkhq/agrilink-backend/api/controllers"
	"github.com/agrilinkhq/agrilink-backend/api/middleware"
	authsvc "github.com/agrilinkhq/agrilink-backend/internal/auth"
	cartsvc "github.com/agrilinkhq/agrilink-backend/internal/cart"
	checkoutsvc "github.com/agrilinkhq/agrilink-backend/internal/checkout"
	forumsvc "github.com/agrilinkhq/agrilink-backend/internal/forum"
	ordersvc "github.com/agrilinkhq/agrilink-backend/internal/orders"
	prediction "github.com/agrilinkhq/agrilink-backend/internal/predictions"
	productsvc "github.com/agrilinkhq/agrilink-backend/internal/products"
	"github.com/agrilinkhq/agrilink-backend/pkg/auth/session"
	"github.com/agrilinkhq/agrilink-backend/pkg/config"
	"github.com/agrilinkhq/agrilink-backend/pkg/db"
	"github.com/agrilinkhq/agrilink-backend/pkg/enums"
	"github.com/agrilinkhq/agrilink-backend/pkg/logger"
	"github.com/agrilinkhq/agrilink-backend/pkg/metrics"
	pkgredis "github.com/agrilinkhq/agrilink-backend/pkg/redis"
)

// Deps collects everything the HTTP surface needs.
type Deps struct {
	Config      *config.Config
	Logger      *logger.Logger
	DB          db.Pinger
	Redis       *pkgredis.Client
	Sessions    session.AccessSessionChecker
	Registry    *prometheus.Registry
	Auth        authsvc.Service
	Products    productsvc.Service
	Cart        cartsvc.Service
	Checkout    checkoutsvc.Service
	Orders      ordersvc.Service
	Forum       forumsvc.Service
	Predictions prediction.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	httpMetrics := metrics.NewHTTPMetrics(deps.Registry)

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	// Idempotency matches on the fully resolved route pattern, so it must be
	// attached inline on each guarded route, not on a parent group: group
	// middleware runs before the inner route is matched and only sees a
	// partial pattern like /api/v1/*.
	var idemStore pkgredis.IdempotencyStore
	if deps.Redis != nil {
		idemStore = deps.Redis
	}
	idem := middleware.Idempotency(idemStore, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, deps.DB, deps.Redis, logg))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Get("/api/public/ping", controllers.PublicPing())

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(
			middleware.AuthRateLimit(registerPolicy, deps.Redis, logg),
			idem,
		).Post("/register", controllers.Register(deps.Auth, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).Post("/login", controllers.Login(deps.Auth, logg))
		r.Post("/refresh", controllers.Refresh(deps.Auth, logg))
		r.With(middleware.Auth(cfg.JWT, deps.Sessions, logg)).Post("/logout", controllers.Logout(deps.Auth, logg))
	})

	// Public catalog.
	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", controllers.ListProducts(deps.Products, logg))
		r.Get("/{productId}", controllers.GetProduct(deps.Products, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))

		r.Get("/ping", controllers.PrivatePing())

		r.Route("/farmer", func(r chi.Router) {
			r.Use(middleware.RequireRole(enums.UserRoleFarmer.String(), logg))
			r.Route("/products", func(r chi.Router) {
				r.Get("/", controllers.FarmerListProducts(deps.Products, logg))
				r.Post("/", controllers.FarmerCreateProduct(deps.Products, logg))
				r.Put("/{productId}", controllers.FarmerUpdateProduct(deps.Products, logg))
				r.Delete("/{productId}", controllers.FarmerDeleteProduct(deps.Products, logg))
			})
			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.ListFarmerOrders(deps.Orders, logg))
				r.Put("/{orderId}", controllers.SetOrderStatus(deps.Orders, logg))
			})
		})

		r.Route("/cart", func(r chi.Router) {
			r.Use(middleware.RequireRole(enums.UserRoleConsumer.String(), logg))
			r.Get("/", controllers.GetCart(deps.Cart, logg))
			r.Post("/", controllers.UpsertCartItem(deps.Cart, logg))
			r.Put("/{itemId}", controllers.UpdateCartItem(deps.Cart, logg))
			r.Delete("/{itemId}", controllers.RemoveCartItem(deps.Cart, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.With(middleware.RequireRole(enums.UserRoleConsumer.String(), logg)).Group(func(r chi.Router) {
				r.With(idem).Post("/", controllers.CreateOrder(deps.Orders, logg))
				r.With(idem).Post("/checkout", controllers.Checkout(deps.Checkout, logg))
				r.Get("/", controllers.ListConsumerOrders(deps.Orders, logg))
			})
			r.Get("/{orderId}", controllers.GetOrder(deps.Orders, logg))
		})

		r.Route("/forum", func(r chi.Router) {
			r.Route("/posts", func(r chi.Router) {
				r.Get("/", controllers.ListForumPosts(deps.Forum, logg))
				r.Post("/", controllers.CreateForumPost(deps.Forum, logg))
				r.Get("/{postId}", controllers.GetForumPost(deps.Forum, logg))
				r.Delete("/{postId}", controllers.DeleteForumPost(deps.Forum, logg))
				r.Post("/{postId}/comments", controllers.CreateForumComment(deps.Forum, logg))
			})
			r.Delete("/comments/{commentId}", controllers.DeleteForumComment(deps.Forum, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(enums.UserRoleFarmer.String(), logg))
			r.Post("/predictions", controllers.PredictDisease(deps.Predictions, logg))
			r.Post("/yield-predictions", controllers.PredictYield(deps.Predictions, logg))
			r.Get("/predictions/history", controllers.PredictionHistory(deps.Predictions, logg))
		})
	})

	return r
}
