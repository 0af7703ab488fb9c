package routes

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/storefront-backend/api/controllers"
	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/internal/auth"
	"github.com/angelmondragon/storefront-backend/internal/orders"
	products "github.com/angelmondragon/storefront-backend/internal/products"
	"github.com/angelmondragon/storefront-backend/internal/uploads"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
	"github.com/angelmondragon/storefront-backend/pkg/redis"
)

// Params bundles everything the HTTP surface needs. RateLimiter, Idempotency,
// HTTPMetrics and Gatherer are optional; a nil value disables the feature.
type Params struct {
	Config      *config.Config
	Logger      *logger.Logger
	DB          db.Pinger
	RateLimiter redis.RateLimiter
	Idempotency redis.IdempotencyStore
	HTTPMetrics *metrics.HTTPMetrics
	Gatherer    prometheus.Gatherer

	AuthService    auth.Service
	ProductService products.Service
	OrderService   orders.Service
	UploadService  uploads.Service
}

func NewRouter(p Params) http.Handler {
	cfg := p.Config
	logg := p.Logger
	maxUpload := cfg.Storage.MaxUploadBytes()

	r := chi.NewRouter()
	r.Use(
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(p.HTTPMetrics),
		middleware.Recoverer(logg),
		middleware.CORS(cfg.App.CORSOrigins),
		middleware.Throttle(p.RateLimiter, cfg.RateLimit.Window, cfg.RateLimit.Limit, logg),
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

	r.Get("/healthcheck", controllers.Healthcheck(p.DB, logg))
	if p.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(p.Gatherer, promhttp.HandlerOpts{}))
	}
	mountLocalUploads(r, cfg.Storage)

	requireAuth := middleware.Auth(cfg.JWT, logg)
	adminOnly := middleware.RequireRoles(logg, enums.RoleAdmin)

	r.Route(apiPrefix(cfg.App.APIPrefix), func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.AuthRateLimit(registerPolicy, p.RateLimiter, logg)).
				Post("/register", controllers.AuthRegister(p.AuthService, logg))
			r.With(middleware.AuthRateLimit(loginPolicy, p.RateLimiter, logg)).
				Post("/login", controllers.AuthLogin(p.AuthService, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductList(p.ProductService, logg))
			r.Get("/{id}", controllers.ProductGet(p.ProductService, logg))

			r.Group(func(r chi.Router) {
				r.Use(requireAuth, adminOnly)
				r.Post("/", controllers.ProductCreate(p.ProductService, maxUpload, logg))
				r.Put("/{id}", controllers.ProductUpdate(p.ProductService, maxUpload, logg))
				r.Delete("/{id}", controllers.ProductDelete(p.ProductService, logg))
			})
		})

		r.Route("/orders", func(r chi.Router) {
			r.Use(requireAuth)
			r.With(middleware.Idempotency(p.Idempotency, middleware.DefaultIdempotencyTTL, logg)).
				Post("/", controllers.OrderCreate(p.OrderService, logg))
			r.Get("/", controllers.OrderListMine(p.OrderService, logg))
		})

		r.With(requireAuth, adminOnly).
			Post("/uploads", controllers.UploadImage(p.UploadService, maxUpload, logg))
	})

	return r
}

// mountLocalUploads serves files written by the local storage driver.
func mountLocalUploads(r chi.Router, cfg config.StorageConfig) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	if driver != "" && driver != config.StorageDriverLocal {
		return
	}
	base := "/" + strings.Trim(cfg.PublicBaseURL, "/")
	if base == "/" || strings.Contains(base, "://") {
		return
	}
	fs := http.StripPrefix(base, http.FileServer(http.Dir(cfg.LocalDir)))
	r.Handle(base+"/*", fs)
}

func apiPrefix(prefix string) string {
	trimmed := strings.Trim(strings.TrimSpace(prefix), "/")
	if trimmed == "" {
		return "/api/v1"
	}
	return "/" + trimmed
}
