package tipsgol

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/tipsgolbr/tipsgol/internal/config"
	"github.com/tipsgolbr/tipsgol/internal/http/handlers/analysis/dashboard"
	"github.com/tipsgolbr/tipsgol/internal/http/handlers/auth/login"
	"github.com/tipsgolbr/tipsgol/internal/http/handlers/auth/me"
	"github.com/tipsgolbr/tipsgol/internal/http/handlers/auth/register"
	bannercreate "github.com/tipsgolbr/tipsgol/internal/http/handlers/banners/create"
	bannerlist "github.com/tipsgolbr/tipsgol/internal/http/handlers/banners/list"
	"github.com/tipsgolbr/tipsgol/internal/http/handlers/calculator/dutching"
	"github.com/tipsgolbr/tipsgol/internal/http/handlers/health"
	"github.com/tipsgolbr/tipsgol/internal/http/handlers/news/extract"
	newslist "github.com/tipsgolbr/tipsgol/internal/http/handlers/news/list"
	"github.com/tipsgolbr/tipsgol/internal/http/handlers/payment/checkout"
	"github.com/tipsgolbr/tipsgol/internal/http/handlers/payment/notification"
	"github.com/tipsgolbr/tipsgol/internal/http/handlers/payment/plans"
	tipcreate "github.com/tipsgolbr/tipsgol/internal/http/handlers/tips/create"
	"github.com/tipsgolbr/tipsgol/internal/http/handlers/tips/deactivate"
	tipinsight "github.com/tipsgolbr/tipsgol/internal/http/handlers/tips/insight"
	tiplist "github.com/tipsgolbr/tipsgol/internal/http/handlers/tips/list"
	tippremium "github.com/tipsgolbr/tipsgol/internal/http/handlers/tips/premium"
	"github.com/tipsgolbr/tipsgol/internal/http/handlers/tips/settle"
	userpremium "github.com/tipsgolbr/tipsgol/internal/http/handlers/users/premium"
	"github.com/tipsgolbr/tipsgol/internal/http/handlers/users/subscription"
	"github.com/tipsgolbr/tipsgol/internal/http/middlewarectx"
	"github.com/tipsgolbr/tipsgol/internal/metrics"
	"github.com/tipsgolbr/tipsgol/internal/services/analysis"
	"github.com/tipsgolbr/tipsgol/internal/services/auth"
	"github.com/tipsgolbr/tipsgol/internal/services/banners"
	"github.com/tipsgolbr/tipsgol/internal/services/insight"
	"github.com/tipsgolbr/tipsgol/internal/services/news"
	"github.com/tipsgolbr/tipsgol/internal/services/payment"
	"github.com/tipsgolbr/tipsgol/internal/services/premium"
	"github.com/tipsgolbr/tipsgol/internal/services/tips"
)

// Services are the dependencies of the router.
type Services struct {
	Auth     *auth.Service
	Premium  *premium.Service
	Tips     *tips.Service
	Analysis *analysis.Service
	News     *news.Service
	Banners  *banners.Service
	Payment  *payment.Service
	Insight  *insight.Service
	DB       health.Pinger
	JWT      middlewarectx.TokenParser
	Metrics  *metrics.Metrics
}

// RegisterRoutes mounts every endpoint on r.
func RegisterRoutes(r chi.Router, logger *slog.Logger, cfg config.HTTPServer, s Services) {
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
		cors.Handler(cors.Options{
			AllowedOrigins: cfg.AllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
			MaxAge:         300,
		}),
		middlewarectx.MetricsMiddleware(s.Metrics),
	)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middlewarectx.RateLimitMiddleware(logger, cfg.RateLimit, cfg.RateBurst))

		r.Post("/register", register.New(logger, s.Auth).ServeHTTP)
		r.Post("/login", login.New(logger, s.Auth).ServeHTTP)
		r.Get("/tips", tiplist.New(logger, s.Tips).ServeHTTP)
		r.Get("/news", newslist.New(logger, s.News).ServeHTTP)
		r.Get("/banners", bannerlist.New(logger, s.Banners).ServeHTTP)
		r.Get("/plans", plans.New(s.Payment).ServeHTTP)
		r.Post("/calculator/dutching", dutching.New(logger).ServeHTTP)
		r.Post("/payments/pagseguro/notification", notification.New(logger, s.Payment).ServeHTTP)

		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(s.JWT, logger))
			r.Get("/me", me.New(logger, s.Premium).ServeHTTP)
			r.Get("/tips/premium", tippremium.New(logger, s.Premium, s.Tips).ServeHTTP)
			r.Get("/analysis/dashboard", dashboard.New(logger, s.Analysis).ServeHTTP)
			r.Get("/checkout/{planID}", checkout.New(logger, s.Payment).ServeHTTP)

			r.Route("/admin", func(r chi.Router) {
				r.Use(middlewarectx.RequireAdmin(logger))
				r.Post("/tips", tipcreate.New(logger, s.Tips).ServeHTTP)
				r.Put("/tips/{id}/settle", settle.New(logger, s.Tips).ServeHTTP)
				r.Post("/tips/{id}/deactivate", deactivate.New(logger, s.Tips).ServeHTTP)
				r.Post("/tips/{id}/insight", tipinsight.New(logger, s.Insight).ServeHTTP)
				r.Post("/users/{username}/premium", userpremium.New(logger, s.Premium).ServeHTTP)
				r.Put("/users/{username}/subscription", subscription.New(logger, s.Premium).ServeHTTP)
				r.Post("/banners", bannercreate.New(logger, s.Banners).ServeHTTP)
				r.Post("/news/extract", extract.New(logger, s.News).ServeHTTP)
			})
		})
	})

	r.Get("/healthz", health.New(logger, s.DB).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
