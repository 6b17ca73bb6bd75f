// Package tipsgol wires the HTTP API: storage, cache, services and router.
package tipsgol

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/tipsgolbr/tipsgol/internal/cache"
	"github.com/tipsgolbr/tipsgol/internal/config"
	"github.com/tipsgolbr/tipsgol/internal/lib/jwt"
	"github.com/tipsgolbr/tipsgol/internal/lib/sl"
	"github.com/tipsgolbr/tipsgol/internal/metrics"
	"github.com/tipsgolbr/tipsgol/internal/migrations"
	"github.com/tipsgolbr/tipsgol/internal/paymentprovider"
	"github.com/tipsgolbr/tipsgol/internal/services/analysis"
	"github.com/tipsgolbr/tipsgol/internal/services/auth"
	"github.com/tipsgolbr/tipsgol/internal/services/banners"
	"github.com/tipsgolbr/tipsgol/internal/services/insight"
	"github.com/tipsgolbr/tipsgol/internal/services/news"
	"github.com/tipsgolbr/tipsgol/internal/services/payment"
	"github.com/tipsgolbr/tipsgol/internal/services/premium"
	"github.com/tipsgolbr/tipsgol/internal/services/tips"
	"github.com/tipsgolbr/tipsgol/internal/storage"
)

const shutdownTimeout = 15 * time.Second

// App is the API server.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *storage.Storage
	cache  *cache.Cache
}

// New connects the dependencies, migrates the schema and builds the router.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := storage.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		_ = db.Close()
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	loc := cfg.Location()
	ttl := cfg.CacheTTL
	m := metrics.NewDefault()
	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)

	var gen insight.Generator
	if g, err := insight.NewGeminiGenerator(ctx, cfg.Gemini); err != nil {
		logger.Warn("tip insights disabled", sl.Err(err))
	} else {
		gen = g
	}

	premiumService := premium.New(db, db, logger, loc)
	tipsService := tips.New(db, cacheRedis, logger, loc, ttl)

	services := Services{
		Auth:     auth.New(db, jwtMaker, logger),
		Premium:  premiumService,
		Tips:     tipsService,
		Analysis: analysis.New(db, cacheRedis, logger, loc, ttl),
		News:     news.New(db, cacheRedis, cfg.News, ttl, m, logger),
		Banners:  banners.New(db, cacheRedis, logger, ttl),
		Payment:  payment.New(paymentprovider.NewClient(cfg.PagSeguro), premiumService, db, db, cfg.CheckoutURLs(), m, logger),
		Insight:  insight.New(db, gen, loc, logger),
		DB:       db.DB,
		JWT:      jwtMaker,
		Metrics:  m,
	}

	router := chi.NewRouter()
	RegisterRoutes(router, logger, cfg.HTTPServer, services)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		cache:  cacheRedis,
	}, nil
}

// Run serves until ctx is cancelled and then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.close()
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.close()
		return err
	}
}

func (a *App) close() {
	if err := a.cache.Close(); err != nil {
		a.logger.Error("failed to close cache", sl.Err(err))
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close database", sl.Err(err))
	}
}
