// Package scheduler runs the periodic jobs: premium-expiring reminders, the
// nightly premium sweep and the news extraction and purge.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"github.com/streadway/amqp"

	"github.com/tipsgolbr/tipsgol/internal/cache"
	"github.com/tipsgolbr/tipsgol/internal/config"
	"github.com/tipsgolbr/tipsgol/internal/lib/rabbitmq"
	"github.com/tipsgolbr/tipsgol/internal/lib/sl"
	"github.com/tipsgolbr/tipsgol/internal/metrics"
	"github.com/tipsgolbr/tipsgol/internal/services/news"
	"github.com/tipsgolbr/tipsgol/internal/services/premium"
	schedulerservice "github.com/tipsgolbr/tipsgol/internal/services/scheduler"
	"github.com/tipsgolbr/tipsgol/internal/storage"
)

// App is the scheduler process.
type App struct {
	cron       *cron.Cron
	jobs       *Jobs
	specs      config.Scheduler
	metricsSrv *http.Server
	db         *storage.Storage
	cache      *cache.Cache
	conn       *amqp.Connection
	ch         *amqp.Channel
	logger     *slog.Logger
}

// New connects the dependencies and prepares the cron table.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := storage.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect storage: %w", err)
	}
	if err := storage.WaitReady(ctx, db, 10, 3*time.Second); err != nil {
		_ = db.Close()
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("cache not initialized: %w", err)
	}

	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		_ = cacheRedis.Close()
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
	}
	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetNotificationQueues())
	if err != nil {
		_ = conn.Close()
		_ = cacheRedis.Close()
		_ = db.Close()
		return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
	}

	loc := cfg.Location()
	m := metrics.NewDefault()
	publisher := rabbitmq.NewPublisher(ch, rabbitmq.Exchange)

	jobs := NewJobs(ctx,
		schedulerservice.New(db, publisher, logger, loc),
		premium.New(db, db, logger, loc),
		news.New(db, cacheRedis, cfg.News, cfg.CacheTTL, m, logger),
		m, logger)

	cronLogger := cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelInfo))
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
	)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	return &App{
		cron:       c,
		jobs:       jobs,
		specs:      cfg.Scheduler,
		metricsSrv: &http.Server{Addr: cfg.MetricsAddress, Handler: mux, ReadHeaderTimeout: 5 * time.Second},
		db:         db,
		cache:      cacheRedis,
		conn:       conn,
		ch:         ch,
		logger:     logger,
	}, nil
}

// Schedule registers the jobs on c.
func Schedule(c *cron.Cron, specs config.Scheduler, jobs *Jobs) error {
	entries := []struct {
		name string
		spec string
		fn   func()
	}{
		{"premium_expiring", specs.ExpiringSpec, jobs.PublishExpiring},
		{"premium_sweep", specs.SweepSpec, jobs.SweepPremium},
		{"news_extract", specs.NewsSpec, jobs.ExtractNews},
		{"news_purge", specs.PurgeSpec, jobs.PurgeNews},
	}
	for _, e := range entries {
		if _, err := c.AddFunc(e.spec, e.fn); err != nil {
			return fmt.Errorf("schedule %s (%q): %w", e.name, e.spec, err)
		}
	}
	return nil
}

// Run starts cron and blocks until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if err := Schedule(a.cron, a.specs, a.jobs); err != nil {
		a.close()
		return err
	}
	a.cron.Start()
	a.logger.Info("scheduler started",
		slog.String("expiring", a.specs.ExpiringSpec),
		slog.String("sweep", a.specs.SweepSpec),
		slog.String("news", a.specs.NewsSpec),
		slog.String("purge", a.specs.PurgeSpec))

	go func() {
		if err := a.metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("metrics server stopped", sl.Err(err))
		}
	}()

	<-ctx.Done()
	a.logger.Info("shutting down scheduler")

	stopCtx := a.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(30 * time.Second):
		a.logger.Warn("running jobs did not finish in time")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.metricsSrv.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("failed to stop metrics server", sl.Err(err))
	}
	a.close()
	return nil
}

func (a *App) close() {
	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", sl.Err(err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", sl.Err(err))
	}
	if err := a.cache.Close(); err != nil {
		a.logger.Error("failed to close cache", sl.Err(err))
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close database", sl.Err(err))
	}
}
