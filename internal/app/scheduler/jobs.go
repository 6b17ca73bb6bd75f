package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/tipsgolbr/tipsgol/internal/lib/sl"
	"github.com/tipsgolbr/tipsgol/internal/metrics"
)

const jobTimeout = 10 * time.Minute

// ExpiringPublisher queues premium-expiring notices.
type ExpiringPublisher interface {
	PublishExpiring(ctx context.Context) (int, error)
}

// Sweeper recomputes stale premium flags.
type Sweeper interface {
	SweepExpired(ctx context.Context) (int, error)
}

// NewsJobs extracts and purges news.
type NewsJobs interface {
	Extract(ctx context.Context) (int, error)
	Purge(ctx context.Context) (int64, error)
}

// Jobs are the functions run by cron. Each run gets its own timeout and is
// counted in the job metrics.
type Jobs struct {
	ctx      context.Context
	expiring ExpiringPublisher
	sweeper  Sweeper
	news     NewsJobs
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// NewJobs returns the jobs bound to ctx; cancelling it aborts running jobs.
func NewJobs(ctx context.Context, expiring ExpiringPublisher, sweeper Sweeper, news NewsJobs, m *metrics.Metrics, logger *slog.Logger) *Jobs {
	return &Jobs{
		ctx:      ctx,
		expiring: expiring,
		sweeper:  sweeper,
		news:     news,
		metrics:  m,
		logger:   logger,
	}
}

func (j *Jobs) run(name string, fn func(ctx context.Context) (int64, error)) {
	ctx, cancel := context.WithTimeout(j.ctx, jobTimeout)
	defer cancel()

	start := time.Now()
	n, err := fn(ctx)
	j.metrics.JobRun(name, err)
	log := j.logger.With(slog.String("job", name), slog.Duration("took", time.Since(start)))
	if err != nil {
		log.Error("job failed", sl.Err(err))
		return
	}
	log.Info("job finished", slog.Int64("affected", n))
}

// PublishExpiring queues reminders for members whose premium ends tomorrow.
func (j *Jobs) PublishExpiring() {
	j.run("premium_expiring", func(ctx context.Context) (int64, error) {
		n, err := j.expiring.PublishExpiring(ctx)
		return int64(n), err
	})
}

// SweepPremium closes the gap between the stored flag and the expiration date.
func (j *Jobs) SweepPremium() {
	j.run("premium_sweep", func(ctx context.Context) (int64, error) {
		n, err := j.sweeper.SweepExpired(ctx)
		return int64(n), err
	})
}

// ExtractNews reads the RSS feeds.
func (j *Jobs) ExtractNews() {
	j.run("news_extract", func(ctx context.Context) (int64, error) {
		n, err := j.news.Extract(ctx)
		return int64(n), err
	})
}

// PurgeNews deletes news past the retention window.
func (j *Jobs) PurgeNews() {
	j.run("news_purge", j.news.Purge)
}
