// Package analysis serves the performance dashboard built from settled tips.
package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tipsgolbr/tipsgol/internal/cache"
	"github.com/tipsgolbr/tipsgol/internal/lib/settlement"
	"github.com/tipsgolbr/tipsgol/internal/lib/sl"
	"github.com/tipsgolbr/tipsgol/internal/models"
)

// Repository lists settled tips.
type Repository interface {
	ListSettledTips(ctx context.Context) ([]models.Tip, error)
}

// Cache holds the last computed dashboard.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
}

// Service computes the dashboard and caches it until a tip changes or ttl passes.
type Service struct {
	repo  Repository
	cache Cache
	log   *slog.Logger
	loc   *time.Location
	ttl   time.Duration
}

// New returns a dashboard service grouping months in loc.
func New(repo Repository, cache Cache, log *slog.Logger, loc *time.Location, ttl time.Duration) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
		log:   log,
		loc:   loc,
		ttl:   ttl,
	}
}

// Dashboard returns per-method summaries, global totals and the monthly cumulative series.
// Cache failures are logged and the dashboard is computed from storage.
func (s *Service) Dashboard(ctx context.Context) (settlement.Result, error) {
	const op = "analysis.Dashboard"

	var cached settlement.Result
	found, err := s.cache.Get(ctx, cache.KeyDashboard, &cached)
	if err != nil {
		s.log.Warn("dashboard cache read failed", sl.Err(err))
	}
	if found {
		return cached, nil
	}

	tips, err := s.repo.ListSettledTips(ctx)
	if err != nil {
		return settlement.Result{}, fmt.Errorf("%s: %w", op, err)
	}
	for i := range tips {
		tips[i].MatchDate = tips[i].MatchDate.In(s.loc)
	}
	res := settlement.Aggregate(tips)

	if err := s.cache.Set(ctx, cache.KeyDashboard, res, s.ttl); err != nil {
		s.log.Warn("dashboard cache write failed", sl.Err(err))
	}
	s.log.Debug("dashboard computed", slog.Int("tips", len(tips)), slog.Int("methods", len(res.Methods)))
	return res, nil
}
