// Package banners manages the promotions carousel.
package banners

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tipsgolbr/tipsgol/internal/cache"
	"github.com/tipsgolbr/tipsgol/internal/lib/sl"
	"github.com/tipsgolbr/tipsgol/internal/models"
)

// Repository stores banners.
type Repository interface {
	ActiveBanners(ctx context.Context) ([]models.Banner, error)
	CreateBanner(ctx context.Context, b models.Banner) (int64, error)
}

// Cache holds the active carousel.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, keys ...string) error
}

// Service lists and creates banners.
type Service struct {
	repo  Repository
	cache Cache
	log   *slog.Logger
	ttl   time.Duration
}

// New returns a banner service.
func New(repo Repository, cache Cache, log *slog.Logger, ttl time.Duration) *Service {
	return &Service{repo: repo, cache: cache, log: log, ttl: ttl}
}

// Active returns the active banners, lowest display order first.
func (s *Service) Active(ctx context.Context) ([]models.Banner, error) {
	const op = "banners.Active"

	var cached []models.Banner
	found, err := s.cache.Get(ctx, cache.KeyBanners, &cached)
	if err != nil {
		s.log.Warn("banners cache read failed", sl.Err(err))
	}
	if found {
		return cached, nil
	}

	list, err := s.repo.ActiveBanners(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.cache.Set(ctx, cache.KeyBanners, list, s.ttl); err != nil {
		s.log.Warn("banners cache write failed", sl.Err(err))
	}
	return list, nil
}

// Create adds an active banner.
func (s *Service) Create(ctx context.Context, in models.DummyBanner) (int64, error) {
	const op = "banners.Create"

	b := models.Banner{
		ImageURL:     in.ImageURL,
		LinkURL:      in.LinkURL,
		IsActive:     true,
		DisplayOrder: in.DisplayOrder,
	}
	if in.Title != "" {
		title := in.Title
		b.Title = &title
	}
	if in.Description != "" {
		desc := in.Description
		b.Description = &desc
	}

	id, err := s.repo.CreateBanner(ctx, b)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.cache.Invalidate(ctx, cache.KeyBanners); err != nil {
		s.log.Warn("banners cache invalidation failed", sl.Err(err))
	}
	s.log.Info("banner created", slog.Int64("id", id))
	return id, nil
}
