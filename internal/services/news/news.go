// Package news pulls football news from RSS feeds, cleans it up and keeps a
// rolling window of recent items.
package news

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/tipsgolbr/tipsgol/internal/cache"
	"github.com/tipsgolbr/tipsgol/internal/config"
	"github.com/tipsgolbr/tipsgol/internal/lib/sl"
	"github.com/tipsgolbr/tipsgol/internal/metrics"
	"github.com/tipsgolbr/tipsgol/internal/models"
)

// ErrAllFeedsFailed is returned when no configured feed could be read.
var ErrAllFeedsFailed = errors.New("no feed could be read")

const feedTimeout = 20 * time.Second

// Repository stores news items.
type Repository interface {
	NewsExists(ctx context.Context, title string) (bool, error)
	CreateNews(ctx context.Context, n models.News) (int64, error)
	LatestNews(ctx context.Context, limit int) ([]models.News, error)
	DeleteNewsBefore(ctx context.Context, t time.Time) (int64, error)
}

// Cache holds the latest news listing.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, keys ...string) error
}

// Service extracts and serves news.
type Service struct {
	repo    Repository
	cache   Cache
	parser  *gofeed.Parser
	scraper *ImageScraper
	cfg     config.News
	ttl     time.Duration
	metrics *metrics.Metrics
	log     *slog.Logger
	now     func() time.Time
}

// New returns a news service for the feeds in cfg.
func New(repo Repository, cache Cache, cfg config.News, ttl time.Duration, m *metrics.Metrics, log *slog.Logger) *Service {
	parser := gofeed.NewParser()
	parser.UserAgent = userAgent
	return &Service{
		repo:    repo,
		cache:   cache,
		parser:  parser,
		scraper: NewImageScraper(&http.Client{}, cfg.ImageTimeout),
		cfg:     cfg,
		ttl:     ttl,
		metrics: m,
		log:     log,
		now:     time.Now,
	}
}

// Extract reads every feed and stores the items not seen before. A failing
// feed is logged and skipped; it returns the number of stored items.
func (s *Service) Extract(ctx context.Context) (int, error) {
	const op = "news.Extract"

	stored, failed := 0, 0
	for _, url := range s.cfg.Feeds {
		n, err := s.extractFeed(ctx, url)
		stored += n
		if err != nil {
			failed++
			s.log.Error("feed extraction failed", slog.String("feed", url), sl.Err(err))
			if ctx.Err() != nil {
				return stored, fmt.Errorf("%s: %w", op, ctx.Err())
			}
		}
	}

	if stored > 0 {
		if err := s.cache.Invalidate(ctx, cache.KeyLatestNews); err != nil {
			s.log.Warn("news cache invalidation failed", sl.Err(err))
		}
	}
	s.metrics.NewsStored(stored)
	s.log.Info("news extraction finished", slog.Int("stored", stored), slog.Int("failed_feeds", failed))

	if len(s.cfg.Feeds) > 0 && failed == len(s.cfg.Feeds) {
		return stored, fmt.Errorf("%s: %w", op, ErrAllFeedsFailed)
	}
	return stored, nil
}

func (s *Service) extractFeed(ctx context.Context, url string) (int, error) {
	feedCtx, cancel := context.WithTimeout(ctx, feedTimeout)
	defer cancel()

	feed, err := s.parser.ParseURLWithContext(url, feedCtx)
	if err != nil {
		return 0, err
	}

	stored := 0
	for _, item := range feed.Items {
		if item == nil || item.Title == "" || item.Link == "" {
			continue
		}
		exists, err := s.repo.NewsExists(ctx, item.Title)
		if err != nil {
			return stored, err
		}
		if exists {
			continue
		}

		n := models.News{
			Title:       item.Title,
			SourceURL:   item.Link,
			Summary:     StripImages(summaryOf(item)),
			PublishedAt: s.publishedAt(item),
		}
		if img := s.imageOf(ctx, item); img != "" {
			n.ImageURL = &img
		}

		id, err := s.repo.CreateNews(ctx, n)
		if err != nil {
			return stored, err
		}
		if id != 0 {
			stored++
		}
	}
	return stored, nil
}

func summaryOf(item *gofeed.Item) string {
	if item.Description != "" {
		return item.Description
	}
	return item.Content
}

func (s *Service) publishedAt(item *gofeed.Item) time.Time {
	switch {
	case item.PublishedParsed != nil:
		return *item.PublishedParsed
	case item.UpdatedParsed != nil:
		return *item.UpdatedParsed
	default:
		return s.now()
	}
}

func (s *Service) imageOf(ctx context.Context, item *gofeed.Item) string {
	if item.Image != nil && item.Image.URL != "" {
		return item.Image.URL
	}
	for _, enc := range item.Enclosures {
		if enc != nil && enc.URL != "" && strings.HasPrefix(enc.Type, "image/") {
			return enc.URL
		}
	}
	img, err := s.scraper.Scrape(ctx, item.Link)
	if err != nil {
		s.log.Debug("cover image not found", slog.String("link", item.Link), sl.Err(err))
		return ""
	}
	return img
}

// Latest returns the newest news items.
func (s *Service) Latest(ctx context.Context) ([]models.News, error) {
	const op = "news.Latest"

	var cached []models.News
	found, err := s.cache.Get(ctx, cache.KeyLatestNews, &cached)
	if err != nil {
		s.log.Warn("news cache read failed", sl.Err(err))
	}
	if found {
		return cached, nil
	}

	list, err := s.repo.LatestNews(ctx, s.cfg.LatestCount)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.cache.Set(ctx, cache.KeyLatestNews, list, s.ttl); err != nil {
		s.log.Warn("news cache write failed", sl.Err(err))
	}
	return list, nil
}

// Purge removes news older than the retention window.
func (s *Service) Purge(ctx context.Context) (int64, error) {
	const op = "news.Purge"

	cutoff := s.now().Add(-s.cfg.Retention)
	n, err := s.repo.DeleteNewsBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if n > 0 {
		if err := s.cache.Invalidate(ctx, cache.KeyLatestNews); err != nil {
			s.log.Warn("news cache invalidation failed", sl.Err(err))
		}
	}
	s.log.Info("old news purged", slog.Int64("removed", n), slog.Time("before", cutoff))
	return n, nil
}
