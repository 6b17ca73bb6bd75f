package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tipsgolbr/tipsgol/internal/models"
)

// NewsExists reports whether a news item with this title was already stored.
func (s *Storage) NewsExists(ctx context.Context, title string) (bool, error) {
	const op = "storage.NewsExists"
	if err := checkCtx(ctx, op); err != nil {
		return false, err
	}

	var exists bool
	err := s.conn(ctx).QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM news WHERE title = $1)`, title).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return exists, nil
}

// CreateNews stores a news item. A duplicate title is skipped and reported with id 0.
func (s *Storage) CreateNews(ctx context.Context, n models.News) (int64, error) {
	const op = "storage.CreateNews"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	query := `INSERT INTO news (title, source_url, summary, published_at, image_url)
			  VALUES ($1, $2, $3, $4, $5)
			  ON CONFLICT (title) DO NOTHING
			  RETURNING id`
	var id int64
	err := s.conn(ctx).QueryRowContext(ctx, query,
		n.Title, n.SourceURL, n.Summary, n.PublishedAt, n.ImageURL).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// LatestNews returns the most recently published news.
func (s *Storage) LatestNews(ctx context.Context, limit int) ([]models.News, error) {
	const op = "storage.LatestNews"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT id, title, source_url, summary, published_at, extracted_at, image_url
			  FROM news
			  ORDER BY published_at DESC, id DESC
			  LIMIT $1`
	rows, err := s.conn(ctx).QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := []models.News{}
	for rows.Next() {
		var n models.News
		var image sql.NullString
		if err = rows.Scan(&n.ID, &n.Title, &n.SourceURL, &n.Summary, &n.PublishedAt,
			&n.ExtractedAt, &image); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if image.Valid {
			n.ImageURL = &image.String
		}
		result = append(result, n)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// DeleteNewsBefore removes news published before t and returns how many were removed.
func (s *Storage) DeleteNewsBefore(ctx context.Context, t time.Time) (int64, error) {
	const op = "storage.DeleteNewsBefore"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	res, err := s.conn(ctx).ExecContext(ctx, `DELETE FROM news WHERE published_at < $1`, t)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}

// ActiveBanners returns the carousel entries in display order.
func (s *Storage) ActiveBanners(ctx context.Context) ([]models.Banner, error) {
	const op = "storage.ActiveBanners"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT id, title, description, image_url, link_url, is_active, display_order, created_at
			  FROM banners
			  WHERE is_active = TRUE
			  ORDER BY display_order, created_at DESC`
	rows, err := s.conn(ctx).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := []models.Banner{}
	for rows.Next() {
		var b models.Banner
		var title, description sql.NullString
		if err = rows.Scan(&b.ID, &title, &description, &b.ImageURL, &b.LinkURL, &b.IsActive,
			&b.DisplayOrder, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if title.Valid {
			b.Title = &title.String
		}
		if description.Valid {
			b.Description = &description.String
		}
		result = append(result, b)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// CreateBanner inserts a banner and returns its id.
func (s *Storage) CreateBanner(ctx context.Context, b models.Banner) (int64, error) {
	const op = "storage.CreateBanner"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	query := `INSERT INTO banners (title, description, image_url, link_url, is_active, display_order)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING id`
	var id int64
	if err := s.conn(ctx).QueryRowContext(ctx, query,
		b.Title, b.Description, b.ImageURL, b.LinkURL, b.IsActive, b.DisplayOrder).Scan(&id); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}
