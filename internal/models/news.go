package models

import "time"

// News is an article extracted from an RSS feed.
type News struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	SourceURL   string    `json:"source_url"`
	Summary     string    `json:"summary"`
	PublishedAt time.Time `json:"published_at"`
	ExtractedAt time.Time `json:"extracted_at"`
	ImageURL    *string   `json:"image_url,omitempty"`
}

// Banner is an entry of the promotions carousel.
type Banner struct {
	ID           int64     `json:"id"`
	Title        *string   `json:"title,omitempty"`
	Description  *string   `json:"description,omitempty"`
	ImageURL     string    `json:"image_url"`
	LinkURL      string    `json:"link_url"`
	IsActive     bool      `json:"is_active"`
	DisplayOrder int       `json:"display_order"`
	CreatedAt    time.Time `json:"created_at"`
}

// DummyBanner is the JSON payload for creating a banner.
type DummyBanner struct {
	Title        string `json:"title" validate:"omitempty,max=200"`
	Description  string `json:"description"`
	ImageURL     string `json:"image_url" validate:"required,url,max=500"`
	LinkURL      string `json:"link_url" validate:"required,url,max=500"`
	DisplayOrder int    `json:"display_order"`
}
