package news

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const userAgent = "Mozilla/5.0 (compatible; TipsGolBot/1.0)"

// ErrNoImage is returned when a page has no usable cover image.
var ErrNoImage = errors.New("no cover image")

// StripImages removes every <img> from an HTML fragment.
func StripImages(fragment string) string {
	if !strings.Contains(fragment, "<img") {
		return strings.TrimSpace(fragment)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return fragment
	}
	doc.Find("img").Remove()
	out, err := doc.Find("body").Html()
	if err != nil {
		return fragment
	}
	return strings.TrimSpace(out)
}

// ImageScraper finds the cover image of an article page.
type ImageScraper struct {
	client  *http.Client
	timeout time.Duration
}

// NewImageScraper returns a scraper giving each page timeout to answer.
func NewImageScraper(client *http.Client, timeout time.Duration) *ImageScraper {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &ImageScraper{client: client, timeout: timeout}
}

// Scrape returns the og:image of the page, else its main picture, else its first image.
func (s *ImageScraper) Scrape(ctx context.Context, pageURL string) (string, error) {
	const op = "news.Scrape"

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%s: unexpected status %s", op, resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	candidates := []string{
		doc.Find(`meta[property="og:image"]`).AttrOr("content", ""),
		doc.Find("img.capa, img.principal").First().AttrOr("src", ""),
		doc.Find("img[src]").First().AttrOr("src", ""),
	}
	for _, c := range candidates {
		if c = strings.TrimSpace(c); c != "" {
			return resolve(pageURL, c), nil
		}
	}
	return "", fmt.Errorf("%s: %w", op, ErrNoImage)
}

func resolve(base, ref string) string {
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}
