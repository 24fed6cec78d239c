package enrich

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"trendpulse/internal/core"
	"trendpulse/internal/pool"
	"trendpulse/internal/search"
)

const (
	ogScrapeLimit   = 10
	ogScrapeWorkers = 5
	ogScrapeTimeout = 5 * time.Second
)

// ImageScraper backfills missing source images from page metadata.
type ImageScraper struct {
	client *http.Client
}

// NewImageScraper builds the scraper with the per-request timeout.
func NewImageScraper() *ImageScraper {
	return &ImageScraper{client: &http.Client{Timeout: ogScrapeTimeout}}
}

// Backfill scrapes OG images for the first ogScrapeLimit results lacking
// one, ogScrapeWorkers pages at a time, and writes them in place. Results
// still without an image get the default sentinel.
func (s *ImageScraper) Backfill(ctx context.Context, results []search.Result) {
	var missing []int
	for i := range results {
		if results[i].ImageURL == "" && len(missing) < ogScrapeLimit {
			missing = append(missing, i)
		}
	}

	pool.ForEach(ctx, len(missing), ogScrapeWorkers, func(ctx context.Context, n int) error {
		idx := missing[n]
		if img := s.scrape(ctx, results[idx].URL); img != "" {
			results[idx].ImageURL = img
		}
		return nil
	})

	for i := range results {
		if results[i].ImageURL == "" {
			results[i].ImageURL = core.DefaultImageURL
		}
	}
}

// scrape fetches one page and resolves its preview image by priority:
// og:image, twitter:image, then the icon link. Failures yield "".
func (s *ImageScraper) scrape(ctx context.Context, pageURL string) string {
	ctx, cancel := context.WithTimeout(ctx, ogScrapeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return ""
	}
	req.Header.Set("User-Agent", "trendpulse/1.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return ""
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return ""
	}

	if img, ok := doc.Find(`meta[property="og:image"]`).First().Attr("content"); ok && validImageURL(img) {
		return img
	}
	if img, ok := doc.Find(`meta[name="twitter:image"]`).First().Attr("content"); ok && validImageURL(img) {
		return img
	}
	if img, ok := doc.Find(`link[rel="icon"]`).First().Attr("href"); ok && validImageURL(img) {
		return img
	}
	return ""
}

func validImageURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
