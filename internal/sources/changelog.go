package sources

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"trendpulse/internal/core"
	"trendpulse/internal/logger"
	"trendpulse/internal/pool"
)

// ChangelogStrategy describes how to scrape one product changelog page.
// Each entry selected by EntrySelector must yield a title, a link and a
// parseable date; entries that don't are skipped.
type ChangelogStrategy struct {
	Name          string
	URL           string
	EntrySelector string
	TitleSelector string
	LinkSelector  string
	DateSelector  string
	DateLayouts   []string
}

// defaultStrategies covers the product changelogs that don't publish feeds.
var defaultStrategies = []ChangelogStrategy{
	{
		Name:          "Cursor Changelog",
		URL:           "https://www.cursor.com/changelog",
		EntrySelector: "article",
		TitleSelector: "h2",
		LinkSelector:  "a",
		DateSelector:  "time",
		DateLayouts:   []string{"2006-01-02", "January 2, 2006"},
	},
	{
		Name:          "GitHub Copilot Changelog",
		URL:           "https://github.blog/changelog/label/copilot/",
		EntrySelector: "article",
		TitleSelector: "h3 a",
		LinkSelector:  "h3 a",
		DateSelector:  "time",
		DateLayouts:   []string{time.RFC3339, "2006-01-02", "January 2, 2006"},
	},
	{
		Name:          "Perplexity Changelog",
		URL:           "https://www.perplexity.ai/changelog",
		EntrySelector: "section[data-entry], article",
		TitleSelector: "h2, h3",
		LinkSelector:  "a",
		DateSelector:  "time, .date",
		DateLayouts:   []string{"2006-01-02", "Jan 2, 2006", "January 2, 2006"},
	},
}

// ChangelogAdapter scrapes HTML product changelogs with per-source
// CSS-selector strategies.
type ChangelogAdapter struct {
	client     *http.Client
	strategies []ChangelogStrategy
}

// NewChangelogAdapter builds the adapter over the default strategies.
func NewChangelogAdapter() *ChangelogAdapter {
	return NewChangelogAdapterWithStrategies(defaultStrategies)
}

// NewChangelogAdapterWithStrategies is used by tests.
func NewChangelogAdapterWithStrategies(strategies []ChangelogStrategy) *ChangelogAdapter {
	return &ChangelogAdapter{client: newHTTPClient(12 * time.Second), strategies: strategies}
}

// Name implements Adapter.
func (a *ChangelogAdapter) Name() string { return "changelog" }

// Collect fans out over the configured strategies and merges their entries.
func (a *ChangelogAdapter) Collect(ctx context.Context, windowHours int) []core.Item {
	cutoff := cutoffFor(windowHours)

	perSource, errs := pool.Map(ctx, a.strategies, 3, func(ctx context.Context, s ChangelogStrategy) ([]core.Item, error) {
		return a.scrape(ctx, s, cutoff)
	})
	for i, err := range errs {
		if err != nil {
			logger.Warn("changelog scrape failed", "source", a.strategies[i].Name, "error", err.Error())
		}
	}

	var items []core.Item
	for _, sourceItems := range perSource {
		items = append(items, sourceItems...)
	}
	return items
}

func (a *ChangelogAdapter) scrape(ctx context.Context, s ChangelogStrategy, cutoff time.Time) ([]core.Item, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}

	domain := extractDomain(s.URL)

	var items []core.Item
	doc.Find(s.EntrySelector).Each(func(_ int, entry *goquery.Selection) {
		title := strings.TrimSpace(entry.Find(s.TitleSelector).First().Text())
		published, ok := entryDate(entry, s)
		if !ok {
			return
		}

		link := s.URL
		if href, exists := entry.Find(s.LinkSelector).First().Attr("href"); exists {
			link = resolveLink(s.URL, href)
		}

		item := core.Item{
			Title:        title,
			Link:         link,
			PublishedAt:  published,
			SourceDomain: domain,
			FeedTitle:    s.Name,
			Tier:         core.TierP0Releases,
			Lang:         langFor(title),
		}
		if validItem(item, cutoff) {
			items = append(items, item)
		}
	})
	return items, nil
}

// entryDate resolves an entry's publication instant, preferring a machine
// readable datetime attribute over the element text.
func entryDate(entry *goquery.Selection, s ChangelogStrategy) (time.Time, bool) {
	node := entry.Find(s.DateSelector).First()
	raw, exists := node.Attr("datetime")
	if !exists {
		raw = strings.TrimSpace(node.Text())
	}
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range s.DateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// resolveLink absolutizes a scraped href against the page URL.
func resolveLink(pageURL, href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	if strings.HasPrefix(href, "/") {
		if idx := strings.Index(pageURL, "//"); idx >= 0 {
			if slash := strings.Index(pageURL[idx+2:], "/"); slash >= 0 {
				return pageURL[:idx+2+slash] + href
			}
		}
		return strings.TrimSuffix(pageURL, "/") + href
	}
	return pageURL
}
