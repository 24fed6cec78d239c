package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"trendpulse/internal/core"
	"trendpulse/internal/logger"
)

const gdeltDocURL = "https://api.gdeltproject.org/api/v2/doc/doc"

// gdeltTimeLayout is GDELT's compact YYYYMMDDhhmmss timestamp, always UTC.
const gdeltTimeLayout = "20060102150405"

// GDELTAdapter collects AI coverage from the GDELT DOC 2.0 API.
type GDELTAdapter struct {
	client  *http.Client
	baseURL string
}

// NewGDELTAdapter builds the GDELT adapter.
func NewGDELTAdapter() *GDELTAdapter {
	return &GDELTAdapter{client: newHTTPClient(12 * time.Second), baseURL: gdeltDocURL}
}

// NewGDELTAdapterWithBaseURL is used by tests to point at a fake upstream.
func NewGDELTAdapterWithBaseURL(baseURL string) *GDELTAdapter {
	a := NewGDELTAdapter()
	a.baseURL = baseURL
	return a
}

// Name implements Adapter.
func (a *GDELTAdapter) Name() string { return "gdelt" }

type gdeltResponse struct {
	Articles []struct {
		Title    string `json:"title"`
		URL      string `json:"url"`
		SeenDate string `json:"seendate"`
		Domain   string `json:"domain"`
		Language string `json:"language"`
	} `json:"articles"`
}

// Collect queries the article list mode inside the window.
func (a *GDELTAdapter) Collect(ctx context.Context, windowHours int) []core.Item {
	now := time.Now().UTC()
	cutoff := cutoffFor(windowHours)

	params := url.Values{}
	params.Set("query", `("artificial intelligence" OR "AI model" OR LLM) sourcelang:english OR sourcelang:korean`)
	params.Set("mode", "artlist")
	params.Set("format", "json")
	params.Set("maxrecords", "75")
	params.Set("startdatetime", cutoff.Format(gdeltTimeLayout))
	params.Set("enddatetime", now.Format(gdeltTimeLayout))

	var decoded gdeltResponse
	if err := getJSON(ctx, a.client, a.baseURL+"?"+params.Encode(), nil, &decoded); err != nil {
		logger.Warn("gdelt query failed", "error", err.Error())
		return nil
	}

	var items []core.Item
	for _, art := range decoded.Articles {
		published, err := ParseGDELTTime(art.SeenDate)
		if err != nil {
			continue
		}
		item := core.Item{
			Title:        art.Title,
			Link:         art.URL,
			PublishedAt:  published,
			SourceDomain: strings.ToLower(strings.TrimPrefix(art.Domain, "www.")),
			FeedTitle:    "GDELT",
			Tier:         core.TierP2Raw,
			Lang:         gdeltLang(art.Language),
		}
		if item.SourceDomain == "" {
			item.SourceDomain = extractDomain(art.URL)
		}
		if validItem(item, cutoff) {
			items = append(items, item)
		}
	}
	return items
}

// ParseGDELTTime parses GDELT's compact timestamp into a UTC instant. The
// API also emits a "YYYYMMDDThhmmssZ" variant, which is tolerated.
func ParseGDELTTime(s string) (time.Time, error) {
	s = strings.TrimSuffix(strings.ReplaceAll(s, "T", ""), "Z")
	t, err := time.ParseInLocation(gdeltTimeLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid gdelt timestamp %q: %w", s, err)
	}
	return t, nil
}

// gdeltLang maps the GDELT language label onto the pipeline's two codes.
func gdeltLang(label string) string {
	if strings.EqualFold(label, "korean") || strings.EqualFold(label, "ko") {
		return "ko"
	}
	return "en"
}
