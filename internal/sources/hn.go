package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"trendpulse/internal/core"
	"trendpulse/internal/logger"
)

const hnSearchURL = "https://hn.algolia.com/api/v1/search_by_date"

// HNAdapter collects AI-related stories from the Algolia Hacker News API.
type HNAdapter struct {
	client  *http.Client
	baseURL string
	query   string
}

// NewHNAdapter builds the Hacker News adapter.
func NewHNAdapter() *HNAdapter {
	return &HNAdapter{
		client:  newHTTPClient(8 * time.Second),
		baseURL: hnSearchURL,
		query:   "AI",
	}
}

// NewHNAdapterWithBaseURL is used by tests to point at a fake upstream.
func NewHNAdapterWithBaseURL(baseURL string) *HNAdapter {
	a := NewHNAdapter()
	a.baseURL = baseURL
	return a
}

// Name implements Adapter.
func (a *HNAdapter) Name() string { return "hn" }

type hnResponse struct {
	Hits []struct {
		Title     string `json:"title"`
		URL       string `json:"url"`
		CreatedAt int64  `json:"created_at_i"`
		StoryText string `json:"story_text"`
	} `json:"hits"`
}

// Collect queries stories created inside the window.
func (a *HNAdapter) Collect(ctx context.Context, windowHours int) []core.Item {
	cutoff := cutoffFor(windowHours)

	params := url.Values{}
	params.Set("query", a.query)
	params.Set("tags", "story")
	params.Set("numericFilters", fmt.Sprintf("created_at_i>%d", cutoff.Unix()))
	params.Set("hitsPerPage", "50")

	var decoded hnResponse
	if err := getJSON(ctx, a.client, a.baseURL+"?"+params.Encode(), nil, &decoded); err != nil {
		logger.Warn("hn search failed", "error", err.Error())
		return nil
	}

	var items []core.Item
	for _, hit := range decoded.Hits {
		if hit.URL == "" {
			continue
		}
		item := core.Item{
			Title:        hit.Title,
			Link:         hit.URL,
			PublishedAt:  time.Unix(hit.CreatedAt, 0).UTC(),
			Summary:      truncateSummary(hit.StoryText),
			SourceDomain: extractDomain(hit.URL),
			FeedTitle:    "Hacker News",
			Tier:         core.TierCommunity,
			Lang:         "en",
		}
		if validItem(item, cutoff) {
			items = append(items, item)
		}
	}
	return items
}

// getJSON issues a GET with the adapter User-Agent plus extra headers and
// decodes the JSON body into out.
func getJSON(ctx context.Context, client *http.Client, rawURL string, headers map[string]string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
