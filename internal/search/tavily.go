package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"trendpulse/internal/logger"
)

const tavilyAPIURL = "https://api.tavily.com/search"

// TavilyProvider implements Provider using the Tavily search API.
type TavilyProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewTavilyProvider creates a new Tavily search provider.
func NewTavilyProvider(apiKey string) *TavilyProvider {
	return &TavilyProvider{
		apiKey:  apiKey,
		baseURL: tavilyAPIURL,
		client:  &http.Client{Timeout: 20 * time.Second},
	}
}

// NewTavilyProviderWithBaseURL is used by tests to point at a fake API.
func NewTavilyProviderWithBaseURL(apiKey, baseURL string) *TavilyProvider {
	p := NewTavilyProvider(apiKey)
	p.baseURL = baseURL
	return p
}

// GetName returns the name of this provider.
func (p *TavilyProvider) GetName() string {
	return "Tavily"
}

type tavilyRequest struct {
	APIKey        string `json:"api_key"`
	Query         string `json:"query"`
	Topic         string `json:"topic,omitempty"`
	TimeRange     string `json:"time_range,omitempty"`
	MaxResults    int    `json:"max_results"`
	IncludeImages bool   `json:"include_images,omitempty"`
}

type tavilyResponse struct {
	Results []struct {
		Title         string `json:"title"`
		URL           string `json:"url"`
		Content       string `json:"content"`
		PublishedDate string `json:"published_date"`
	} `json:"results"`
	Images []struct {
		URL         string `json:"url"`
		Description string `json:"description"`
	} `json:"images"`
}

// SearchGrouped runs the four category searches for a keyword. News is
// bounded to the past week, web to the past month. A failed category is
// logged and contributes nothing.
func (p *TavilyProvider) SearchGrouped(ctx context.Context, keyword string) Grouped {
	var grouped Grouped

	if results, _, err := p.search(ctx, tavilyRequest{
		Query: keyword, Topic: "news", TimeRange: "week", MaxResults: 8,
	}, "news"); err != nil {
		logger.Warn("tavily news search failed", "keyword", keyword, "error", err.Error())
	} else {
		grouped.News = results
	}

	if results, _, err := p.search(ctx, tavilyRequest{
		Query: keyword, Topic: "general", TimeRange: "month", MaxResults: 8,
	}, "web"); err != nil {
		logger.Warn("tavily web search failed", "keyword", keyword, "error", err.Error())
	} else {
		grouped.Web = results
	}

	if results, _, err := p.search(ctx, tavilyRequest{
		Query: keyword + " video", Topic: "general", TimeRange: "month", MaxResults: 4,
	}, "video"); err != nil {
		logger.Warn("tavily video search failed", "keyword", keyword, "error", err.Error())
	} else {
		grouped.Video = onlyVideoHosts(results)
	}

	if _, images, err := p.search(ctx, tavilyRequest{
		Query: keyword, Topic: "general", TimeRange: "month", MaxResults: 4, IncludeImages: true,
	}, "image"); err != nil {
		logger.Warn("tavily image search failed", "keyword", keyword, "error", err.Error())
	} else {
		grouped.Images = images
	}

	return grouped
}

func (p *TavilyProvider) search(ctx context.Context, reqBody tavilyRequest, resultType string) ([]Result, []Result, error) {
	reqBody.APIKey = p.apiKey

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode tavily request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create tavily request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("tavily request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("tavily request failed with status %d", resp.StatusCode)
	}

	var decoded tavilyResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, nil, fmt.Errorf("failed to parse tavily response: %w", err)
	}

	var results []Result
	for _, r := range decoded.Results {
		result := Result{
			URL:     r.URL,
			Title:   r.Title,
			Snippet: r.Content,
			Domain:  extractDomain(r.URL),
			Type:    resultType,
		}
		if t, err := parseTavilyDate(r.PublishedDate); err == nil {
			result.PublishedAt = &t
		}
		results = append(results, result)
	}

	var images []Result
	for _, img := range decoded.Images {
		images = append(images, Result{
			URL:      img.URL,
			Title:    img.Description,
			Domain:   extractDomain(img.URL),
			ImageURL: img.URL,
			Type:     "image",
		})
	}
	return results, images, nil
}

// onlyVideoHosts keeps results that actually point at a video platform;
// the "video" query modifier alone pulls in plenty of articles.
func onlyVideoHosts(results []Result) []Result {
	var out []Result
	for _, r := range results {
		switch {
		case strings.Contains(r.Domain, "youtube.com"),
			strings.Contains(r.Domain, "youtu.be"),
			strings.Contains(r.Domain, "vimeo.com"):
			out = append(out, r)
		}
	}
	return out
}

func parseTavilyDate(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02", "Mon, 02 Jan 2006 15:04:05 MST"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

func extractDomain(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(parsed.Hostname()), "www.")
}
