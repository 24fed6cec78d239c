// Package search defines the external search contract used by enrichment
// and its provider implementations.
package search

import (
	"context"
	"errors"
	"time"
)

// Provider defines the unified interface for search providers.
type Provider interface {
	// SearchGrouped performs the four grouped searches for one keyword.
	// A failing group contributes an empty slice, never an error for the
	// whole call.
	SearchGrouped(ctx context.Context, keyword string) Grouped

	// GetName returns the name of the search provider.
	GetName() string
}

// Grouped holds the per-category results of one keyword search.
type Grouped struct {
	News   []Result `json:"news"`
	Web    []Result `json:"web"`
	Video  []Result `json:"video"`
	Images []Result `json:"images"`
}

// Result represents a unified search result.
type Result struct {
	URL         string     `json:"url"`
	Title       string     `json:"title"`
	Snippet     string     `json:"snippet"`
	Domain      string     `json:"domain"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	ImageURL    string     `json:"image_url,omitempty"`
	Type        string     `json:"type"` // news, web, video, image
}

// Flatten returns all groups as one slice in the fixed news, web, video,
// image order.
func (g Grouped) Flatten() []Result {
	out := make([]Result, 0, len(g.News)+len(g.Web)+len(g.Video)+len(g.Images))
	out = append(out, g.News...)
	out = append(out, g.Web...)
	out = append(out, g.Video...)
	out = append(out, g.Images...)
	return out
}

// ProviderType represents the type of search provider.
type ProviderType string

const (
	ProviderTypeTavily ProviderType = "tavily"
	ProviderTypeMock   ProviderType = "mock"
)

var (
	// ErrMissingAPIKey is returned when a required API key is not provided.
	ErrMissingAPIKey = errors.New("API key is required")

	// ErrUnsupportedProvider is returned when an unsupported provider type
	// is specified.
	ErrUnsupportedProvider = errors.New("unsupported search provider")
)

// NewProvider creates a search provider of the specified type.
func NewProvider(providerType ProviderType, apiKey string) (Provider, error) {
	switch providerType {
	case ProviderTypeTavily:
		if apiKey == "" {
			return nil, ErrMissingAPIKey
		}
		return NewTavilyProvider(apiKey), nil
	case ProviderTypeMock:
		return NewMockProvider(), nil
	default:
		return nil, ErrUnsupportedProvider
	}
}
