package search

import "context"

// MockProvider implements Provider for testing purposes.
type MockProvider struct {
	name    string
	Grouped Grouped
}

// NewMockProvider creates a mock provider with a small canned result set.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		name: "Mock",
		Grouped: Grouped{
			News: []Result{
				{
					URL:     "https://example.com/news/1",
					Title:   "Example launches new model",
					Snippet: "A mock news result used in tests.",
					Domain:  "example.com",
					Type:    "news",
				},
				{
					URL:     "https://test.org/news/2",
					Title:   "Benchmark results published",
					Snippet: "Another mock news result.",
					Domain:  "test.org",
					Type:    "news",
				},
			},
			Web: []Result{
				{
					URL:     "https://docs.example.com/guide",
					Title:   "Getting started guide",
					Snippet: "A mock web result.",
					Domain:  "docs.example.com",
					Type:    "web",
				},
			},
			Video: []Result{
				{
					URL:    "https://youtube.com/watch?v=mock1",
					Title:  "Model walkthrough",
					Domain: "youtube.com",
					Type:   "video",
				},
			},
		},
	}
}

// GetName returns the name of this provider.
func (m *MockProvider) GetName() string {
	return m.name
}

// SearchGrouped returns the canned result set regardless of keyword.
func (m *MockProvider) SearchGrouped(ctx context.Context, keyword string) Grouped {
	return m.Grouped
}
