// Package collector runs every source adapter in parallel and merges their
// items into one deduplicated window.
package collector

import (
	"context"

	"trendpulse/internal/core"
	"trendpulse/internal/logger"
	"trendpulse/internal/pool"
	"trendpulse/internal/sources"
)

// Collector owns the adapter set. The adapter order is the merge order and
// encodes tier priority: when two adapters report the same URL, the earlier
// adapter's item survives.
type Collector struct {
	adapters []sources.Adapter
}

// New builds the collector over the production adapter set. The GitHub
// adapters are skipped entirely when no token is configured.
func New(githubToken string) *Collector {
	adapters := []sources.Adapter{
		sources.NewRSSAdapter(),
	}
	if githubToken != "" {
		adapters = append(adapters,
			sources.NewGitHubMarkdownAdapter(githubToken),
			sources.NewGitHubReleasesAdapter(githubToken),
		)
	}
	adapters = append(adapters,
		sources.NewChangelogAdapter(),
		sources.NewYouTubeAdapter(),
		sources.NewHNAdapter(),
		sources.NewGDELTAdapter(),
	)
	if githubToken != "" {
		adapters = append(adapters, sources.NewGitHubSearchAdapter(githubToken))
	}
	return &Collector{adapters: adapters}
}

// NewWithAdapters builds a collector over an explicit adapter list, in
// merge-priority order. Used by tests.
func NewWithAdapters(adapters []sources.Adapter) *Collector {
	return &Collector{adapters: adapters}
}

// Collect runs all adapters concurrently, then merges results in adapter
// order with first-URL-wins dedup.
func (c *Collector) Collect(ctx context.Context, windowHours int) []core.Item {
	perAdapter, _ := pool.Map(ctx, c.adapters, len(c.adapters), func(ctx context.Context, a sources.Adapter) ([]core.Item, error) {
		items := a.Collect(ctx, windowHours)
		logger.Info("adapter collected", "adapter", a.Name(), "items", len(items))
		return items, nil
	})

	seen := make(map[string]struct{})
	var merged []core.Item
	for _, items := range perAdapter {
		for _, it := range items {
			if _, dup := seen[it.Link]; dup {
				continue
			}
			seen[it.Link] = struct{}{}
			merged = append(merged, it)
		}
	}

	logger.Info("collection merged", "total", len(merged), "adapters", len(c.adapters))
	return merged
}
