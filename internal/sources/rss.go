package sources

import (
	"context"
	"time"

	"github.com/mmcdole/gofeed"

	"trendpulse/internal/core"
	"trendpulse/internal/logger"
	"trendpulse/internal/pool"
)

// FeedConfig describes one configured RSS/Atom feed.
type FeedConfig struct {
	URL   string
	Title string
	Tier  core.Tier
	Lang  string
}

// defaultFeeds is the curated feed list. P0 feeds are hand-picked AI
// publications; P2 feeds are raw firehoses kept for coverage.
var defaultFeeds = []FeedConfig{
	{URL: "https://openai.com/news/rss.xml", Title: "OpenAI News", Tier: core.TierP0Curated, Lang: "en"},
	{URL: "https://www.anthropic.com/rss.xml", Title: "Anthropic News", Tier: core.TierP0Curated, Lang: "en"},
	{URL: "https://blog.google/technology/ai/rss/", Title: "Google AI Blog", Tier: core.TierP0Curated, Lang: "en"},
	{URL: "https://huggingface.co/blog/feed.xml", Title: "Hugging Face Blog", Tier: core.TierP0Curated, Lang: "en"},
	{URL: "https://www.deepmind.com/blog/rss.xml", Title: "DeepMind Blog", Tier: core.TierP0Curated, Lang: "en"},
	{URL: "https://techcrunch.com/category/artificial-intelligence/feed/", Title: "TechCrunch AI", Tier: core.TierP1Context, Lang: "en"},
	{URL: "https://venturebeat.com/category/ai/feed/", Title: "VentureBeat AI", Tier: core.TierP1Context, Lang: "en"},
	{URL: "https://www.aitimes.com/rss/allArticle.xml", Title: "AI타임스", Tier: core.TierP1Context, Lang: "ko"},
	{URL: "https://zdnet.co.kr/news/news_xml.asp?kind=0405", Title: "지디넷코리아 AI", Tier: core.TierP2Raw, Lang: "ko"},
	{URL: "https://www.reddit.com/r/MachineLearning/.rss", Title: "r/MachineLearning", Tier: core.TierCommunity, Lang: "en"},
}

// RSSAdapter collects the configured RSS/Atom feeds.
type RSSAdapter struct {
	feeds   []FeedConfig
	parser  *gofeed.Parser
	timeout time.Duration
}

// NewRSSAdapter builds the adapter over the default curated feed list.
func NewRSSAdapter() *RSSAdapter {
	return NewRSSAdapterWithFeeds(defaultFeeds)
}

// NewRSSAdapterWithFeeds builds the adapter over an explicit feed list.
func NewRSSAdapterWithFeeds(feeds []FeedConfig) *RSSAdapter {
	parser := gofeed.NewParser()
	parser.UserAgent = userAgent
	timeout := 10 * time.Second
	parser.Client = newHTTPClient(timeout)
	return &RSSAdapter{feeds: feeds, parser: parser, timeout: timeout}
}

// Name implements Adapter.
func (a *RSSAdapter) Name() string { return "rss" }

// Collect fans out over the configured feeds with settled-join semantics
// and merges their items.
func (a *RSSAdapter) Collect(ctx context.Context, windowHours int) []core.Item {
	cutoff := cutoffFor(windowHours)

	perFeed, errs := pool.Map(ctx, a.feeds, 6, func(ctx context.Context, feed FeedConfig) ([]core.Item, error) {
		return a.collectFeed(ctx, feed, cutoff)
	})
	for i, err := range errs {
		if err != nil {
			logger.Warn("rss feed fetch failed", "feed", a.feeds[i].Title, "url", a.feeds[i].URL, "error", err.Error())
		}
	}

	var items []core.Item
	for _, feedItems := range perFeed {
		items = append(items, feedItems...)
	}
	return items
}

func (a *RSSAdapter) collectFeed(ctx context.Context, feed FeedConfig, cutoff time.Time) ([]core.Item, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	parsed, err := a.parser.ParseURLWithContext(feed.URL, ctx)
	if err != nil {
		return nil, err
	}

	var items []core.Item
	for _, entry := range parsed.Items {
		published := entryPublished(entry)
		if published == nil {
			continue
		}
		item := core.Item{
			Title:        entry.Title,
			Link:         entry.Link,
			PublishedAt:  published.UTC(),
			Summary:      truncateSummary(entry.Description),
			SourceDomain: extractDomain(entry.Link),
			FeedTitle:    feed.Title,
			Tier:         feed.Tier,
			Lang:         feed.Lang,
		}
		if validItem(item, cutoff) {
			items = append(items, item)
		}
	}
	return items, nil
}

// entryPublished accepts the first non-nil of pubDate and updated, the
// same tolerance the upstream feeds need in practice.
func entryPublished(entry *gofeed.Item) *time.Time {
	if entry.PublishedParsed != nil {
		return entry.PublishedParsed
	}
	return entry.UpdatedParsed
}
