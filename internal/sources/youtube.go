package sources

import (
	"context"
	"time"

	"github.com/mmcdole/gofeed"

	"trendpulse/internal/core"
	"trendpulse/internal/logger"
	"trendpulse/internal/pool"
)

const youtubeFeedURL = "https://www.youtube.com/feeds/videos.xml?channel_id="

// ChannelConfig describes one tracked YouTube channel.
type ChannelConfig struct {
	ChannelID string
	Title     string
}

// defaultChannels is the tracked channel list, mixing English and Korean
// AI channels.
var defaultChannels = []ChannelConfig{
	{ChannelID: "UCXZCJLdBC09xxGZ6gcdrc6A", Title: "OpenAI"},
	{ChannelID: "UCrDwWp7EBBv4NwvScIpBDOA", Title: "Anthropic"},
	{ChannelID: "UCbfYPyITQ-7l4upoX8nvctg", Title: "Two Minute Papers"},
	{ChannelID: "UCSHZKyawb77ixDdsGog4iWA", Title: "Lex Fridman"},
	{ChannelID: "UChpleBmo18P08aKCIgti38g", Title: "조코딩 JoCoding"},
	{ChannelID: "UC2nFTdGYRrjTtRrzCZxSAnQ", Title: "노마드 코더 Nomad Coders"},
}

// YouTubeAdapter collects recent uploads from the tracked channels via
// their public Atom feeds.
type YouTubeAdapter struct {
	channels []ChannelConfig
	parser   *gofeed.Parser
	baseURL  string
	timeout  time.Duration
}

// NewYouTubeAdapter builds the adapter over the default channel list.
func NewYouTubeAdapter() *YouTubeAdapter {
	return NewYouTubeAdapterWithChannels(defaultChannels, youtubeFeedURL)
}

// NewYouTubeAdapterWithChannels is used by tests to inject channels and a
// fake feed endpoint.
func NewYouTubeAdapterWithChannels(channels []ChannelConfig, baseURL string) *YouTubeAdapter {
	parser := gofeed.NewParser()
	parser.UserAgent = userAgent
	timeout := 10 * time.Second
	parser.Client = newHTTPClient(timeout)
	return &YouTubeAdapter{channels: channels, parser: parser, baseURL: baseURL, timeout: timeout}
}

// Name implements Adapter.
func (a *YouTubeAdapter) Name() string { return "youtube" }

// Collect fans out over the tracked channels and merges their uploads.
func (a *YouTubeAdapter) Collect(ctx context.Context, windowHours int) []core.Item {
	cutoff := cutoffFor(windowHours)

	perChannel, errs := pool.Map(ctx, a.channels, 4, func(ctx context.Context, ch ChannelConfig) ([]core.Item, error) {
		return a.collectChannel(ctx, ch, cutoff)
	})
	for i, err := range errs {
		if err != nil {
			logger.Warn("youtube channel fetch failed", "channel", a.channels[i].Title, "error", err.Error())
		}
	}

	var items []core.Item
	for _, channelItems := range perChannel {
		items = append(items, channelItems...)
	}
	return items
}

func (a *YouTubeAdapter) collectChannel(ctx context.Context, ch ChannelConfig, cutoff time.Time) ([]core.Item, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	parsed, err := a.parser.ParseURLWithContext(a.baseURL+ch.ChannelID, ctx)
	if err != nil {
		return nil, err
	}

	// Korean channels brand their uploads in Korean, so the channel name
	// is a better language signal than any single video title.
	lang := langFor(ch.Title)

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
			SourceDomain: "youtube.com",
			FeedTitle:    ch.Title,
			Tier:         core.TierP1Context,
			Lang:         lang,
		}
		if validItem(item, cutoff) {
			items = append(items, item)
		}
	}
	return items, nil
}
