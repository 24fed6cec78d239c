package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"trendpulse/internal/core"
)

func rssFeedBody(recent, stale time.Time) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel>
<title>Test Feed</title>
<item>
  <title>Anthropic launches Claude agents</title>
  <link>https://www.anthropic.com/news/agents</link>
  <pubDate>%s</pubDate>
  <description>Agents everywhere</description>
</item>
<item>
  <title>Old story outside the window</title>
  <link>https://www.anthropic.com/news/old</link>
  <pubDate>%s</pubDate>
</item>
<item>
  <title>No date, skipped</title>
  <link>https://www.anthropic.com/news/undated</link>
</item>
</channel></rss>`,
		recent.Format(time.RFC1123Z), stale.Format(time.RFC1123Z))
}

func TestRSSCollect(t *testing.T) {
	now := time.Now().UTC()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, rssFeedBody(now.Add(-6*time.Hour), now.Add(-90*time.Hour)))
	}))
	defer server.Close()

	adapter := NewRSSAdapterWithFeeds([]FeedConfig{
		{URL: server.URL, Title: "Anthropic News", Tier: core.TierP0Curated, Lang: "en"},
	})
	items := adapter.Collect(context.Background(), 48)

	if len(items) != 1 {
		t.Fatalf("expected 1 item after window and date filters, got %d", len(items))
	}
	it := items[0]
	if it.Title != "Anthropic launches Claude agents" {
		t.Errorf("title = %q", it.Title)
	}
	if it.SourceDomain != "anthropic.com" {
		t.Errorf("domain = %q, want anthropic.com", it.SourceDomain)
	}
	if it.FeedTitle != "Anthropic News" || it.Lang != "en" {
		t.Errorf("feed metadata not carried: %+v", it)
	}
	if it.Tier != core.TierP0Curated {
		t.Errorf("tier = %v, want P0_CURATED", it.Tier)
	}
}

func TestRSSCollectFeedFailureIsIsolated(t *testing.T) {
	now := time.Now().UTC()
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, rssFeedBody(now.Add(-2*time.Hour), now.Add(-90*time.Hour)))
	}))
	defer good.Close()
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream broken", http.StatusBadGateway)
	}))
	defer bad.Close()

	adapter := NewRSSAdapterWithFeeds([]FeedConfig{
		{URL: bad.URL, Title: "Broken", Tier: core.TierP2Raw, Lang: "en"},
		{URL: good.URL, Title: "Working", Tier: core.TierP1Context, Lang: "en"},
	})
	items := adapter.Collect(context.Background(), 48)

	if len(items) != 1 {
		t.Fatalf("expected the working feed's item despite the broken feed, got %d", len(items))
	}
	if items[0].FeedTitle != "Working" {
		t.Errorf("unexpected item: %+v", items[0])
	}
}
