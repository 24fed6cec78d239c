package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestDateFromFilename(t *testing.T) {
	tests := []struct {
		name string
		ok   bool
		want string
	}{
		{"news-2026-08-25.md", true, "2026-08-25"},
		{"20260825.md", true, "2026-08-25"},
		{"weekly_2026.08.25.md", true, "2026-08-25"},
		{"README.md", false, ""},
	}
	for _, tt := range tests {
		got, ok := dateFromFilename(tt.name)
		if ok != tt.ok {
			t.Errorf("dateFromFilename(%q) ok = %v, want %v", tt.name, ok, tt.ok)
			continue
		}
		if ok && got.Format("2006-01-02") != tt.want {
			t.Errorf("dateFromFilename(%q) = %v, want %s", tt.name, got, tt.want)
		}
	}
}

func TestExtractMarkdownItems(t *testing.T) {
	body := `# Weekly AI links
- [Anthropic ships Claude agents](https://www.anthropic.com/news/agents)
- [Thread about it](https://x.com/someone/status/1)
- [Paper on scaling](https://arxiv.org/abs/2608.01234)
- [](https://example.com/no-title)
`
	published := time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC)

	items := extractMarkdownItems(body, "news-2026-08-25.md", published)

	if len(items) != 2 {
		t.Fatalf("expected 2 items (social and untitled skipped), got %d", len(items))
	}
	if items[0].Title != "Anthropic ships Claude agents" || items[0].SourceDomain != "anthropic.com" {
		t.Errorf("unexpected first item: %+v", items[0])
	}
	if items[0].Tier.String() != "P0_CURATED" {
		t.Errorf("tier = %v, want P0_CURATED", items[0].Tier)
	}
	if items[1].SourceDomain != "arxiv.org" {
		t.Errorf("unexpected second item: %+v", items[1])
	}
}

func TestGitHubReleasesCollect(t *testing.T) {
	now := time.Now().UTC()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-GitHub-Api-Version"); got != "2022-11-28" {
			t.Errorf("missing api version header, got %q", got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("unexpected auth header %q", got)
		}
		switch r.URL.Path {
		case "/repos/acme/widgets/releases":
			fmt.Fprintf(w, `[{"name":"v1.2.0","tag_name":"v1.2.0","html_url":"https://github.com/acme/widgets/releases/v1.2.0","body":"fixes","published_at":"%s"}]`,
				now.Add(-3*time.Hour).Format(time.RFC3339))
		case "/repos/acme/empty/releases":
			http.NotFound(w, r)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	adapter := NewGitHubReleasesAdapterWithBaseURL("tok", server.URL, []string{"acme/widgets", "acme/empty"})
	items := adapter.Collect(context.Background(), 48)

	if len(items) != 1 {
		t.Fatalf("expected 1 release item (404 repo empty), got %d", len(items))
	}
	if items[0].Title != "widgets v1.2.0" {
		t.Errorf("title = %q, want repo-prefixed release name", items[0].Title)
	}
	if items[0].Tier.String() != "P1_CONTEXT" {
		t.Errorf("tier = %v, want P1_CONTEXT", items[0].Tier)
	}
}

func TestGitHubSearchCollect(t *testing.T) {
	now := time.Now().UTC()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"items":[{"full_name":"acme/llm-kit","html_url":"https://github.com/acme/llm-kit","description":"toolkit","created_at":"%s"}]}`,
			now.Add(-5*time.Hour).Format(time.RFC3339))
	}))
	defer server.Close()

	items := NewGitHubSearchAdapterWithBaseURL("tok", server.URL).Collect(context.Background(), 48)
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if items[0].Tier.String() != "COMMUNITY" {
		t.Errorf("tier = %v, want COMMUNITY", items[0].Tier)
	}
}
