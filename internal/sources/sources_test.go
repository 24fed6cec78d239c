package sources

import (
	"strings"
	"testing"
	"time"

	"trendpulse/internal/core"
)

func TestExtractDomain(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"https://www.example.com/path", "example.com"},
		{"https://Blog.Example.COM/x", "blog.example.com"},
		{"http://example.com", "example.com"},
		{"::bad url::", ""},
	}
	for _, tt := range tests {
		if got := extractDomain(tt.raw); got != tt.want {
			t.Errorf("extractDomain(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestLangFor(t *testing.T) {
	if got := langFor("온디바이스 AI 확산"); got != "ko" {
		t.Errorf("expected ko, got %q", got)
	}
	if got := langFor("On-device AI grows"); got != "en" {
		t.Errorf("expected en, got %q", got)
	}
}

func TestTruncateSummary(t *testing.T) {
	long := strings.Repeat("가", 600)
	got := truncateSummary(long)
	if len([]rune(got)) != 500 {
		t.Errorf("expected 500 rune cap, got %d", len([]rune(got)))
	}
}

func TestValidItem(t *testing.T) {
	cutoff := time.Now().UTC().Add(-48 * time.Hour)
	fresh := time.Now().UTC().Add(-1 * time.Hour)
	stale := time.Now().UTC().Add(-72 * time.Hour)

	tests := []struct {
		name string
		item core.Item
		want bool
	}{
		{"valid", core.Item{Title: "t", Link: "https://a.com/x", PublishedAt: fresh}, true},
		{"empty title", core.Item{Title: " ", Link: "https://a.com/x", PublishedAt: fresh}, false},
		{"bad scheme", core.Item{Title: "t", Link: "ftp://a.com/x", PublishedAt: fresh}, false},
		{"no link", core.Item{Title: "t", PublishedAt: fresh}, false},
		{"outside window", core.Item{Title: "t", Link: "https://a.com/x", PublishedAt: stale}, false},
		{"zero time", core.Item{Title: "t", Link: "https://a.com/x"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := validItem(tt.item, cutoff); got != tt.want {
				t.Errorf("validItem = %v, want %v", got, tt.want)
			}
		})
	}
}
