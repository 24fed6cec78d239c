package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestParseGDELTTime(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
		ok   bool
	}{
		{"20260825143000", time.Date(2026, 8, 25, 14, 30, 0, 0, time.UTC), true},
		{"20260825T143000Z", time.Date(2026, 8, 25, 14, 30, 0, 0, time.UTC), true},
		{"not-a-date", time.Time{}, false},
		{"", time.Time{}, false},
	}
	for _, tt := range tests {
		got, err := ParseGDELTTime(tt.in)
		if tt.ok && (err != nil || !got.Equal(tt.want)) {
			t.Errorf("ParseGDELTTime(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
		if !tt.ok && err == nil {
			t.Errorf("ParseGDELTTime(%q) expected error", tt.in)
		}
	}
}

func TestGDELTCollect(t *testing.T) {
	recent := time.Now().UTC().Add(-2 * time.Hour).Format(gdeltTimeLayout)
	stale := time.Now().UTC().Add(-80 * time.Hour).Format(gdeltTimeLayout)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("mode") != "artlist" {
			t.Errorf("expected artlist mode, got %q", r.URL.Query().Get("mode"))
		}
		fmt.Fprintf(w, `{"articles":[
			{"title":"AI chip race heats up","url":"https://news.example.com/1","seendate":"%s","domain":"www.News.Example.com","language":"English"},
			{"title":"오래된 기사","url":"https://old.example.com/2","seendate":"%s","domain":"old.example.com","language":"Korean"},
			{"title":"","url":"https://empty.example.com/3","seendate":"%s","domain":"empty.example.com","language":"English"}
		]}`, recent, stale, recent)
	}))
	defer server.Close()

	items := NewGDELTAdapterWithBaseURL(server.URL).Collect(context.Background(), 48)

	if len(items) != 1 {
		t.Fatalf("expected 1 item after window and title filters, got %d", len(items))
	}
	it := items[0]
	if it.SourceDomain != "news.example.com" {
		t.Errorf("domain = %q, want news.example.com", it.SourceDomain)
	}
	if it.Lang != "en" {
		t.Errorf("lang = %q, want en", it.Lang)
	}
	if it.Tier.String() != "P2_RAW" {
		t.Errorf("tier = %v, want P2_RAW", it.Tier)
	}
}
