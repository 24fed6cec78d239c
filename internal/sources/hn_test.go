package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHNCollect(t *testing.T) {
	now := time.Now().UTC()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("tags") != "story" {
			t.Errorf("expected story tag filter, got %q", r.URL.Query().Get("tags"))
		}
		fmt.Fprintf(w, `{"hits":[
			{"title":"Show HN: local LLM runner","url":"https://github.com/acme/runner","created_at_i":%d,"story_text":"runs models locally"},
			{"title":"Ask HN: thoughts?","url":"","created_at_i":%d}
		]}`, now.Add(-4*time.Hour).Unix(), now.Add(-1*time.Hour).Unix())
	}))
	defer server.Close()

	items := NewHNAdapterWithBaseURL(server.URL).Collect(context.Background(), 48)

	if len(items) != 1 {
		t.Fatalf("expected 1 item (url-less hit skipped), got %d", len(items))
	}
	it := items[0]
	if it.SourceDomain != "github.com" {
		t.Errorf("domain = %q, want github.com", it.SourceDomain)
	}
	if it.Tier.String() != "COMMUNITY" {
		t.Errorf("tier = %v, want COMMUNITY", it.Tier)
	}
}
