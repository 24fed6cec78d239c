package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestExtractJSONArray(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare array", `[{"keyword":"GPT-5"}]`, `[{"keyword":"GPT-5"}]`},
		{"markdown fence", "```json\n[{\"keyword\":\"Claude\"}]\n```", `[{"keyword":"Claude"}]`},
		{"prose around payload", `Here you go: [1, 2] done.`, `[1, 2]`},
		{"no array", "sorry, I cannot help with that", "[]"},
		{"empty", "", "[]"},
		{"lone open bracket", "[", "[]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractJSONArray(tt.in); got != tt.want {
				t.Errorf("ExtractJSONArray(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestClampSummary(t *testing.T) {
	if got := clampSummary("  두 줄로\n 나뉜  요약  "); got != "두 줄로 나뉜 요약" {
		t.Errorf("whitespace join = %q", got)
	}

	long := strings.Repeat("가", 300)
	got := clampSummary(long)
	if n := len([]rune(got)); n != 220 {
		t.Errorf("clamp length = %d runes, want 220", n)
	}
}

func TestNonEmptyLines(t *testing.T) {
	got := nonEmptyLines("one\n\n  two  \n\nthree\n")
	want := []string{"one", "two", "three"}
	if len(got) != len(want) {
		t.Fatalf("got %d lines, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestExtractKeywords(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req struct {
			Temperature *float64 `json:"temperature"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		// A missing field would make the API sample at its default of 1.0;
		// extraction must pin a (near-)zero temperature on the wire.
		if req.Temperature == nil {
			t.Error("temperature absent from request body")
		} else if *req.Temperature > 1e-6 {
			t.Errorf("extraction temperature = %v, want near zero", *req.Temperature)
		}
		content := `Sure, here are the keywords:
[{"keyword": "Claude Code", "aliases": ["클로드 코드"]}, {"keyword": "GPT-5", "aliases": []}]`
		fmt.Fprintf(w, `{"choices":[{"message":{"role":"assistant","content":%q}}]}`, content)
	}))
	defer server.Close()

	client := NewOpenAIClientWithConfig("test-key", "gpt-4o-mini", server.URL+"/v1")
	keywords, err := client.ExtractKeywords(context.Background(), []string{"Claude Code adds Teams", "GPT-5 launches"})
	if err != nil {
		t.Fatalf("ExtractKeywords error: %v", err)
	}
	if len(keywords) != 2 {
		t.Fatalf("expected 2 keywords, got %d", len(keywords))
	}
	if keywords[0].Keyword != "Claude Code" || len(keywords[0].Aliases) != 1 {
		t.Errorf("unexpected first keyword: %+v", keywords[0])
	}
}

func TestTranslateTitlesMismatchReturnsOriginals(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"choices":[{"message":{"role":"assistant","content":"한 줄만 왔다"}}]}`)
	}))
	defer server.Close()

	client := NewOpenAIClientWithConfig("test-key", "gpt-4o-mini", server.URL+"/v1")
	titles := []string{"first title", "second title"}
	got, err := client.TranslateTitles(context.Background(), titles)
	if err != nil {
		t.Fatalf("TranslateTitles error: %v", err)
	}
	if got[0] != "first title" || got[1] != "second title" {
		t.Errorf("expected originals on mismatch, got %v", got)
	}
}

func TestTranslateTitlesEmpty(t *testing.T) {
	client := NewOpenAIClientWithConfig("test-key", "gpt-4o-mini", "http://unused/v1")
	got, err := client.TranslateTitles(context.Background(), nil)
	if err != nil || got != nil {
		t.Errorf("expected nil, nil for empty input, got %v, %v", got, err)
	}
}
