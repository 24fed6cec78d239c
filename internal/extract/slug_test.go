package extract

import (
	"strings"
	"testing"
)

func TestSlugifyASCII(t *testing.T) {
	tests := []struct {
		name    string
		keyword string
		want    string
	}{
		{"simple", "Claude Code", "claude_code"},
		{"version", "GPT-5", "gpt_5"},
		{"dotted version", "Llama 3.1", "llama_3_1"},
		{"punctuation collapsed", "state-of-the-art", "state_of_the_art"},
		{"mixed case", "DeepSeek R1", "deepseek_r1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Slugify(tt.keyword); got != tt.want {
				t.Errorf("Slugify(%q) = %q, want %q", tt.keyword, got, tt.want)
			}
		})
	}
}

func TestSlugifyHashFallback(t *testing.T) {
	tests := []struct {
		name    string
		keyword string
	}{
		{"hangul", "온디바이스 AI"},
		{"single char", "R"},
		{"punctuation only", "?!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Slugify(tt.keyword)
			if !strings.HasPrefix(got, "kw_") {
				t.Errorf("Slugify(%q) = %q, want kw_ prefix", tt.keyword, got)
			}
		})
	}
}

func TestSlugifyDeterministic(t *testing.T) {
	for _, keyword := range []string{"온디바이스 AI", "Claude Code", "소버린 AI"} {
		first := Slugify(keyword)
		for i := 0; i < 3; i++ {
			if got := Slugify(keyword); got != first {
				t.Fatalf("Slugify(%q) not deterministic: %q vs %q", keyword, first, got)
			}
		}
	}
}

func TestRollingHash(t *testing.T) {
	// h = (h<<5 - h + codepoint) for "ab": 'a'=97 -> 97; 97*31+98 = 3105.
	if got := rollingHash("ab"); got != 3105 {
		t.Errorf("rollingHash(\"ab\") = %d, want 3105", got)
	}
	if rollingHash("가나") == rollingHash("나가") {
		t.Error("rollingHash should be order sensitive")
	}
}
