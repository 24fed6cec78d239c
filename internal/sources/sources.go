// Package sources contains the upstream feed adapters. Each adapter fetches
// one family of sources, converts entries into core.Item and fails in
// isolation: any error is logged and the adapter contributes an empty list.
package sources

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"trendpulse/internal/core"
)

// Adapter is the single contract shared by all source adapters.
type Adapter interface {
	// Name identifies the adapter in logs and in the collector merge order.
	Name() string
	// Collect returns every item published within the last windowHours.
	// It never fails; errors are logged and swallowed.
	Collect(ctx context.Context, windowHours int) []core.Item
}

const userAgent = "trendpulse/1.0 (+https://github.com/trendpulse)"

// newHTTPClient builds the per-adapter HTTP client. Timeouts are adapter
// specific (6-15s) so a slow upstream delays only its own phase slot.
func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

// cutoffFor converts a lookback window into the oldest acceptable instant.
func cutoffFor(windowHours int) time.Time {
	return time.Now().UTC().Add(-time.Duration(windowHours) * time.Hour)
}

// extractDomain returns the lowercased host of a URL with any www. prefix
// stripped. Invalid URLs yield "".
func extractDomain(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	domain := strings.ToLower(parsed.Hostname())
	domain = strings.TrimPrefix(domain, "www.")
	return domain
}

// truncateSummary bounds an item summary to the 500 char model limit.
func truncateSummary(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= 500 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= 500 {
		return s
	}
	return string(runes[:500])
}

// containsHangul reports whether s has at least one Hangul codepoint.
// Used as the language heuristic for sources without explicit metadata.
func containsHangul(s string) bool {
	for _, r := range s {
		if (r >= 0xAC00 && r <= 0xD7A3) || (r >= 0x1100 && r <= 0x11FF) || (r >= 0x3130 && r <= 0x318F) {
			return true
		}
	}
	return false
}

// langFor returns "ko" when the text carries Hangul, otherwise "en".
func langFor(s string) string {
	if containsHangul(s) {
		return "ko"
	}
	return "en"
}

// validItem applies the cross-adapter contract: a usable title, a valid
// http(s) link and a publication time inside the window.
func validItem(it core.Item, cutoff time.Time) bool {
	if strings.TrimSpace(it.Title) == "" || it.Link == "" {
		return false
	}
	parsed, err := url.Parse(it.Link)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return false
	}
	if it.PublishedAt.IsZero() || it.PublishedAt.Before(cutoff) {
		return false
	}
	return true
}
