package enrich

import (
	"strings"

	"trendpulse/internal/core"
	"trendpulse/internal/search"
)

// socialHosts classify a source as community discussion.
var socialHosts = map[string]struct{}{
	"twitter.com":          {},
	"x.com":                {},
	"reddit.com":           {},
	"news.ycombinator.com": {},
	"facebook.com":         {},
	"threads.net":          {},
	"linkedin.com":         {},
	"medium.com":           {},
	"velog.io":             {},
	"brunch.co.kr":         {},
}

// dataHosts classify a source as data/reference material.
var dataHosts = map[string]struct{}{
	"github.com":         {},
	"huggingface.co":     {},
	"arxiv.org":          {},
	"paperswithcode.com": {},
	"kaggle.com":         {},
	"youtube.com":        {},
	"youtu.be":           {},
}

// academicPatterns mark papers and benchmarks by URL or title content.
var academicPatterns = []string{"arxiv", "/paper", "benchmark", "dataset", "leaderboard"}

// Classify maps one search result onto the three primary categories.
func Classify(r search.Result) string {
	if r.Type == "video" || r.Type == "image" {
		return "data"
	}
	host := strings.TrimPrefix(strings.ToLower(r.Domain), "www.")
	if _, social := socialHosts[host]; social {
		return "social"
	}
	if _, data := dataHosts[host]; data {
		return "data"
	}
	lowered := strings.ToLower(r.URL + " " + r.Title)
	for _, pat := range academicPatterns {
		if strings.Contains(lowered, pat) {
			return "data"
		}
	}
	return "news"
}

// PrimaryType decides a keyword's dominant category by weighted vote over
// its sources: positions 1-3 weigh 3, 4-8 weigh 2, the rest weigh 1. Ties
// break to the first source's category, then to the fixed order news,
// social, data.
func PrimaryType(results []search.Result) string {
	if len(results) == 0 {
		return "news"
	}

	votes := map[string]int{}
	for i, r := range results {
		weight := 1
		switch {
		case i < 3:
			weight = 3
		case i < 8:
			weight = 2
		}
		votes[Classify(r)] += weight
	}

	best, bestVotes := "", -1
	tie := false
	for _, cat := range []string{"news", "social", "data"} {
		if votes[cat] > bestVotes {
			best, bestVotes = cat, votes[cat]
			tie = false
		} else if votes[cat] == bestVotes {
			tie = true
		}
	}
	if tie {
		first := Classify(results[0])
		if votes[first] == bestVotes {
			return first
		}
	}
	return best
}

// ClassifyRow classifies a persisted source row with the same rules.
func ClassifyRow(row core.SourceRow) string {
	return Classify(search.Result{
		Type:   row.Type,
		Domain: row.Domain,
		URL:    row.URL,
		Title:  row.Title,
	})
}

// PrimaryTypeRows is PrimaryType over persisted source rows, used when a
// cached keyword's projection is recomputed.
func PrimaryTypeRows(rows []core.SourceRow) string {
	results := make([]search.Result, len(rows))
	for i, row := range rows {
		results[i] = search.Result{Type: row.Type, Domain: row.Domain, URL: row.URL, Title: row.Title}
	}
	return PrimaryType(results)
}
