// Package matcher computes per-keyword support by scanning the collected
// items once per keyword. Matching is tolerant: multi-word phrases match
// when all their significant tokens occur anywhere in a title.
package matcher

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"trendpulse/internal/core"
	"trendpulse/internal/logger"
)

// shortStopwords are tokens ignored when splitting a phrase: English
// conjunctions and Korean particles that carry no matching signal.
var shortStopwords = map[string]struct{}{
	"and": {}, "the": {}, "for": {}, "with": {}, "of": {},
	"의": {}, "를": {}, "을": {}, "이": {}, "가": {}, "은": {}, "는": {},
	"에": {}, "와": {}, "과": {}, "로": {}, "및": {},
}

var hangulRunRe = regexp.MustCompile(`[\x{1100}-\x{11FF}\x{3130}-\x{318F}\x{AC00}-\x{D7A3}]+`)

// Match accumulates support for each keyword over the item window and
// drops keywords nothing matched.
func Match(keywords []core.NormalizedKeyword, items []core.Item) []core.NormalizedKeyword {
	haystacks := make([]string, len(items))
	for i, it := range items {
		haystacks[i] = strings.ToLower(it.Title + " " + it.Summary)
	}

	var supported []core.NormalizedKeyword
	for _, kw := range keywords {
		cand := &core.KeywordCandidate{
			Text:    kw.Keyword,
			Domains: make(map[string]struct{}),
			Tier:    core.TierCommunity,
		}
		match := matcherFor(kw.Keyword)

		for i, it := range items {
			if !match(haystacks[i]) {
				continue
			}
			cand.Count++
			if it.SourceDomain != "" {
				cand.Domains[it.SourceDomain] = struct{}{}
			}
			if it.PublishedAt.After(cand.LatestAt) {
				cand.LatestAt = it.PublishedAt
			}
			cand.Tier = cand.Tier.Better(it.Tier)
		}

		if cand.Count == 0 {
			continue
		}
		kw.Candidate = cand
		supported = append(supported, kw)
	}

	logger.Info("keywords matched", "in", len(keywords), "supported", len(supported))
	return supported
}

// matcherFor builds the match predicate for one keyword. The keyword's
// ASCII variant (Hangul runs stripped) is tried alongside the original so
// partially transliterated forms still match English titles.
func matcherFor(keyword string) func(string) bool {
	predicates := []func(string) bool{variantMatcher(keyword)}
	if ascii := asciiVariant(keyword); ascii != "" && !strings.EqualFold(ascii, keyword) {
		predicates = append(predicates, variantMatcher(ascii))
	}
	return func(haystack string) bool {
		for _, p := range predicates {
			if p(haystack) {
				return true
			}
		}
		return false
	}
}

func variantMatcher(keyword string) func(string) bool {
	lower := strings.ToLower(strings.TrimSpace(keyword))
	tokens := significantTokens(lower)

	switch {
	case len([]rune(lower)) <= 2:
		// Short tokens match only on word boundaries so "ai" does not
		// hit "maintain". RE2's \b is ASCII-only, so the boundary check
		// is a rune-level neighbor test; Hangul keywords need it too.
		return func(haystack string) bool {
			return containsWord(haystack, lower)
		}
	case len(tokens) <= 1:
		return func(haystack string) bool {
			return strings.Contains(haystack, lower)
		}
	default:
		return func(haystack string) bool {
			for _, tok := range tokens {
				if !strings.Contains(haystack, tok) {
					return false
				}
			}
			return true
		}
	}
}

// containsWord reports whether needle occurs in haystack with no letter or
// digit touching it on either side.
func containsWord(haystack, needle string) bool {
	for start := 0; ; {
		idx := strings.Index(haystack[start:], needle)
		if idx < 0 {
			return false
		}
		idx += start
		before, _ := utf8.DecodeLastRuneInString(haystack[:idx])
		after, _ := utf8.DecodeRuneInString(haystack[idx+len(needle):])
		if !isWordRune(before) && !isWordRune(after) {
			return true
		}
		start = idx + len(needle)
	}
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// significantTokens splits a phrase on whitespace and keeps the tokens that
// carry matching signal.
func significantTokens(lower string) []string {
	var tokens []string
	for _, tok := range strings.Fields(lower) {
		if len([]rune(tok)) < 3 {
			continue
		}
		if _, stop := shortStopwords[tok]; stop {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

// asciiVariant strips Hangul runs out of a mixed-script keyword and
// normalizes separators. Pure-Hangul keywords yield "".
func asciiVariant(keyword string) string {
	if !hangulRunRe.MatchString(keyword) {
		return ""
	}
	stripped := hangulRunRe.ReplaceAllString(keyword, " ")
	stripped = strings.Trim(strings.Join(strings.Fields(stripped), " "), " -_")
	return stripped
}
