// Package extract turns collected item titles into normalized keywords:
// model-based extraction with a regex fallback, canonical dedup, hard-drop
// filters and deterministic keyword IDs.
package extract

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"trendpulse/internal/core"
	"trendpulse/internal/llm"
	"trendpulse/internal/logger"
)

// maxBatchTitles bounds one model request.
const maxBatchTitles = 200

// trailingVerbs is the Korean domain-action vocabulary stripped before
// canonical comparison, so "클로드 도입" and "클로드 출시" collapse into one
// keyword.
var trailingVerbs = map[string]struct{}{
	"도입": {}, "채택": {}, "활용": {}, "공개": {}, "출시": {}, "발표": {},
	"확대": {}, "추진": {}, "적용": {}, "업데이트": {}, "통합": {}, "지원": {},
	"강화": {}, "개선": {},
}

// Extractor drives keyword extraction over one collected window.
type Extractor struct {
	client llm.Client
}

// New builds an extractor over the given model client.
func New(client llm.Client) *Extractor {
	return &Extractor{client: client}
}

// Extract runs the full pipeline: batch prep, model extraction with regex
// fallback, cross-batch merge, trailing-verb dedup, filters and slugging.
func (e *Extractor) Extract(ctx context.Context, items []core.Item) []core.NormalizedKeyword {
	titles := prepareTitles(items)
	if len(titles) == 0 {
		return nil
	}

	raw := e.extractBatches(ctx, titles)
	if len(raw) == 0 {
		logger.Warn("model extraction yielded nothing, using regex fallback")
		raw = fallbackKeywords(titles)
	}

	merged := mergeByCanonical(raw)
	merged = dedupTrailingVerbs(merged)

	var normalized []core.NormalizedKeyword
	for _, kw := range merged {
		if !Keep(kw.Keyword) {
			continue
		}
		normalized = append(normalized, core.NormalizedKeyword{
			KeywordID: Slugify(kw.Keyword),
			Keyword:   kw.Keyword,
			Aliases:   kw.Aliases,
		})
	}

	logger.Info("keywords extracted", "raw", len(raw), "kept", len(normalized))
	return normalized
}

// prepareTitles dedups titles case-insensitively and stable-sorts them by
// tier ordinal so higher-authority titles lead each batch.
func prepareTitles(items []core.Item) []string {
	type titled struct {
		title string
		tier  core.Tier
	}
	seen := make(map[string]struct{})
	var out []titled
	for _, it := range items {
		title := strings.TrimSpace(it.Title)
		key := strings.ToLower(title)
		if title == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, titled{title: title, tier: it.Tier})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].tier < out[j].tier })

	titles := make([]string, len(out))
	for i, t := range out {
		titles[i] = t.title
	}
	return titles
}

// extractBatches splits titles into model-sized batches and collects every
// batch's keywords. A failed batch is logged and skipped.
func (e *Extractor) extractBatches(ctx context.Context, titles []string) []llm.ExtractedKeyword {
	var all []llm.ExtractedKeyword
	for start := 0; start < len(titles); start += maxBatchTitles {
		end := start + maxBatchTitles
		if end > len(titles) {
			end = len(titles)
		}
		keywords, err := e.client.ExtractKeywords(ctx, titles[start:end])
		if err != nil {
			logger.Warn("keyword batch extraction failed", "batch_start", start, "error", err.Error())
			continue
		}
		all = append(all, keywords...)
	}
	return all
}

// mergeByCanonical merges duplicate keywords case-insensitively, keeping
// the first surface form and the union of aliases.
func mergeByCanonical(keywords []llm.ExtractedKeyword) []llm.ExtractedKeyword {
	index := make(map[string]int)
	var merged []llm.ExtractedKeyword
	for _, kw := range keywords {
		text := strings.TrimSpace(kw.Keyword)
		if text == "" {
			continue
		}
		canonical := strings.ToLower(text)
		if i, ok := index[canonical]; ok {
			merged[i].Aliases = unionAliases(merged[i].Aliases, kw.Aliases)
			continue
		}
		index[canonical] = len(merged)
		merged = append(merged, llm.ExtractedKeyword{Keyword: text, Aliases: unionAliases(nil, kw.Aliases)})
	}
	return merged
}

// dedupTrailingVerbs strips a trailing Korean action word before comparing
// canonicals; the stripped form wins and collisions merge aliases.
func dedupTrailingVerbs(keywords []llm.ExtractedKeyword) []llm.ExtractedKeyword {
	index := make(map[string]int)
	var out []llm.ExtractedKeyword
	for _, kw := range keywords {
		base := stripTrailingVerb(kw.Keyword)
		canonical := strings.ToLower(base)
		if i, ok := index[canonical]; ok {
			out[i].Aliases = unionAliases(out[i].Aliases, kw.Aliases)
			if kw.Keyword != base {
				out[i].Aliases = unionAliases(out[i].Aliases, []string{kw.Keyword})
			}
			continue
		}
		entry := llm.ExtractedKeyword{Keyword: base, Aliases: unionAliases(nil, kw.Aliases)}
		if kw.Keyword != base {
			entry.Aliases = unionAliases(entry.Aliases, []string{kw.Keyword})
		}
		index[canonical] = len(out)
		out = append(out, entry)
	}
	return out
}

// stripTrailingVerb removes one trailing domain-action word, when the rest
// of the phrase still stands on its own.
func stripTrailingVerb(kw string) string {
	words := strings.Fields(kw)
	if len(words) < 2 {
		return kw
	}
	if _, verb := trailingVerbs[words[len(words)-1]]; !verb {
		return kw
	}
	return strings.Join(words[:len(words)-1], " ")
}

func unionAliases(dst, src []string) []string {
	seen := make(map[string]struct{}, len(dst))
	for _, a := range dst {
		seen[strings.ToLower(a)] = struct{}{}
	}
	for _, a := range src {
		a = strings.TrimSpace(a)
		if a == "" {
			continue
		}
		key := strings.ToLower(a)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		dst = append(dst, a)
	}
	return dst
}

var (
	camelCaseRe = regexp.MustCompile(`\b[A-Z][a-z]+(?:[A-Z][a-z0-9]+)+\b`)
	versionedRe = regexp.MustCompile(`\b[A-Za-z]+-?\d+(?:\.\d+)?\b`)
)

// fallbackKeywords scans titles for CamelCase and version-numbered
// identifiers when the model yields nothing.
func fallbackKeywords(titles []string) []llm.ExtractedKeyword {
	seen := make(map[string]struct{})
	var out []llm.ExtractedKeyword
	for _, title := range titles {
		for _, re := range []*regexp.Regexp{camelCaseRe, versionedRe} {
			for _, m := range re.FindAllString(title, -1) {
				if len(m) < 4 {
					continue
				}
				key := strings.ToLower(m)
				if _, dup := seen[key]; dup {
					continue
				}
				seen[key] = struct{}{}
				out = append(out, llm.ExtractedKeyword{Keyword: m})
			}
		}
	}
	return out
}
