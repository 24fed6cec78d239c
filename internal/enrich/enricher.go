// Package enrich attaches search sources, summaries, translations and a
// primary category to a ranked keyword.
package enrich

import (
	"context"
	"fmt"
	"sync"

	"trendpulse/internal/core"
	"trendpulse/internal/llm"
	"trendpulse/internal/logger"
	"trendpulse/internal/search"
)

// translatePerType bounds how many titles per source type get translated.
const translatePerType = 8

// summaryContextDefault is how many sources feed the summarizer.
const summaryContextDefault = 5

// Enrichment is the full per-keyword enrichment payload.
type Enrichment struct {
	SummaryKo   string
	SummaryEn   string
	PrimaryType string
	Sources     []core.SourceRow
}

// Enricher composes the search provider, the model client and the image
// scraper into the per-keyword enrichment flow.
type Enricher struct {
	provider       search.Provider
	model          llm.Client
	scraper        *ImageScraper
	englishSummary bool
	summaryContext int
}

// New builds an enricher. summaryContext <= 0 falls back to the default.
func New(provider search.Provider, model llm.Client, englishSummary bool, summaryContext int) *Enricher {
	if summaryContext <= 0 {
		summaryContext = summaryContextDefault
	}
	return &Enricher{
		provider:       provider,
		model:          model,
		scraper:        NewImageScraper(),
		englishSummary: englishSummary,
		summaryContext: summaryContext,
	}
}

// Enrich runs the full flow for one keyword: grouped search, OG-image
// backfill, summaries, title translation and the primary-type vote.
func (e *Enricher) Enrich(ctx context.Context, keyword string) Enrichment {
	grouped := e.provider.SearchGrouped(ctx, keyword)
	flat := grouped.Flatten()

	e.scraper.Backfill(ctx, flat)

	snippets := summaryInput(grouped, flat, e.summaryContext)

	var summaryKo, summaryEn string
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		summaryKo = e.summarize(ctx, keyword, snippets, "ko", len(flat))
	}()
	if e.englishSummary {
		wg.Add(1)
		go func() {
			defer wg.Done()
			summaryEn = e.summarize(ctx, keyword, snippets, "en", len(flat))
		}()
	}
	wg.Wait()

	translations := e.translateTitles(ctx, flat)

	rows := make([]core.SourceRow, len(flat))
	for i, r := range flat {
		rows[i] = core.SourceRow{
			Type:           r.Type,
			Title:          r.Title,
			URL:            r.URL,
			Domain:         r.Domain,
			PublishedAtUTC: r.PublishedAt,
			Snippet:        r.Snippet,
			ImageURL:       r.ImageURL,
			TitleKo:        translations[r.URL],
		}
	}

	return Enrichment{
		SummaryKo:   summaryKo,
		SummaryEn:   summaryEn,
		PrimaryType: PrimaryType(flat),
		Sources:     rows,
	}
}

// summaryInput picks the summarizer context: the first n news results, or
// the first n of everything when there is no news.
func summaryInput(grouped search.Grouped, flat []search.Result, n int) []string {
	base := grouped.News
	if len(base) == 0 {
		base = flat
	}
	if len(base) > n {
		base = base[:n]
	}
	snippets := make([]string, len(base))
	for i, r := range base {
		snippets[i] = r.Title + "\n" + r.Snippet
	}
	return snippets
}

func (e *Enricher) summarize(ctx context.Context, keyword string, snippets []string, lang string, sourceCount int) string {
	summary, err := e.model.Summarize(ctx, keyword, snippets, lang)
	if err != nil || summary == "" {
		if err != nil {
			logger.Warn("summary failed, using template", "keyword", keyword, "lang", lang, "error", err.Error())
		}
		return templatedSummary(keyword, lang, sourceCount)
	}
	return summary
}

// templatedSummary is the fixed fallback sentence when the model fails.
func templatedSummary(keyword, lang string, sourceCount int) string {
	if lang == "en" {
		return fmt.Sprintf("%s is trending in AI news with %d related sources collected recently.", keyword, sourceCount)
	}
	return fmt.Sprintf("%s 관련 소식 %d건이 최근 수집되어 주목받고 있습니다.", keyword, sourceCount)
}

// translateTitles batch-translates the first translatePerType titles of
// each source type and returns a URL-keyed lookup. Failures leave titles
// untranslated.
func (e *Enricher) translateTitles(ctx context.Context, flat []search.Result) map[string]string {
	perType := make(map[string][]search.Result)
	for _, r := range flat {
		if len(perType[r.Type]) < translatePerType {
			perType[r.Type] = append(perType[r.Type], r)
		}
	}

	out := make(map[string]string)
	for _, batch := range perType {
		titles := make([]string, len(batch))
		for i, r := range batch {
			titles[i] = r.Title
		}
		translated, err := e.model.TranslateTitles(ctx, titles)
		if err != nil {
			logger.Warn("title translation failed", "count", len(titles), "error", err.Error())
			continue
		}
		if len(translated) != len(batch) {
			continue
		}
		for i, r := range batch {
			out[r.URL] = translated[i]
		}
	}
	return out
}

// TopSource picks the projection source for a keyword row: the first
// source matching the primary type, else the first source.
func TopSource(rows []core.SourceRow, primaryType string) *core.SourceRow {
	if len(rows) == 0 {
		return nil
	}
	for i := range rows {
		if ClassifyRow(rows[i]) == primaryType {
			return &rows[i]
		}
	}
	return &rows[0]
}
