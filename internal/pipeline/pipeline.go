// Package pipeline orchestrates one snapshot run: collect, extract, match,
// rank, enrich (or reuse) and persist.
package pipeline

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"trendpulse/internal/collector"
	"trendpulse/internal/config"
	"trendpulse/internal/core"
	"trendpulse/internal/enrich"
	"trendpulse/internal/extract"
	"trendpulse/internal/llm"
	"trendpulse/internal/logger"
	"trendpulse/internal/matcher"
	"trendpulse/internal/persistence"
	"trendpulse/internal/pool"
	"trendpulse/internal/rank"
	"trendpulse/internal/search"
)

// Pipeline wires the phase components over one database handle.
type Pipeline struct {
	cfg       config.Pipeline
	collector *collector.Collector
	extractor *extract.Extractor
	enricher  *enrich.Enricher
	db        persistence.Database
	now       func() time.Time
}

// New composes the production pipeline from the loaded configuration.
func New(cfg *config.Config, db persistence.Database, model llm.Client, provider search.Provider) *Pipeline {
	return &Pipeline{
		cfg:       cfg.Pipeline,
		collector: collector.New(cfg.GitHub.Token),
		extractor: extract.New(model),
		enricher:  enrich.New(provider, model, cfg.Pipeline.EnableEnglishSummary, cfg.Pipeline.SummaryContextLimit),
		db:        db,
		now:       time.Now,
	}
}

// NewWithComponents is used by tests to inject fakes.
func NewWithComponents(cfg config.Pipeline, c *collector.Collector, e *extract.Extractor, en *enrich.Enricher, db persistence.Database) *Pipeline {
	return &Pipeline{cfg: cfg, collector: c, extractor: e, enricher: en, db: db, now: time.Now}
}

// Run executes one full snapshot. Per-keyword failures are tolerated and an
// empty window still commits a snapshot; only a snapshot-level persistence
// failure aborts.
func (p *Pipeline) Run(ctx context.Context) (*core.RunSummary, error) {
	started := time.Now()
	now := p.now().UTC()

	items := p.collector.Collect(ctx, p.cfg.WindowHours)

	var keywords []core.NormalizedKeyword
	if len(items) == 0 {
		logger.Warn("no items collected, committing an empty snapshot")
	} else {
		keywords = p.extractor.Extract(ctx, items)
		keywords = matcher.Match(keywords, items)
	}

	recentIDs, err := p.db.Snapshots().RecentIDs(ctx, p.cfg.ReuseSnapshotWindow)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent snapshots: %w", err)
	}
	prevRanks, err := p.db.Keywords().PreviousRanks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load previous ranks: %w", err)
	}

	rows := rank.Rank(keywords, prevRanks, now, p.cfg.RankedKeywords)

	snapshot := &core.Snapshot{
		SnapshotID:   SnapshotID(now),
		UpdatedAtUTC: now,
		NextUpdateAt: NextUpdateAt(now, p.cfg.ScheduleSlots()),
	}
	if err := p.db.Snapshots().Create(ctx, snapshot); err != nil {
		return nil, fmt.Errorf("failed to persist snapshot: %w", err)
	}
	logger.Info("snapshot created", "snapshot_id", snapshot.SnapshotID, "keywords", len(rows))

	p.persistAliases(ctx, keywords)

	detailed := rows
	var lightweight []core.KeywordRow
	if len(rows) > p.cfg.DetailedKeywords {
		detailed = rows[:p.cfg.DetailedKeywords]
		lightweight = rows[p.cfg.DetailedKeywords:]
	}

	var reused, fresh atomic.Int64

	detailErrs := pool.ForEach(ctx, len(detailed), p.cfg.KeywordConcurrency, func(ctx context.Context, i int) error {
		row := detailed[i]
		row.SnapshotID = snapshot.SnapshotID
		wasReused, err := p.enrichKeyword(ctx, snapshot.SnapshotID, recentIDs, &row)
		if err != nil {
			return err
		}
		if wasReused {
			reused.Add(1)
		} else {
			fresh.Add(1)
		}
		return nil
	})
	for i, err := range detailErrs {
		if err != nil {
			logger.Error("keyword enrichment failed", err, "keyword", detailed[i].Keyword)
		}
	}

	lightErrs := pool.ForEach(ctx, len(lightweight), p.cfg.LightweightConcurrency, func(ctx context.Context, i int) error {
		row := lightweight[i]
		row.SnapshotID = snapshot.SnapshotID
		row.PrimaryType = "news"
		return p.db.Keywords().Create(ctx, &row)
	})
	for i, err := range lightErrs {
		if err != nil {
			logger.Error("lightweight keyword persist failed", err, "keyword", lightweight[i].Keyword)
		}
	}

	summary := &core.RunSummary{
		SnapshotID:   snapshot.SnapshotID,
		KeywordCount: len(rows),
		ReusedCount:  int(reused.Load()),
		NewCount:     int(fresh.Load()),
		DurationMs:   time.Since(started).Milliseconds(),
	}
	logger.Info("pipeline run complete",
		"snapshot_id", summary.SnapshotID,
		"keywords", summary.KeywordCount,
		"reused", summary.ReusedCount,
		"new", summary.NewCount,
		"duration_ms", summary.DurationMs)
	return summary, nil
}

// enrichKeyword fills one detailed row, preferring the reuse cache over a
// fresh enrichment, and persists the row plus its sources.
func (p *Pipeline) enrichKeyword(ctx context.Context, snapshotID string, recentIDs []string, row *core.KeywordRow) (bool, error) {
	if cached, sources, ok := p.lookupReusable(ctx, row.KeywordID, recentIDs); ok {
		p.applyCached(row, cached, sources)
		if err := p.persistKeyword(ctx, snapshotID, row, sources); err != nil {
			return false, err
		}
		return true, nil
	}

	enriched := p.enricher.Enrich(ctx, row.Keyword)
	row.SummaryShortKo = enriched.SummaryKo
	row.SummaryShortEn = enriched.SummaryEn
	row.PrimaryType = enriched.PrimaryType
	if top := enrich.TopSource(enriched.Sources, enriched.PrimaryType); top != nil {
		row.TopSourceTitle = top.Title
		row.TopSourceURL = top.URL
		row.TopSourceDomain = top.Domain
		row.TopSourceImageURL = top.ImageURL
	}
	if err := p.persistKeyword(ctx, snapshotID, row, enriched.Sources); err != nil {
		return false, err
	}
	return false, nil
}

// lookupReusable finds the keyword's latest prior row with at least one
// source inside the reuse window.
func (p *Pipeline) lookupReusable(ctx context.Context, keywordID string, recentIDs []string) (*core.KeywordRow, []core.SourceRow, bool) {
	cached, err := p.db.Keywords().LatestRow(ctx, keywordID, recentIDs)
	if err != nil || cached == nil {
		if err != nil {
			logger.Warn("reuse lookup failed", "keyword_id", keywordID, "error", err.Error())
		}
		return nil, nil, false
	}
	sources, err := p.db.Sources().ByKeyword(ctx, cached.SnapshotID, keywordID)
	if err != nil || len(sources) == 0 {
		return nil, nil, false
	}
	return cached, sources, true
}

// applyCached copies the reusable fields onto the current row, recomputing
// the primary type and top source from the cached sources.
func (p *Pipeline) applyCached(row *core.KeywordRow, cached *core.KeywordRow, sources []core.SourceRow) {
	row.SummaryShortKo = cached.SummaryShortKo
	row.SummaryShortEn = cached.SummaryShortEn
	row.PrimaryType = enrich.PrimaryTypeRows(sources)
	if top := enrich.TopSource(sources, row.PrimaryType); top != nil {
		row.TopSourceTitle = top.Title
		row.TopSourceURL = top.URL
		row.TopSourceDomain = top.Domain
		row.TopSourceImageURL = top.ImageURL
	}
}

// persistKeyword writes the keyword row first so the source foreign key
// holds, then its sources in parallel.
func (p *Pipeline) persistKeyword(ctx context.Context, snapshotID string, row *core.KeywordRow, sources []core.SourceRow) error {
	if err := p.db.Keywords().Create(ctx, row); err != nil {
		return fmt.Errorf("failed to persist keyword %s: %w", row.KeywordID, err)
	}

	errs := pool.ForEach(ctx, len(sources), 4, func(ctx context.Context, i int) error {
		src := sources[i]
		src.SnapshotID = snapshotID
		src.KeywordID = row.KeywordID
		return p.db.Sources().Create(ctx, &src)
	})
	for _, err := range errs {
		if err != nil {
			logger.Warn("source persist failed", "keyword_id", row.KeywordID, "error", err.Error())
		}
	}
	return nil
}

// persistAliases stores alias links for every extracted keyword. Failures
// only log; aliases are a lookup aid, not pipeline state.
func (p *Pipeline) persistAliases(ctx context.Context, keywords []core.NormalizedKeyword) {
	for _, kw := range keywords {
		for _, alias := range kw.Aliases {
			a := &core.Alias{
				CanonicalKeywordID: kw.KeywordID,
				Alias:              alias,
				Lang:               aliasLang(alias),
			}
			if err := p.db.Aliases().Create(ctx, a); err != nil {
				logger.Warn("alias persist failed", "keyword_id", kw.KeywordID, "alias", alias, "error", err.Error())
			}
		}
	}
}

func aliasLang(alias string) string {
	for _, r := range alias {
		if r >= 0xAC00 && r <= 0xD7A3 {
			return "ko"
		}
	}
	return "en"
}
