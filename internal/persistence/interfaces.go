package persistence

import (
	"context"

	"trendpulse/internal/core"
)

// SnapshotRepository persists snapshot rows.
type SnapshotRepository interface {
	// Create inserts the snapshot, ignoring a duplicate snapshot_id so a
	// rerun inside the same minute stays idempotent.
	Create(ctx context.Context, snapshot *core.Snapshot) error
	// RecentIDs returns the newest snapshot IDs, most recent first.
	RecentIDs(ctx context.Context, limit int) ([]string, error)
	// Latest returns the most recent snapshot, or nil when none exist.
	Latest(ctx context.Context) (*core.Snapshot, error)
}

// KeywordRepository persists ranked keyword rows.
type KeywordRepository interface {
	// Create inserts one keyword row; duplicates within a snapshot are
	// silently ignored.
	Create(ctx context.Context, row *core.KeywordRow) error
	// PreviousRanks returns each keyword's rank in the newest snapshot that
	// contains it, across the full snapshot history.
	PreviousRanks(ctx context.Context) (map[string]int, error)
	// LatestRow returns the newest persisted row for a keyword across the
	// given snapshots, or nil.
	LatestRow(ctx context.Context, keywordID string, snapshotIDs []string) (*core.KeywordRow, error)
	// BySnapshot returns a snapshot's rows ordered by rank.
	BySnapshot(ctx context.Context, snapshotID string) ([]core.KeywordRow, error)
}

// SourceRepository persists enrichment sources.
type SourceRepository interface {
	// Create inserts one source row, updating mutable fields when the
	// (snapshot, keyword, type, url) key already exists.
	Create(ctx context.Context, row *core.SourceRow) error
	// ByKeyword returns a keyword's sources within a snapshot.
	ByKeyword(ctx context.Context, snapshotID, keywordID string) ([]core.SourceRow, error)
}

// AliasRepository persists alias to canonical keyword links.
type AliasRepository interface {
	Create(ctx context.Context, alias *core.Alias) error
	ByCanonical(ctx context.Context, canonicalKeywordID string) ([]core.Alias, error)
}

// SearchCountRepository tracks how often a query was searched.
type SearchCountRepository interface {
	Increment(ctx context.Context, query string) error
	Get(ctx context.Context, query string) (int64, error)
}

// Database aggregates the repositories behind one connection.
type Database interface {
	Snapshots() SnapshotRepository
	Keywords() KeywordRepository
	Sources() SourceRepository
	Aliases() AliasRepository
	SearchCounts() SearchCountRepository
	Ping(ctx context.Context) error
	Close() error
}
