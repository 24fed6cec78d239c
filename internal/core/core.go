// Package core defines the data model shared across the snapshot pipeline.
package core

import "time"

// Tier classifies the authority of a source adapter. The ordinal doubles as
// the dedup priority: a lower ordinal wins when two sources report the same
// URL, and it feeds the authority score component.
type Tier int

const (
	TierP0Curated Tier = iota // hand-curated feeds and markdown listings
	TierP0Releases
	TierP1Context
	TierP2Raw
	TierCommunity
)

// String returns the stable wire name of the tier.
func (t Tier) String() string {
	switch t {
	case TierP0Curated:
		return "P0_CURATED"
	case TierP0Releases:
		return "P0_RELEASES"
	case TierP1Context:
		return "P1_CONTEXT"
	case TierP2Raw:
		return "P2_RAW"
	default:
		return "COMMUNITY"
	}
}

// Authority returns the authority score component for the tier, in [0,1].
func (t Tier) Authority() float64 {
	switch t {
	case TierP0Curated, TierP0Releases:
		return 1.0
	case TierP1Context:
		return 0.6
	case TierP2Raw:
		return 0.3
	default:
		return 0.2
	}
}

// Better returns the higher-authority (lower ordinal) of two tiers.
func (t Tier) Better(other Tier) Tier {
	if other < t {
		return other
	}
	return t
}

// Item is one upstream article/release/video collected by a source adapter.
// Link is the global dedup key; PublishedAt is always UTC and inside the
// adapter's lookback window.
type Item struct {
	Title        string    `json:"title"`
	Link         string    `json:"link"`
	PublishedAt  time.Time `json:"published_at"`
	Summary      string    `json:"summary"`       // truncated to 500 chars
	SourceDomain string    `json:"source_domain"` // host, lowercased, www. stripped
	FeedTitle    string    `json:"feed_title"`
	Tier         Tier      `json:"tier"`
	Lang         string    `json:"lang"` // "ko" or "en"
}

// KeywordCandidate accumulates support metadata for one extracted keyword.
type KeywordCandidate struct {
	Text     string              `json:"text"`
	Count    int                 `json:"count"`
	Domains  map[string]struct{} `json:"-"`
	LatestAt time.Time           `json:"latest_at"`
	Tier     Tier                `json:"tier"`
}

// NormalizedKeyword is an extracted keyword after filtering and slugging.
type NormalizedKeyword struct {
	KeywordID string            `json:"keyword_id"`
	Keyword   string            `json:"keyword"`
	Aliases   []string          `json:"aliases"`
	Candidate *KeywordCandidate `json:"candidate"`
}

// Snapshot is one immutable pipeline result set. SnapshotID has the form
// YYYYMMDD_HHMM_KST and is inserted exactly once per run.
type Snapshot struct {
	SnapshotID   string    `json:"snapshot_id"`
	UpdatedAtUTC time.Time `json:"updated_at_utc"`
	NextUpdateAt time.Time `json:"next_update_at_utc"`
	CreatedAt    time.Time `json:"created_at"`
}

// KeywordRow is one ranked keyword inside a snapshot. Rank is dense and
// unique within the snapshot; DeltaRank is prevRank-rank for keywords seen
// in a prior snapshot, else 0 with IsNew set.
type KeywordRow struct {
	SnapshotID     string  `json:"snapshot_id"`
	KeywordID      string  `json:"keyword_id"`
	Keyword        string  `json:"keyword"`
	Rank           int     `json:"rank"`
	DeltaRank      int     `json:"delta_rank"`
	IsNew          bool    `json:"is_new"`
	Score          float64 `json:"score"`
	ScoreRecency   float64 `json:"score_recency"`
	ScoreFrequency float64 `json:"score_frequency"`
	ScoreAuthority float64 `json:"score_authority"`
	ScoreInternal  float64 `json:"score_internal"`
	SummaryShortKo string  `json:"summary_short"`
	SummaryShortEn string  `json:"summary_short_en"`
	PrimaryType    string  `json:"primary_type"` // news, social or data

	TopSourceTitle    string `json:"top_source_title,omitempty"`
	TopSourceURL      string `json:"top_source_url,omitempty"`
	TopSourceDomain   string `json:"top_source_domain,omitempty"`
	TopSourceImageURL string `json:"top_source_image_url,omitempty"`
}

// DefaultImageURL is the sentinel stored when no OG image could be found.
const DefaultImageURL = "/images/default-source.svg"

// SourceRow is one enrichment source attached to a keyword in a snapshot.
// (SnapshotID, KeywordID, Type, URL) is unique.
type SourceRow struct {
	ID             int64      `json:"id"`
	SnapshotID     string     `json:"snapshot_id"`
	KeywordID      string     `json:"keyword_id"`
	Type           string     `json:"type"` // news, web, video, image
	Title          string     `json:"title"`
	URL            string     `json:"url"`
	Domain         string     `json:"domain"`
	PublishedAtUTC *time.Time `json:"published_at_utc,omitempty"`
	Snippet        string     `json:"snippet,omitempty"`
	ImageURL       string     `json:"image_url"` // never empty, sentinel when unknown
	TitleKo        string     `json:"title_ko,omitempty"`
	TitleEn        string     `json:"title_en,omitempty"`
}

// Alias links an alternative surface form to a canonical keyword ID.
type Alias struct {
	CanonicalKeywordID string `json:"canonical_keyword_id"`
	Alias              string `json:"alias"`
	Lang               string `json:"lang"`
}

// RunSummary is what one pipeline run reports back to its caller.
type RunSummary struct {
	SnapshotID   string `json:"snapshotId"`
	KeywordCount int    `json:"keywordCount"`
	ReusedCount  int    `json:"reusedCount"`
	NewCount     int    `json:"newCount"`
	DurationMs   int64  `json:"durationMs"`
}
