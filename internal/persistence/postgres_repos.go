package persistence

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"

	"trendpulse/internal/core"
)

const keywordColumns = `snapshot_id, keyword_id, keyword, rank, delta_rank, is_new,
	score, score_recency, score_frequency, score_authority, score_internal,
	summary_short, summary_short_en, primary_type,
	top_source_title, top_source_url, top_source_domain, top_source_image_url`

// postgresSnapshotRepo implements SnapshotRepository for PostgreSQL.
type postgresSnapshotRepo struct {
	db *sql.DB
}

func (r *postgresSnapshotRepo) Create(ctx context.Context, snapshot *core.Snapshot) error {
	query := `
		INSERT INTO snapshots (snapshot_id, updated_at_utc, next_update_at_utc)
		VALUES ($1, $2, $3)
		ON CONFLICT (snapshot_id) DO NOTHING
	`
	_, err := r.db.ExecContext(ctx, query,
		snapshot.SnapshotID, snapshot.UpdatedAtUTC, snapshot.NextUpdateAt)
	return err
}

func (r *postgresSnapshotRepo) RecentIDs(ctx context.Context, limit int) ([]string, error) {
	query := `SELECT snapshot_id FROM snapshots ORDER BY updated_at_utc DESC LIMIT $1`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *postgresSnapshotRepo) Latest(ctx context.Context) (*core.Snapshot, error) {
	query := `
		SELECT snapshot_id, updated_at_utc, next_update_at_utc, created_at
		FROM snapshots ORDER BY updated_at_utc DESC LIMIT 1
	`
	var s core.Snapshot
	err := r.db.QueryRowContext(ctx, query).Scan(
		&s.SnapshotID, &s.UpdatedAtUTC, &s.NextUpdateAt, &s.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// postgresKeywordRepo implements KeywordRepository for PostgreSQL.
type postgresKeywordRepo struct {
	db *sql.DB
}

func (r *postgresKeywordRepo) Create(ctx context.Context, row *core.KeywordRow) error {
	query := `
		INSERT INTO keywords (` + keywordColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		ON CONFLICT (snapshot_id, keyword_id) DO NOTHING
	`
	_, err := r.db.ExecContext(ctx, query,
		row.SnapshotID, row.KeywordID, row.Keyword, row.Rank, row.DeltaRank, row.IsNew,
		row.Score, row.ScoreRecency, row.ScoreFrequency, row.ScoreAuthority, row.ScoreInternal,
		row.SummaryShortKo, row.SummaryShortEn, row.PrimaryType,
		nullable(row.TopSourceTitle), nullable(row.TopSourceURL),
		nullable(row.TopSourceDomain), nullable(row.TopSourceImageURL))
	return err
}

func (r *postgresKeywordRepo) PreviousRanks(ctx context.Context) (map[string]int, error) {
	// Delta-rank looks back over the whole history, not just the reuse
	// window, so a keyword absent for weeks still compares against its
	// last ranked appearance.
	query := `
		SELECT DISTINCT ON (k.keyword_id) k.keyword_id, k.rank
		FROM keywords k
		JOIN snapshots s ON s.snapshot_id = k.snapshot_id
		ORDER BY k.keyword_id, s.updated_at_utc DESC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ranks := make(map[string]int)
	for rows.Next() {
		var keywordID string
		var rank int
		if err := rows.Scan(&keywordID, &rank); err != nil {
			return nil, err
		}
		ranks[keywordID] = rank
	}
	return ranks, rows.Err()
}

func (r *postgresKeywordRepo) LatestRow(ctx context.Context, keywordID string, snapshotIDs []string) (*core.KeywordRow, error) {
	if len(snapshotIDs) == 0 {
		return nil, nil
	}
	query := `
		SELECT ` + keywordColumns + `
		FROM keywords
		WHERE keyword_id = $1 AND snapshot_id = ANY($2)
		ORDER BY array_position($2, snapshot_id)
		LIMIT 1
	`
	row := r.db.QueryRowContext(ctx, query, keywordID, pq.Array(snapshotIDs))
	kw, err := scanKeywordRow(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return kw, nil
}

func (r *postgresKeywordRepo) BySnapshot(ctx context.Context, snapshotID string) ([]core.KeywordRow, error) {
	query := `SELECT ` + keywordColumns + ` FROM keywords WHERE snapshot_id = $1 ORDER BY rank`
	rows, err := r.db.QueryContext(ctx, query, snapshotID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []core.KeywordRow
	for rows.Next() {
		kw, err := scanKeywordRow(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *kw)
	}
	return out, rows.Err()
}

func scanKeywordRow(scan func(dest ...any) error) (*core.KeywordRow, error) {
	var row core.KeywordRow
	var topTitle, topURL, topDomain, topImage sql.NullString
	err := scan(
		&row.SnapshotID, &row.KeywordID, &row.Keyword, &row.Rank, &row.DeltaRank, &row.IsNew,
		&row.Score, &row.ScoreRecency, &row.ScoreFrequency, &row.ScoreAuthority, &row.ScoreInternal,
		&row.SummaryShortKo, &row.SummaryShortEn, &row.PrimaryType,
		&topTitle, &topURL, &topDomain, &topImage)
	if err != nil {
		return nil, err
	}
	row.TopSourceTitle = topTitle.String
	row.TopSourceURL = topURL.String
	row.TopSourceDomain = topDomain.String
	row.TopSourceImageURL = topImage.String
	return &row, nil
}

// postgresSourceRepo implements SourceRepository for PostgreSQL.
type postgresSourceRepo struct {
	db *sql.DB
}

func (r *postgresSourceRepo) Create(ctx context.Context, row *core.SourceRow) error {
	query := `
		INSERT INTO sources (snapshot_id, keyword_id, type, title, url, domain,
			published_at_utc, snippet, image_url, title_ko, title_en)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (snapshot_id, keyword_id, type, url) DO UPDATE SET
			title = EXCLUDED.title,
			domain = EXCLUDED.domain,
			published_at_utc = EXCLUDED.published_at_utc,
			snippet = EXCLUDED.snippet,
			image_url = EXCLUDED.image_url,
			title_ko = EXCLUDED.title_ko,
			title_en = EXCLUDED.title_en
	`
	_, err := r.db.ExecContext(ctx, query,
		row.SnapshotID, row.KeywordID, row.Type, row.Title, row.URL, row.Domain,
		row.PublishedAtUTC, nullable(row.Snippet), row.ImageURL,
		nullable(row.TitleKo), nullable(row.TitleEn))
	return err
}

func (r *postgresSourceRepo) ByKeyword(ctx context.Context, snapshotID, keywordID string) ([]core.SourceRow, error) {
	query := `
		SELECT id, snapshot_id, keyword_id, type, title, url, domain,
			published_at_utc, snippet, image_url, title_ko, title_en
		FROM sources
		WHERE snapshot_id = $1 AND keyword_id = $2
		ORDER BY id
	`
	rows, err := r.db.QueryContext(ctx, query, snapshotID, keywordID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []core.SourceRow
	for rows.Next() {
		var row core.SourceRow
		var published sql.NullTime
		var snippet, titleKo, titleEn sql.NullString
		if err := rows.Scan(&row.ID, &row.SnapshotID, &row.KeywordID, &row.Type,
			&row.Title, &row.URL, &row.Domain, &published, &snippet,
			&row.ImageURL, &titleKo, &titleEn); err != nil {
			return nil, err
		}
		if published.Valid {
			t := published.Time
			row.PublishedAtUTC = &t
		}
		row.Snippet = snippet.String
		row.TitleKo = titleKo.String
		row.TitleEn = titleEn.String
		out = append(out, row)
	}
	return out, rows.Err()
}

// postgresAliasRepo implements AliasRepository for PostgreSQL.
type postgresAliasRepo struct {
	db *sql.DB
}

func (r *postgresAliasRepo) Create(ctx context.Context, alias *core.Alias) error {
	query := `
		INSERT INTO keyword_aliases (canonical_keyword_id, alias, lang)
		VALUES ($1, $2, $3)
		ON CONFLICT (canonical_keyword_id, alias) DO NOTHING
	`
	_, err := r.db.ExecContext(ctx, query, alias.CanonicalKeywordID, alias.Alias, alias.Lang)
	return err
}

func (r *postgresAliasRepo) ByCanonical(ctx context.Context, canonicalKeywordID string) ([]core.Alias, error) {
	query := `SELECT canonical_keyword_id, alias, lang FROM keyword_aliases WHERE canonical_keyword_id = $1`
	rows, err := r.db.QueryContext(ctx, query, canonicalKeywordID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []core.Alias
	for rows.Next() {
		var a core.Alias
		if err := rows.Scan(&a.CanonicalKeywordID, &a.Alias, &a.Lang); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// postgresSearchCountRepo implements SearchCountRepository for PostgreSQL.
type postgresSearchCountRepo struct {
	db *sql.DB
}

func (r *postgresSearchCountRepo) Increment(ctx context.Context, query string) error {
	stmt := `
		INSERT INTO search_counts (query, count, last_searched_at)
		VALUES ($1, 1, $2)
		ON CONFLICT (query) DO UPDATE SET
			count = search_counts.count + 1,
			last_searched_at = EXCLUDED.last_searched_at
	`
	_, err := r.db.ExecContext(ctx, stmt, query, time.Now().UTC())
	return err
}

func (r *postgresSearchCountRepo) Get(ctx context.Context, query string) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT count FROM search_counts WHERE query = $1`, query).Scan(&count)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	return count, err
}

// nullable maps an empty string onto SQL NULL.
func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
