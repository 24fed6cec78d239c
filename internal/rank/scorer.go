// Package rank scores matched keywords and produces the ranked snapshot
// rows, including rank deltas against prior snapshots and the novelty
// bonus for first-time keywords.
package rank

import (
	"math"
	"sort"
	"time"

	"trendpulse/internal/core"
)

// Score weights. Internal is an operator boost/blacklist channel, kept in
// the formula even while it always contributes zero.
const (
	weightRecency   = 0.45
	weightFrequency = 0.20
	weightAuthority = 0.20
	weightInternal  = 0.15

	recencyHalfLifeHours = 36.0
	frequencyDomainCap   = 10.0

	noveltyBonus = 0.15
)

// Scores holds the per-component breakdown of one keyword's total.
type Scores struct {
	Recency   float64
	Frequency float64
	Authority float64
	Internal  float64
	Total     float64
}

// Score computes the component scores for a matched candidate at instant
// now. All components are in [0,1].
func Score(cand *core.KeywordCandidate, now time.Time) Scores {
	ageHours := now.Sub(cand.LatestAt).Hours()
	if ageHours < 0 {
		ageHours = 0
	}

	s := Scores{
		Recency:   math.Exp(-ageHours / recencyHalfLifeHours),
		Frequency: math.Min(1, float64(len(cand.Domains))/frequencyDomainCap),
		Authority: cand.Tier.Authority(),
		Internal:  0,
	}
	s.Total = weightRecency*s.Recency + weightFrequency*s.Frequency +
		weightAuthority*s.Authority + weightInternal*s.Internal
	return s
}

// Rank scores every keyword, keeps the top limit, applies rank deltas from
// prevRanks (keywordID to most recent prior rank) and re-sorts after the
// novelty bonus. Ranks are dense 1..n on the returned rows.
func Rank(keywords []core.NormalizedKeyword, prevRanks map[string]int, now time.Time, limit int) []core.KeywordRow {
	type scored struct {
		kw     core.NormalizedKeyword
		scores Scores
	}
	entries := make([]scored, 0, len(keywords))
	for _, kw := range keywords {
		if kw.Candidate == nil {
			continue
		}
		entries = append(entries, scored{kw: kw, scores: Score(kw.Candidate, now)})
	}

	sort.SliceStable(entries, func(i, j int) bool { return entries[i].scores.Total > entries[j].scores.Total })
	if len(entries) > limit {
		entries = entries[:limit]
	}

	rows := make([]core.KeywordRow, len(entries))
	for i, e := range entries {
		prev, seen := prevRanks[e.kw.KeywordID]
		total := e.scores.Total
		if !seen {
			total += noveltyBonus
		}
		rows[i] = core.KeywordRow{
			KeywordID:      e.kw.KeywordID,
			Keyword:        e.kw.Keyword,
			IsNew:          !seen,
			Score:          round4(total),
			ScoreRecency:   round4(e.scores.Recency),
			ScoreFrequency: round4(e.scores.Frequency),
			ScoreAuthority: round4(e.scores.Authority),
			ScoreInternal:  round4(e.scores.Internal),
		}
		if seen {
			rows[i].DeltaRank = prev
		}
	}

	// Re-sort with the bonus applied, then assign final ranks and deltas.
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Score > rows[j].Score })
	for i := range rows {
		rows[i].Rank = i + 1
		if rows[i].IsNew {
			rows[i].DeltaRank = 0
		} else {
			rows[i].DeltaRank = rows[i].DeltaRank - rows[i].Rank
		}
	}
	return rows
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
