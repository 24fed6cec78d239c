package rank

import (
	"math"
	"testing"
	"time"

	"trendpulse/internal/core"
)

func candidate(ageHours float64, domains int, tier core.Tier, now time.Time) *core.KeywordCandidate {
	d := make(map[string]struct{}, domains)
	for i := 0; i < domains; i++ {
		d[string(rune('a'+i))+".com"] = struct{}{}
	}
	return &core.KeywordCandidate{
		Count:    1,
		Domains:  d,
		LatestAt: now.Add(-time.Duration(ageHours * float64(time.Hour))),
		Tier:     tier,
	}
}

func TestScoreComponents(t *testing.T) {
	now := time.Now().UTC()

	s := Score(candidate(0, 10, core.TierP0Curated, now), now)
	if math.Abs(s.Recency-1.0) > 1e-9 {
		t.Errorf("recency at age 0 = %f, want 1.0", s.Recency)
	}
	if s.Frequency != 1.0 {
		t.Errorf("frequency at 10 domains = %f, want 1.0", s.Frequency)
	}
	if s.Authority != 1.0 {
		t.Errorf("authority for P0 = %f, want 1.0", s.Authority)
	}
	// internal is reserved and always zero: max total is 0.85
	if math.Abs(s.Total-0.85) > 1e-9 {
		t.Errorf("total = %f, want 0.85", s.Total)
	}
}

func TestScoreRecencyMonotonic(t *testing.T) {
	now := time.Now().UTC()
	prev := math.Inf(1)
	for _, age := range []float64{0, 12, 36, 72, 168} {
		s := Score(candidate(age, 3, core.TierP1Context, now), now)
		if s.Recency >= prev {
			t.Fatalf("recency not strictly decreasing at age %v", age)
		}
		prev = s.Recency
	}
}

func TestScoreFrequencyCap(t *testing.T) {
	now := time.Now().UTC()
	s := Score(candidate(1, 25, core.TierP2Raw, now), now)
	if s.Frequency != 1.0 {
		t.Errorf("frequency should cap at 1.0, got %f", s.Frequency)
	}
}

func TestRankNoveltyBonusReorders(t *testing.T) {
	now := time.Now().UTC()

	// Base totals: A 0.70, B 0.68, C 0.60. C is new, so with +0.15 it
	// must come out first.
	keywords := []core.NormalizedKeyword{
		{KeywordID: "a", Keyword: "A", Candidate: candidateWithTotal(t, now, 0.70)},
		{KeywordID: "b", Keyword: "B", Candidate: candidateWithTotal(t, now, 0.68)},
		{KeywordID: "c", Keyword: "C", Candidate: candidateWithTotal(t, now, 0.60)},
	}
	prev := map[string]int{"a": 1, "b": 2}

	rows := Rank(keywords, prev, now, 20)

	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0].KeywordID != "c" || !rows[0].IsNew {
		t.Fatalf("expected new keyword first after bonus, got %+v", rows[0])
	}
	if rows[0].Rank != 1 || rows[1].Rank != 2 || rows[2].Rank != 3 {
		t.Errorf("ranks not dense: %d %d %d", rows[0].Rank, rows[1].Rank, rows[2].Rank)
	}
	if rows[0].DeltaRank != 0 {
		t.Errorf("new keyword deltaRank = %d, want 0", rows[0].DeltaRank)
	}
	// A was rank 1, now rank 2: delta = 1 - 2 = -1.
	if rows[1].KeywordID != "a" || rows[1].DeltaRank != -1 {
		t.Errorf("expected A at rank 2 with delta -1, got %+v", rows[1])
	}
	// B was rank 2, stays rank 3: delta = 2 - 3 = -1.
	if rows[2].KeywordID != "b" || rows[2].DeltaRank != -1 {
		t.Errorf("expected B at rank 3 with delta -1, got %+v", rows[2])
	}
}

func TestRankLimit(t *testing.T) {
	now := time.Now().UTC()
	var keywords []core.NormalizedKeyword
	for i := 0; i < 30; i++ {
		keywords = append(keywords, core.NormalizedKeyword{
			KeywordID: string(rune('a' + i)),
			Candidate: candidate(float64(i), 2, core.TierP2Raw, now),
		})
	}

	rows := Rank(keywords, nil, now, 20)
	if len(rows) != 20 {
		t.Errorf("expected top 20 rows, got %d", len(rows))
	}
}

func TestRankRounding(t *testing.T) {
	now := time.Now().UTC()
	rows := Rank([]core.NormalizedKeyword{
		{KeywordID: "a", Candidate: candidate(7, 3, core.TierP1Context, now)},
	}, map[string]int{"a": 1}, now, 20)

	for _, v := range []float64{rows[0].Score, rows[0].ScoreRecency, rows[0].ScoreFrequency} {
		if math.Round(v*10000)/10000 != v {
			t.Errorf("score %v not rounded to 4 decimals", v)
		}
	}
}

// candidateWithTotal builds a candidate whose unbonused total is close to
// want by tuning the age, with frequency and authority fixed.
func candidateWithTotal(t *testing.T, now time.Time, want float64) *core.KeywordCandidate {
	// total = 0.45*recency + 0.20*1.0 + 0.20*1.0 -> recency = (want-0.40)/0.45
	recency := (want - 0.40) / 0.45
	if recency <= 0 || recency > 1 {
		t.Fatalf("unreachable total %f", want)
	}
	age := -36.0 * math.Log(recency)
	return candidate(age, 10, core.TierP0Curated, now)
}
