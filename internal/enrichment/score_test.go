package enrichment

import (
	"math"
	"testing"

	"github.com/TenSixteenBio/GSEApy/domain/gsea"
	"github.com/TenSixteenBio/GSEApy/internal/errors"
)

func TestScore_UnweightedKSFixture(t *testing.T) {
	// ranking g1..g5 descending, set {g2, g4}: increments are
	// miss, hit, miss, hit, miss with steps -1/3 and +1/2
	scores := []float64{5, 4, 3, 2, 1}
	hit := []bool{false, true, false, true, false}

	profile, err := Score(scores, hit, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantRES := []float64{
		-1.0 / 3.0,
		-1.0/3.0 + 1.0/2.0,
		-1.0/3.0 + 1.0/2.0 - 1.0/3.0,
		-1.0/3.0 + 1.0/2.0 - 1.0/3.0 + 1.0/2.0,
		-1.0/3.0 + 1.0/2.0 - 1.0/3.0 + 1.0/2.0 - 1.0/3.0,
	}
	for i, want := range wantRES {
		if profile.RES[i] != want {
			t.Errorf("RES[%d] = %v, want %v", i, profile.RES[i], want)
		}
	}

	// in exact arithmetic |RES[0]| and |RES[3]| tie at 1/3, but the float
	// accumulation leaves RES[3] one ulp above it, so RES[3] is the peak
	if profile.ES != wantRES[3] {
		t.Errorf("ES = %v, want %v", profile.ES, wantRES[3])
	}
	if profile.PeakIndex != 3 {
		t.Errorf("PeakIndex = %d, want 3", profile.PeakIndex)
	}
	for i := range wantRES {
		if math.Abs(profile.RES[i]) > math.Abs(profile.ES) {
			t.Errorf("|RES[%d]| = %v exceeds |ES| = %v", i, math.Abs(profile.RES[i]), math.Abs(profile.ES))
		}
	}
	if len(profile.HitIndices) != 2 || profile.HitIndices[0] != 1 || profile.HitIndices[1] != 3 {
		t.Errorf("HitIndices = %v, want [1 3]", profile.HitIndices)
	}
}

func TestScore_TieBreaksOnFirstOccurrence(t *testing.T) {
	// all steps are exact binary fractions: RES = [0.5, 0, -0.5, 0];
	// |RES[0]| ties |RES[2]| and the first occurrence must win
	scores := []float64{4, 3, 2, 1}
	hit := []bool{true, false, false, true}

	profile, err := Score(scores, hit, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if profile.ES != 0.5 {
		t.Errorf("ES = %v, want 0.5", profile.ES)
	}
	if profile.PeakIndex != 0 {
		t.Errorf("PeakIndex = %d, want 0", profile.PeakIndex)
	}
}

func TestScore_WeightedScenario(t *testing.T) {
	// two hits near the positive peak, one near the negative end
	scores := []float64{5, 4, 3, 2, 1, -1, -2, -3, -4, -5}
	hit := make([]bool, 10)
	hit[0], hit[1], hit[8] = true, true, true

	profile, err := Score(scores, hit, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got, want := profile.HitIndices, []int{0, 1, 8}; len(got) != 3 || got[0] != want[0] || got[1] != want[1] || got[2] != want[2] {
		t.Errorf("HitIndices = %v, want %v", got, want)
	}
	if profile.ES <= 0.5 {
		t.Errorf("ES = %v, want strongly positive", profile.ES)
	}
	// hit weight sum 13, peak after the second hit: ES = 9/13
	if math.Abs(profile.ES-9.0/13.0) > 1e-12 {
		t.Errorf("ES = %v, want 9/13", profile.ES)
	}
	if profile.PeakIndex != 1 {
		t.Errorf("PeakIndex = %d, want 1", profile.PeakIndex)
	}
	// the running sum always returns to ~0 at the end
	if math.Abs(profile.RES[9]) > 1e-12 {
		t.Errorf("RES[last] = %v, want ~0", profile.RES[9])
	}
}

func TestScoreOnly_MatchesScore(t *testing.T) {
	scores := []float64{3.5, 2.0, 1.5, 0.5, -0.5, -1.0, -2.5}
	hit := []bool{true, false, false, true, false, true, false}

	for _, weight := range []float64{0, 0.5, 1, 2} {
		profile, err := Score(scores, hit, weight)
		if err != nil {
			t.Fatalf("Score(weight=%v): %v", weight, err)
		}
		es, err := ScoreOnly(scores, hit, weight)
		if err != nil {
			t.Fatalf("ScoreOnly(weight=%v): %v", weight, err)
		}
		if es != profile.ES {
			t.Errorf("weight %v: ScoreOnly = %v, Score.ES = %v", weight, es, profile.ES)
		}
	}
}

func TestScore_EmptyIntersection(t *testing.T) {
	_, err := Score([]float64{1, 2, 3}, []bool{false, false, false}, 1)
	if !errors.HasCode(err, errors.CodeEmptyIntersection) {
		t.Errorf("expected EMPTY_INTERSECTION, got %v", err)
	}
}

func TestScore_FullCoverage(t *testing.T) {
	_, err := Score([]float64{1, 2}, []bool{true, true}, 1)
	if !errors.HasCode(err, errors.CodeDegenerateInput) {
		t.Errorf("expected DEGENERATE_INPUT, got %v", err)
	}
}

func TestScoreSet_ResolvesMembership(t *testing.T) {
	ranked := gsea.RankedList{
		{Gene: "a", Score: 3},
		{Gene: "b", Score: 2},
		{Gene: "c", Score: 1},
		{Gene: "d", Score: -1},
	}
	set := gsea.GeneSet{Term: "S", Members: []string{"b", "d", "missing"}}

	profile, err := ScoreSet(ranked, set, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(profile.HitIndices) != 2 || profile.HitIndices[0] != 1 || profile.HitIndices[1] != 3 {
		t.Errorf("HitIndices = %v, want [1 3]", profile.HitIndices)
	}
}
