// Package enrichment implements the weighted running-sum enrichment
// statistic. Everything here is a pure function over immutable inputs; the
// permutation engine re-executes these kernels millions of times from
// concurrent workers.
package enrichment

import (
	"math"

	"github.com/TenSixteenBio/GSEApy/domain/gsea"
	"github.com/TenSixteenBio/GSEApy/internal/errors"
)

// Profile is the full scoring result for one (ranking, gene set) pair
type Profile struct {
	ES         float64
	PeakIndex  int
	HitIndices []int
	RES        []float64
}

// Score computes the full enrichment profile for a membership mask aligned
// to ranking order. At weight 0 every hit contributes 1/Nh and the statistic
// reduces to the classical unweighted Kolmogorov-Smirnov form.
func Score(scores []float64, hit []bool, weight float64) (Profile, error) {
	hitStep, missStep, err := steps(scores, hit, weight)
	if err != nil {
		return Profile{}, err
	}

	res := make([]float64, len(scores))
	hits := make([]int, 0, 16)
	cum := 0.0
	es := 0.0
	peak := 0
	maxAbs := -1.0

	for i := range scores {
		if hit[i] {
			cum += hitStep(i)
			hits = append(hits, i)
		} else {
			cum -= missStep
		}
		res[i] = cum
		// strict comparison keeps the first occurrence on ties
		if math.Abs(cum) > maxAbs {
			maxAbs = math.Abs(cum)
			es = cum
			peak = i
		}
	}

	return Profile{ES: es, PeakIndex: peak, HitIndices: hits, RES: res}, nil
}

// ScoreOnly computes just the enrichment score, without materializing the
// running-sum profile. This is the inner kernel of null generation.
func ScoreOnly(scores []float64, hit []bool, weight float64) (float64, error) {
	hitStep, missStep, err := steps(scores, hit, weight)
	if err != nil {
		return 0, err
	}

	cum := 0.0
	es := 0.0
	maxAbs := -1.0
	for i := range scores {
		if hit[i] {
			cum += hitStep(i)
		} else {
			cum -= missStep
		}
		if math.Abs(cum) > maxAbs {
			maxAbs = math.Abs(cum)
			es = cum
		}
	}
	return es, nil
}

// ScoreSet resolves a gene set against a ranked list and scores it.
// Intended for callers outside the permutation hot path (plotting, ad-hoc
// inspection); returns EMPTY_INTERSECTION when no member gene is ranked.
func ScoreSet(ranked gsea.RankedList, set gsea.GeneSet, weight float64) (Profile, error) {
	members := set.MemberSet()
	hit := make([]bool, len(ranked))
	for i, g := range ranked {
		_, hit[i] = members[g.Gene]
	}
	scores := ranked.Scores()
	profile, err := Score(scores, hit, weight)
	if err != nil {
		return Profile{}, errors.Wrapf(err, "scoring gene set %s", set.Term)
	}
	return profile, nil
}

// steps derives the hit increment function and the constant miss decrement.
// The hit increment is |score|^weight normalized by the total hit weight.
func steps(scores []float64, hit []bool, weight float64) (func(int) float64, float64, error) {
	if len(scores) != len(hit) {
		return nil, 0, errors.InvalidInput("hit mask length does not match ranking length")
	}

	nHit := 0
	sumWeight := 0.0
	for i, h := range hit {
		if !h {
			continue
		}
		nHit++
		sumWeight += math.Pow(math.Abs(scores[i]), weight)
	}

	if nHit == 0 {
		return nil, 0, errors.New(errors.CodeEmptyIntersection,
			"gene set has no hits in the ranking")
	}
	if nHit == len(scores) {
		return nil, 0, errors.DegenerateInput("gene set covers the entire ranking")
	}
	if sumWeight == 0 {
		return nil, 0, errors.DegenerateInput("total hit weight is zero")
	}

	missStep := 1.0 / float64(len(scores)-nHit)
	hitStep := func(i int) float64 {
		return math.Pow(math.Abs(scores[i]), weight) / sumWeight
	}
	return hitStep, missStep, nil
}
