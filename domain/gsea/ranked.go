package gsea

import (
	"math"
	"sort"

	"github.com/TenSixteenBio/GSEApy/internal/errors"
)

// RankedGene is one entry of a ranked list: a gene and its ranking statistic
type RankedGene struct {
	Gene  string  `json:"gene"`
	Score float64 `json:"score"`
}

// RankedList is an ordered gene ranking, strictly ordered by score per the
// caller's ascending/descending choice. Ties keep original relative order.
type RankedList []RankedGene

// Genes returns the gene ids in ranking order
func (r RankedList) Genes() []string {
	genes := make([]string, len(r))
	for i, g := range r {
		genes[i] = g.Gene
	}
	return genes
}

// Scores returns the ranking statistics in ranking order
func (r RankedList) Scores() []float64 {
	scores := make([]float64, len(r))
	for i, g := range r {
		scores[i] = g.Score
	}
	return scores
}

// Validate enforces the ranked-list invariants: length >= 2, unique gene ids,
// finite scores
func (r RankedList) Validate() error {
	if len(r) < 2 {
		return errors.InvalidInput("ranked list must contain at least 2 genes")
	}
	seen := make(map[string]struct{}, len(r))
	for _, g := range r {
		if g.Gene == "" {
			return errors.InvalidInput("ranked list contains an empty gene id")
		}
		if _, dup := seen[g.Gene]; dup {
			return errors.InvalidInput("ranked list contains duplicated gene id " + g.Gene)
		}
		seen[g.Gene] = struct{}{}
		if math.IsNaN(g.Score) {
			return errors.InvalidInput("ranked list contains NaN score for gene " + g.Gene)
		}
	}
	return nil
}

// Sort orders the list by score, descending unless ascending is requested.
// The sort is stable so tied genes keep their input order.
func (r RankedList) Sort(ascending bool) {
	if ascending {
		sort.SliceStable(r, func(i, j int) bool { return r[i].Score < r[j].Score })
		return
	}
	sort.SliceStable(r, func(i, j int) bool { return r[i].Score > r[j].Score })
}
