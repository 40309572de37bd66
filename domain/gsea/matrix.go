package gsea

import (
	"fmt"
	"math"
	"sort"

	"github.com/TenSixteenBio/GSEApy/internal/errors"
)

// ExpressionMatrix is a genes-by-samples expression table. Values must be
// finite; upstream loading is responsible for NA filling, zero-variance
// filtering and the epsilon shift.
type ExpressionMatrix struct {
	Genes   []string    `json:"genes"`
	Samples []string    `json:"samples"`
	Values  [][]float64 `json:"values"`
}

// Validate checks the matrix shape and that every value is finite
func (m ExpressionMatrix) Validate() error {
	if len(m.Genes) < 2 {
		return errors.InvalidInput("expression matrix must contain at least 2 genes")
	}
	if len(m.Values) != len(m.Genes) {
		return errors.InvalidInput(fmt.Sprintf(
			"expression matrix has %d rows for %d genes", len(m.Values), len(m.Genes)))
	}
	for i, row := range m.Values {
		if len(row) != len(m.Samples) {
			return errors.InvalidInput(fmt.Sprintf(
				"gene %s has %d values for %d samples", m.Genes[i], len(row), len(m.Samples)))
		}
		for _, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return errors.InvalidInput("expression matrix contains non-finite value for gene " + m.Genes[i])
			}
		}
	}
	return nil
}

// Phenotype is a two-group assignment over the matrix samples.
// Assignment[i] == true places sample i in the positive group.
type Phenotype struct {
	Pos        string `json:"pos"`
	Neg        string `json:"neg"`
	Assignment []bool `json:"assignment"`
}

// PhenotypeFromLabels builds a two-group phenotype from per-sample class
// labels. The smaller class becomes the positive group (count-ascending
// order, matching the reference tool). Each group needs at least 3 samples.
func PhenotypeFromLabels(labels []string) (Phenotype, error) {
	counts := make(map[string]int)
	for _, l := range labels {
		counts[l]++
	}
	if len(counts) != 2 {
		return Phenotype{}, errors.InvalidInput(fmt.Sprintf(
			"phenotype labels must contain exactly 2 classes, got %d", len(counts)))
	}

	classes := make([]string, 0, 2)
	for c := range counts {
		classes = append(classes, c)
	}
	sort.Slice(classes, func(i, j int) bool {
		if counts[classes[i]] != counts[classes[j]] {
			return counts[classes[i]] < counts[classes[j]]
		}
		return classes[i] < classes[j]
	})

	for _, c := range classes {
		if counts[c] < 3 {
			return Phenotype{}, errors.InsufficientGroupSize(c, counts[c])
		}
	}

	pos, neg := classes[0], classes[1]
	assignment := make([]bool, len(labels))
	for i, l := range labels {
		assignment[i] = l == pos
	}
	return Phenotype{Pos: pos, Neg: neg, Assignment: assignment}, nil
}

// GroupSizes returns the positive and negative group sizes
func (p Phenotype) GroupSizes() (nPos, nNeg int) {
	for _, a := range p.Assignment {
		if a {
			nPos++
		} else {
			nNeg++
		}
	}
	return nPos, nNeg
}
