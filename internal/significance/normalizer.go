// Package significance converts observed enrichment scores and their null
// distributions into NES, nominal p-values and a pooled empirical FDR.
//
// FDR is a whole-batch statistic: every gene set's null table must be
// complete before any record can be finalized, so this package runs strictly
// after the permutation engine joins.
package significance

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Scored is one gene set's input: the observed ES and its null scores
type Scored struct {
	Term  string
	ES    float64
	Nulls []float64
}

// Normalized is one gene set's significance output. NES, Pval and FDR are
// NaN when the same-sign null subset is empty; that is a reportable value.
type Normalized struct {
	Term string
	ES   float64
	NES  float64
	Pval float64
	FDR  float64
}

// Normalize computes NES, nominal p-value and pooled FDR for the whole
// batch. Input order is preserved in the output.
func Normalize(batch []Scored) []Normalized {
	out := make([]Normalized, len(batch))
	posPool := make([]float64, 0)
	negPool := make([]float64, 0)

	// first pass: per-set NES and nominal p, while building the pooled
	// null NES distributions
	for i, s := range batch {
		pos, neg := splitBySign(s.Nulls)
		meanPos := stat.Mean(pos, nil)
		meanNeg := stat.Mean(neg, nil)

		out[i] = Normalized{
			Term: s.Term,
			ES:   s.ES,
			NES:  normalizedScore(s.ES, pos, neg, meanPos, meanNeg),
			Pval: nominalP(s.ES, pos, neg),
			FDR:  math.NaN(),
		}

		if len(pos) > 0 && meanPos > 0 {
			for _, v := range pos {
				posPool = append(posPool, v/meanPos)
			}
		}
		if len(neg) > 0 && meanNeg < 0 {
			for _, v := range neg {
				negPool = append(negPool, v/math.Abs(meanNeg))
			}
		}
	}

	sort.Float64s(posPool)
	sort.Float64s(negPool)

	// second pass: pooled FDR against the full batch
	total := float64(len(batch))
	for i := range out {
		nes := out[i].NES
		if math.IsNaN(nes) {
			continue
		}

		var numerator, denominator float64
		if nes >= 0 {
			if len(posPool) == 0 {
				continue
			}
			numerator = float64(countAtLeast(posPool, nes)) / float64(len(posPool))
			denominator = float64(observedAtLeast(out, nes)) / total
		} else {
			if len(negPool) == 0 {
				continue
			}
			numerator = float64(countAtMost(negPool, nes)) / float64(len(negPool))
			denominator = float64(observedAtMost(out, nes)) / total
		}

		if denominator == 0 {
			continue
		}
		out[i].FDR = math.Min(numerator/denominator, 1.0)
	}
	return out
}

// normalizedScore divides the observed ES by the mean of its same-sign null
// subset. Zero-valued nulls count as positive-side.
func normalizedScore(es float64, pos, neg []float64, meanPos, meanNeg float64) float64 {
	if es >= 0 {
		if len(pos) == 0 || meanPos == 0 {
			return math.NaN()
		}
		return es / meanPos
	}
	if len(neg) == 0 || meanNeg == 0 {
		return math.NaN()
	}
	return es / math.Abs(meanNeg)
}

// nominalP is the fraction of the same-sign null subset at least as extreme
// as the observed ES
func nominalP(es float64, pos, neg []float64) float64 {
	if es >= 0 {
		if len(pos) == 0 {
			return math.NaN()
		}
		n := 0
		for _, v := range pos {
			if v >= es {
				n++
			}
		}
		return float64(n) / float64(len(pos))
	}
	if len(neg) == 0 {
		return math.NaN()
	}
	n := 0
	for _, v := range neg {
		if v <= es {
			n++
		}
	}
	return float64(n) / float64(len(neg))
}

func splitBySign(nulls []float64) (pos, neg []float64) {
	for _, v := range nulls {
		if v >= 0 {
			pos = append(pos, v)
		} else {
			neg = append(neg, v)
		}
	}
	return pos, neg
}

// countAtLeast counts sorted values >= x
func countAtLeast(sorted []float64, x float64) int {
	return len(sorted) - sort.SearchFloat64s(sorted, x)
}

// countAtMost counts sorted values <= x
func countAtMost(sorted []float64, x float64) int {
	return sort.Search(len(sorted), func(i int) bool { return sorted[i] > x })
}

func observedAtLeast(out []Normalized, nes float64) int {
	n := 0
	for _, o := range out {
		if !math.IsNaN(o.NES) && o.NES >= nes {
			n++
		}
	}
	return n
}

func observedAtMost(out []Normalized, nes float64) int {
	n := 0
	for _, o := range out {
		if !math.IsNaN(o.NES) && o.NES <= nes {
			n++
		}
	}
	return n
}
