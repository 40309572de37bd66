package ranking

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/montanaflynn/stats"

	"github.com/TenSixteenBio/GSEApy/domain/gsea"
	"github.com/TenSixteenBio/GSEApy/internal/errors"
)

// Metric is the closed set of per-gene ranking statistics
type Metric int

const (
	SignalToNoise Metric = iota
	AbsSignalToNoise
	TTest
	RatioOfClasses
	DiffOfClasses
	Log2RatioOfClasses
)

func (m Metric) String() string {
	switch m {
	case SignalToNoise:
		return "signal_to_noise"
	case AbsSignalToNoise:
		return "abs_signal_to_noise"
	case TTest:
		return "t_test"
	case RatioOfClasses:
		return "ratio_of_classes"
	case DiffOfClasses:
		return "diff_of_classes"
	case Log2RatioOfClasses:
		return "log2_ratio_of_classes"
	default:
		return "unknown"
	}
}

// ParseMetric maps a configuration name (including the s2n/abs_s2n aliases)
// onto a Metric
func ParseMetric(name string) (Metric, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "signal_to_noise", "s2n":
		return SignalToNoise, nil
	case "abs_signal_to_noise", "abs_s2n":
		return AbsSignalToNoise, nil
	case "t_test":
		return TTest, nil
	case "ratio_of_classes":
		return RatioOfClasses, nil
	case "diff_of_classes":
		return DiffOfClasses, nil
	case "log2_ratio_of_classes":
		return Log2RatioOfClasses, nil
	default:
		return 0, errors.UnsupportedMetric(name)
	}
}

// Rank turns a grouped expression matrix into an ordered gene ranking.
// Sorting is stable and descending unless ascending is requested.
func Rank(matrix gsea.ExpressionMatrix, pheno gsea.Phenotype, metric Metric, ascending bool) (gsea.RankedList, error) {
	nPos, nNeg := pheno.GroupSizes()
	if nPos < 3 {
		return nil, errors.InsufficientGroupSize(pheno.Pos, nPos)
	}
	if nNeg < 3 {
		return nil, errors.InsufficientGroupSize(pheno.Neg, nNeg)
	}
	if len(pheno.Assignment) != len(matrix.Samples) {
		return nil, errors.InvalidInput(fmt.Sprintf(
			"phenotype covers %d samples, matrix has %d", len(pheno.Assignment), len(matrix.Samples)))
	}

	scores, err := ScoreGenes(matrix.Values, pheno.Assignment, metric)
	if err != nil {
		return nil, err
	}

	ranked := make(gsea.RankedList, len(matrix.Genes))
	for i, gene := range matrix.Genes {
		ranked[i] = gsea.RankedGene{Gene: gene, Score: scores[i]}
	}
	ranked.Sort(ascending)
	return ranked, nil
}

// ScoreGenes computes the ranking statistic per gene row. assignment[i] true
// means sample i belongs to the positive group. Group sizes are assumed
// validated by the caller; this is the hot path re-run per phenotype
// permutation.
func ScoreGenes(values [][]float64, assignment []bool, metric Metric) ([]float64, error) {
	nPos, nNeg := 0, 0
	for _, a := range assignment {
		if a {
			nPos++
		} else {
			nNeg++
		}
	}

	scores := make([]float64, len(values))
	posBuf := make([]float64, 0, nPos)
	negBuf := make([]float64, 0, nNeg)

	for g, row := range values {
		posBuf = posBuf[:0]
		negBuf = negBuf[:0]
		for i, v := range row {
			if assignment[i] {
				posBuf = append(posBuf, v)
			} else {
				negBuf = append(negBuf, v)
			}
		}

		meanPos, _ := stats.Mean(posBuf)
		meanNeg, _ := stats.Mean(negBuf)
		stdPos, _ := stats.StandardDeviationSample(posBuf)
		stdNeg, _ := stats.StandardDeviationSample(negBuf)

		score, err := applyMetric(metric, meanPos, meanNeg, stdPos, stdNeg, nPos, nNeg)
		if err != nil {
			return nil, errors.Wrapf(err, "gene row %d", g)
		}
		scores[g] = score
	}
	return scores, nil
}

func applyMetric(metric Metric, meanPos, meanNeg, stdPos, stdNeg float64, nPos, nNeg int) (float64, error) {
	switch metric {
	case SignalToNoise:
		denom := stdPos + stdNeg
		if denom == 0 {
			return 0, errors.DegenerateInput("zero combined standard deviation for signal_to_noise")
		}
		return (meanPos - meanNeg) / denom, nil
	case AbsSignalToNoise:
		denom := stdPos + stdNeg
		if denom == 0 {
			return 0, errors.DegenerateInput("zero combined standard deviation for abs_signal_to_noise")
		}
		return math.Abs((meanPos - meanNeg) / denom), nil
	case TTest:
		denom := math.Sqrt(stdPos*stdPos/float64(nPos) + stdNeg*stdNeg/float64(nNeg))
		if denom == 0 {
			return 0, errors.DegenerateInput("zero pooled variance for t_test")
		}
		return (meanPos - meanNeg) / denom, nil
	case RatioOfClasses:
		if meanNeg == 0 {
			return 0, errors.DegenerateInput("zero negative class mean for ratio_of_classes")
		}
		return meanPos / meanNeg, nil
	case DiffOfClasses:
		return meanPos - meanNeg, nil
	case Log2RatioOfClasses:
		if meanNeg == 0 {
			return 0, errors.DegenerateInput("zero negative class mean for log2_ratio_of_classes")
		}
		ratio := meanPos / meanNeg
		if ratio <= 0 {
			return 0, errors.DegenerateInput("non-positive class-mean ratio for log2_ratio_of_classes")
		}
		return math.Log2(ratio), nil
	default:
		return 0, errors.UnsupportedMetric(fmt.Sprintf("metric(%d)", int(metric)))
	}
}

// Order returns the stable argsort of scores, descending unless ascending is
// requested. Ties keep input order.
func Order(scores []float64, ascending bool) []int {
	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		if ascending {
			return scores[order[a]] < scores[order[b]]
		}
		return scores[order[a]] > scores[order[b]]
	})
	return order
}
