package loader

import (
	"github.com/montanaflynn/stats"

	"github.com/TenSixteenBio/GSEApy/domain/gsea"
	"github.com/TenSixteenBio/GSEApy/internal"
)

// expression values get a small positive shift so ratio metrics never see
// exact zeros
const epsilon = 1e-8

// Prepare applies the pre-scoring cleanup the ranking engine assumes has
// already happened: genes whose per-group standard deviations are all zero
// are dropped, and every retained value is shifted by epsilon.
func Prepare(matrix gsea.ExpressionMatrix, labels []string) gsea.ExpressionMatrix {
	log := internal.NewLogger("Loader")

	groups := make(map[string][]int)
	for i, l := range labels {
		groups[l] = append(groups[l], i)
	}

	out := gsea.ExpressionMatrix{Samples: matrix.Samples}
	dropped := 0
	buf := make([]float64, 0, len(matrix.Samples))

	for gi, row := range matrix.Values {
		stdSum := 0.0
		for _, idx := range groups {
			buf = buf[:0]
			for _, si := range idx {
				buf = append(buf, row[si])
			}
			std, _ := stats.StandardDeviationSample(buf)
			stdSum += std
		}
		if stdSum == 0 {
			dropped++
			continue
		}
		shifted := make([]float64, len(row))
		for i, v := range row {
			shifted[i] = v + epsilon
		}
		out.Genes = append(out.Genes, matrix.Genes[gi])
		out.Values = append(out.Values, shifted)
	}

	if dropped > 0 {
		log.Warn("dropped %d genes with zero variance across the grouping", dropped)
	}
	return out
}
