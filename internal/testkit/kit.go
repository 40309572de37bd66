// Package testkit provides deterministic fixture generators shared by the
// package tests. Everything here is seeded; two calls with the same
// arguments always produce identical data.
package testkit

import (
	"fmt"
	"math/rand"

	"github.com/TenSixteenBio/GSEApy/domain/gsea"
)

// RankedList builds a ranking of n genes named gene_1..gene_n with strictly
// decreasing scores centered on zero
func RankedList(n int) gsea.RankedList {
	ranked := make(gsea.RankedList, n)
	mid := float64(n) / 2.0
	for i := 0; i < n; i++ {
		ranked[i] = gsea.RankedGene{
			Gene:  fmt.Sprintf("gene_%d", i+1),
			Score: mid - float64(i),
		}
	}
	return ranked
}

// Collection draws setCount random gene sets of setSize members from the
// universe using a seeded generator
func Collection(universe []string, setCount, setSize int, seed int64) gsea.GeneSetCollection {
	rng := rand.New(rand.NewSource(seed))
	collection := make(gsea.GeneSetCollection, setCount)
	for s := 0; s < setCount; s++ {
		term := fmt.Sprintf("SET_%02d", s)
		perm := rng.Perm(len(universe))
		members := make([]string, setSize)
		for i := 0; i < setSize; i++ {
			members[i] = universe[perm[i]]
		}
		collection[term] = gsea.GeneSet{Term: term, Members: members}
	}
	return collection
}

// Matrix builds a two-group expression matrix. The first upGenes rows are
// shifted upward in the positive group so signal-based metrics rank them at
// the top; the rest is seeded noise. Returns the matrix and per-sample
// labels ("pos" repeated nPos times, then "neg").
func Matrix(nGenes, nPos, nNeg, upGenes int, seed int64) (gsea.ExpressionMatrix, []string) {
	rng := rand.New(rand.NewSource(seed))

	matrix := gsea.ExpressionMatrix{
		Genes:   make([]string, nGenes),
		Samples: make([]string, nPos+nNeg),
		Values:  make([][]float64, nGenes),
	}
	labels := make([]string, nPos+nNeg)
	for i := 0; i < nPos+nNeg; i++ {
		matrix.Samples[i] = fmt.Sprintf("sample_%d", i+1)
		if i < nPos {
			labels[i] = "pos"
		} else {
			labels[i] = "neg"
		}
	}

	for g := 0; g < nGenes; g++ {
		matrix.Genes[g] = fmt.Sprintf("gene_%d", g+1)
		row := make([]float64, nPos+nNeg)
		for s := range row {
			row[s] = 10 + rng.NormFloat64()
			if g < upGenes && s < nPos {
				row[s] += 5
			}
		}
		matrix.Values[g] = row
	}
	return matrix, labels
}
