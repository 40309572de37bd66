package ports

import (
	"github.com/TenSixteenBio/GSEApy/domain/gsea"
)

// DatasetReader loads grouped expression data from an external source.
// Implementations own all file-format concerns (NA filling, deduplication,
// zero-variance filtering); the engine assumes finite, non-degenerate input.
type DatasetReader interface {
	// ReadExpression parses a genes-by-samples expression table
	ReadExpression(path string) (gsea.ExpressionMatrix, error)

	// ReadClasses parses per-sample phenotype labels, aligned to the
	// expression table's sample order
	ReadClasses(path string) ([]string, error)
}

// GeneSetReader loads a named gene-set collection
type GeneSetReader interface {
	ReadGeneSets(path string) (gsea.GeneSetCollection, error)
}

// RankingReader loads a pre-ranked gene list
type RankingReader interface {
	ReadRanking(path string) (gsea.RankedList, error)
}
