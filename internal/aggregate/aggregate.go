// Package aggregate assembles final enrichment records and imposes the
// deterministic output ordering.
package aggregate

import (
	"math"
	"sort"

	"github.com/TenSixteenBio/GSEApy/domain/gsea"
	"github.com/TenSixteenBio/GSEApy/internal/enrichment"
	"github.com/TenSixteenBio/GSEApy/internal/permutation"
	"github.com/TenSixteenBio/GSEApy/internal/significance"
)

// Options controls record assembly
type Options struct {
	// SortAscending orders records by NES ascending instead of descending
	SortAscending bool
	// GraphNum keeps full RES profiles on that many top records by |NES|;
	// 0 drops every profile, negative keeps all of them
	GraphNum int
}

// Assemble joins permutation output with significance output into the final
// ordered record sequence. results and normalized must be index-aligned.
func Assemble(ranked gsea.RankedList, results []permutation.SetResult, normalized []significance.Normalized, opts Options) []gsea.EnrichmentRecord {
	records := make([]gsea.EnrichmentRecord, len(results))
	for i, r := range results {
		n := normalized[i]
		records[i] = gsea.EnrichmentRecord{
			Term:        r.Set.Term,
			ES:          n.ES,
			NES:         n.NES,
			Pval:        n.Pval,
			FDR:         n.FDR,
			MatchedSize: r.Set.MatchedSize,
			GeneSetSize: r.Set.GeneSetSize,
			HitIndices:  r.Observed.HitIndices,
			LeadGenes:   leadGenes(ranked, r.Observed),
			RES:         r.Observed.RES,
		}
	}

	trimProfiles(records, opts.GraphNum)
	sortRecords(records, opts.SortAscending)
	return records
}

// leadGenes extracts the leading-edge subset: hits at or before the peak for
// positive scores, at or after it for negative ones
func leadGenes(ranked gsea.RankedList, p enrichment.Profile) []string {
	genes := make([]string, 0, len(p.HitIndices))
	for _, idx := range p.HitIndices {
		if p.ES >= 0 && idx <= p.PeakIndex {
			genes = append(genes, ranked[idx].Gene)
		}
		if p.ES < 0 && idx >= p.PeakIndex {
			genes = append(genes, ranked[idx].Gene)
		}
	}
	return genes
}

// trimProfiles frees RES profiles outside the top graphNum records by |NES|
func trimProfiles(records []gsea.EnrichmentRecord, graphNum int) {
	if graphNum < 0 {
		return
	}
	order := make([]int, len(records))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return absOrNegInf(records[order[a]].NES) > absOrNegInf(records[order[b]].NES)
	})
	for pos, idx := range order {
		if pos >= graphNum {
			records[idx].RES = nil
		}
	}
}

func sortRecords(records []gsea.EnrichmentRecord, ascending bool) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		// NaN NES always sorts last
		if math.IsNaN(a.NES) != math.IsNaN(b.NES) {
			return math.IsNaN(b.NES)
		}
		if !math.IsNaN(a.NES) && a.NES != b.NES {
			if ascending {
				return a.NES < b.NES
			}
			return a.NES > b.NES
		}
		if math.IsNaN(a.Pval) != math.IsNaN(b.Pval) {
			return math.IsNaN(b.Pval)
		}
		if !math.IsNaN(a.Pval) && a.Pval != b.Pval {
			return a.Pval < b.Pval
		}
		return a.Term < b.Term
	})
}

func absOrNegInf(v float64) float64 {
	if math.IsNaN(v) {
		return math.Inf(-1)
	}
	return math.Abs(v)
}
