package gsea

import (
	"time"
)

// EnrichmentRecord is the final result for one surviving gene set.
// NES, Pval and FDR are NaN when the relevant null subset is empty or
// permutation_num was 0; NaN here is a reportable value, not an error.
type EnrichmentRecord struct {
	Term        string    `json:"term"`
	ES          float64   `json:"es"`
	NES         float64   `json:"nes"`
	Pval        float64   `json:"pval"`
	FDR         float64   `json:"fdr"`
	MatchedSize int       `json:"matched_size"`
	GeneSetSize int       `json:"gene_set_size"`
	HitIndices  []int     `json:"hit_indices"`
	LeadGenes   []string  `json:"lead_genes,omitempty"`
	RES         []float64 `json:"res,omitempty"`
}

// RunSummary describes one completed enrichment run
type RunSummary struct {
	ID              string          `json:"id"`
	Module          string          `json:"module"`
	Metric          string          `json:"metric,omitempty"`
	PermutationMode PermutationMode `json:"permutation_mode"`
	PermutationNum  int             `json:"permutation_num"`
	Seed            uint64          `json:"seed"`
	Weight          float64         `json:"weight"`
	MinSize         int             `json:"min_size"`
	MaxSize         int             `json:"max_size"`
	GeneCount       int             `json:"gene_count"`
	SetCount        int             `json:"set_count"`
	StartedAt       time.Time       `json:"started_at"`
	FinishedAt      time.Time       `json:"finished_at"`
}
