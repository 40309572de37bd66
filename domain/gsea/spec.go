package gsea

import (
	"strings"

	"github.com/TenSixteenBio/GSEApy/internal/errors"
)

// PermutationMode selects how the null distribution is generated
type PermutationMode int

const (
	// ModePhenotype reshuffles sample group labels and recomputes the ranking
	// for every permutation. Requires grouped expression data.
	ModePhenotype PermutationMode = iota
	// ModeGeneSet resamples random gene subsets against a fixed ranking.
	ModeGeneSet
)

func (m PermutationMode) String() string {
	switch m {
	case ModePhenotype:
		return "phenotype"
	case ModeGeneSet:
		return "gene_set"
	default:
		return "unknown"
	}
}

// ParsePermutationMode parses the configuration spelling of a permutation mode
func ParsePermutationMode(s string) (PermutationMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "phenotype":
		return ModePhenotype, nil
	case "gene_set", "geneset":
		return ModeGeneSet, nil
	default:
		return 0, errors.ConfigInvalid("permutation type must be phenotype or gene_set, got " + s)
	}
}

// PermutationSpec configures null-distribution generation
type PermutationSpec struct {
	Mode    PermutationMode `json:"mode"`
	Num     int             `json:"permutation_num"`
	Seed    uint64          `json:"seed"`
	Weight  float64         `json:"weight"`
	Threads int             `json:"threads"`
}

// Validate checks the spec; Num == 0 is legal and skips null generation
func (s PermutationSpec) Validate() error {
	if s.Num < 0 {
		return errors.ConfigInvalid("permutation_num must be >= 0")
	}
	if s.Weight < 0 {
		return errors.ConfigInvalid("weight must be >= 0")
	}
	if s.Threads < 1 {
		return errors.ConfigInvalid("thread_count must be >= 1")
	}
	return nil
}
