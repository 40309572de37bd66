package gsea

import (
	"strings"

	"github.com/TenSixteenBio/GSEApy/internal/errors"
)

// SampleNorm selects the per-sample normalization applied before
// single-sample enrichment scoring
type SampleNorm int

const (
	// NormRank replaces values by 10000 * rank / n
	NormRank SampleNorm = iota
	// NormLogRank applies ln(10000 * rank / n + e)
	NormLogRank
	// NormLog applies ln(max(value, 1) + e)
	NormLog
	// NormCustom leaves the caller's values untouched
	NormCustom
)

func (n SampleNorm) String() string {
	switch n {
	case NormRank:
		return "rank"
	case NormLogRank:
		return "log_rank"
	case NormLog:
		return "log"
	case NormCustom:
		return "custom"
	default:
		return "unknown"
	}
}

// ParseSampleNorm parses the configuration spelling of a sample norm
func ParseSampleNorm(s string) (SampleNorm, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "rank":
		return NormRank, nil
	case "log_rank":
		return NormLogRank, nil
	case "log":
		return NormLog, nil
	case "custom":
		return NormCustom, nil
	default:
		return 0, errors.ConfigInvalid("sample_norm must be rank, log_rank, log or custom, got " + s)
	}
}

// SampleEnrichment is one (sample, gene set) single-sample result.
// ES is the sum of the running-sum profile; NES rescales by the ES range
// across the whole batch.
type SampleEnrichment struct {
	Sample string  `json:"sample"`
	Term   string  `json:"term"`
	ES     float64 `json:"es"`
	NES    float64 `json:"nes"`
}
