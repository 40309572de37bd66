package ports

import (
	"github.com/TenSixteenBio/GSEApy/domain/gsea"
)

// ReportWriter serializes a finished run for downstream consumers.
// Record order must be preserved exactly as the aggregator emitted it.
type ReportWriter interface {
	WriteReport(path string, summary gsea.RunSummary, records []gsea.EnrichmentRecord) error
}
