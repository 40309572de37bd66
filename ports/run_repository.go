package ports

import (
	"context"

	"github.com/TenSixteenBio/GSEApy/domain/gsea"
)

// RunRepository persists completed enrichment runs and their records
type RunRepository interface {
	SaveRun(ctx context.Context, summary gsea.RunSummary, records []gsea.EnrichmentRecord) error
	GetRun(ctx context.Context, runID string) (*gsea.RunSummary, error)
	ListRuns(ctx context.Context, limit int) ([]gsea.RunSummary, error)
	GetRecords(ctx context.Context, runID string) ([]gsea.EnrichmentRecord, error)
}
