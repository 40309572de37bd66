package report

import (
	"encoding/csv"
	"os"

	"github.com/TenSixteenBio/GSEApy/domain/gsea"
	"github.com/TenSixteenBio/GSEApy/internal/errors"
)

// WriteSampleEnrichment writes single-sample results as a tab-separated
// table, one row per (sample, term) pair in batch order
func WriteSampleEnrichment(path string, results []gsea.SampleEnrichment) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating report %s", path)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	cw.Comma = '\t'

	if err := cw.Write([]string{"Sample", "Term", "ES", "NES"}); err != nil {
		return errors.Wrap(err, "writing report header")
	}
	for _, r := range results {
		row := []string{r.Sample, r.Term, formatFloat(r.ES), formatFloat(r.NES)}
		if err := cw.Write(row); err != nil {
			return errors.Wrapf(err, "writing row for %s/%s", r.Sample, r.Term)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.Wrapf(err, "flushing report %s", path)
	}
	return nil
}
