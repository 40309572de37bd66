// Package report serializes finished enrichment runs for downstream
// consumers. The record order emitted by the aggregator is preserved
// verbatim.
package report

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/TenSixteenBio/GSEApy/domain/gsea"
	"github.com/TenSixteenBio/GSEApy/internal/errors"
	"github.com/TenSixteenBio/GSEApy/ports"
)

var reportHeader = []string{
	"Term", "ES", "NES", "NOM p-val", "FDR q-val",
	"Matched_size", "Gene_set_size", "Lead_genes",
}

// TSVWriter writes the tab-separated run report
type TSVWriter struct{}

// NewTSVWriter creates a TSV report writer
func NewTSVWriter() ports.ReportWriter {
	return &TSVWriter{}
}

// WriteReport writes one row per record plus a header
func (w *TSVWriter) WriteReport(path string, summary gsea.RunSummary, records []gsea.EnrichmentRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating report %s", path)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	cw.Comma = '\t'

	if err := cw.Write(reportHeader); err != nil {
		return errors.Wrap(err, "writing report header")
	}
	for _, r := range records {
		if err := cw.Write(recordRow(r)); err != nil {
			return errors.Wrapf(err, "writing record %s", r.Term)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.Wrapf(err, "flushing report %s", path)
	}
	return nil
}

func recordRow(r gsea.EnrichmentRecord) []string {
	return []string{
		r.Term,
		formatFloat(r.ES),
		formatFloat(r.NES),
		formatFloat(r.Pval),
		formatFloat(r.FDR),
		strconv.Itoa(r.MatchedSize),
		strconv.Itoa(r.GeneSetSize),
		strings.Join(r.LeadGenes, ";"),
	}
}

func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return fmt.Sprintf("%.6g", v)
}
