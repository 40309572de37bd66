package report

import (
	"fmt"
	"math"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/TenSixteenBio/GSEApy/domain/gsea"
	"github.com/TenSixteenBio/GSEApy/internal/errors"
	"github.com/TenSixteenBio/GSEApy/ports"
)

// ExcelWriter writes the run report as an XLSX workbook with a summary
// sheet and a results sheet
type ExcelWriter struct{}

// NewExcelWriter creates an XLSX report writer
func NewExcelWriter() ports.ReportWriter {
	return &ExcelWriter{}
}

// WriteReport writes the workbook; NaN statistics become empty cells so the
// numeric columns stay filterable
func (w *ExcelWriter) WriteReport(path string, summary gsea.RunSummary, records []gsea.EnrichmentRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	const resultSheet = "Results"
	const summarySheet = "Run"

	f.SetSheetName(f.GetSheetName(0), resultSheet)
	if err := writeHeader(f, resultSheet); err != nil {
		return err
	}
	for i, r := range records {
		row := i + 2
		cells := []interface{}{
			r.Term,
			numericCell(r.ES),
			numericCell(r.NES),
			numericCell(r.Pval),
			numericCell(r.FDR),
			r.MatchedSize,
			r.GeneSetSize,
			strings.Join(r.LeadGenes, ";"),
		}
		for col, v := range cells {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(resultSheet, cell, v); err != nil {
				return errors.Wrapf(err, "writing record %s", r.Term)
			}
		}
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return errors.Wrap(err, "creating summary sheet")
	}
	summaryRows := [][]interface{}{
		{"Run ID", summary.ID},
		{"Module", summary.Module},
		{"Metric", summary.Metric},
		{"Permutation mode", summary.PermutationMode.String()},
		{"Permutations", summary.PermutationNum},
		{"Seed", fmt.Sprintf("%d", summary.Seed)},
		{"Weight", summary.Weight},
		{"Min size", summary.MinSize},
		{"Max size", summary.MaxSize},
		{"Genes ranked", summary.GeneCount},
		{"Gene sets tested", summary.SetCount},
		{"Started", summary.StartedAt.Format("2006-01-02 15:04:05")},
		{"Finished", summary.FinishedAt.Format("2006-01-02 15:04:05")},
	}
	for i, pair := range summaryRows {
		keyCell, _ := excelize.CoordinatesToCellName(1, i+1)
		valCell, _ := excelize.CoordinatesToCellName(2, i+1)
		if err := f.SetCellValue(summarySheet, keyCell, pair[0]); err != nil {
			return errors.Wrap(err, "writing summary sheet")
		}
		if err := f.SetCellValue(summarySheet, valCell, pair[1]); err != nil {
			return errors.Wrap(err, "writing summary sheet")
		}
	}

	if err := f.SaveAs(path); err != nil {
		return errors.Wrapf(err, "saving workbook %s", path)
	}
	return nil
}

func writeHeader(f *excelize.File, sheet string) error {
	for col, name := range reportHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, name); err != nil {
			return errors.Wrap(err, "writing results header")
		}
	}
	return nil
}

func numericCell(v float64) interface{} {
	if math.IsNaN(v) {
		return ""
	}
	return v
}
