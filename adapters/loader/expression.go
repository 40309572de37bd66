// Package loader parses the tabular file formats consumed by enrichment
// runs: GCT/TSV expression tables, CLS phenotype labels, GMT gene-set
// collections and RNK ranked lists. All data-shape cleanup lives here so the
// engines only ever see finite, deduplicated input.
package loader

import (
	"bufio"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/TenSixteenBio/GSEApy/domain/gsea"
	"github.com/TenSixteenBio/GSEApy/internal"
	"github.com/TenSixteenBio/GSEApy/internal/errors"
	"github.com/TenSixteenBio/GSEApy/ports"
)

// FileReader reads expression datasets and phenotype labels from disk
type FileReader struct {
	log *internal.Logger
}

// NewFileReader creates a file-backed dataset reader
func NewFileReader() ports.DatasetReader {
	return &FileReader{log: internal.NewLogger("Loader")}
}

// ReadExpression parses a genes-by-samples table. GCT files skip the two
// header lines and drop the Description column; plain TSV files skip
// comment lines. Duplicated gene ids keep their first row, missing or
// unparseable values become 0, and all-missing rows are dropped.
func (r *FileReader) ReadExpression(path string) (gsea.ExpressionMatrix, error) {
	lines, err := readLines(path)
	if err != nil {
		return gsea.ExpressionMatrix{}, err
	}

	isGCT := strings.HasSuffix(strings.ToLower(path), ".gct")
	if isGCT {
		if len(lines) < 3 {
			return gsea.ExpressionMatrix{}, errors.ParseError("GCT file " + path + " is truncated")
		}
		lines = lines[2:]
	} else {
		filtered := lines[:0]
		for _, l := range lines {
			if !strings.HasPrefix(l, "#") {
				filtered = append(filtered, l)
			}
		}
		lines = filtered
	}
	if len(lines) < 2 {
		return gsea.ExpressionMatrix{}, errors.ParseError("expression table " + path + " has no data rows")
	}

	header := strings.Split(lines[0], "\t")
	if len(header) < 2 {
		return gsea.ExpressionMatrix{}, errors.ParseError("expression table " + path + " has no sample columns")
	}

	// GCT always carries a Description column; plain tables may too
	skipCols := 1
	if len(header) > 2 && (isGCT || strings.EqualFold(header[1], "description")) {
		skipCols = 2
	}
	samples := header[skipCols:]

	matrix := gsea.ExpressionMatrix{Samples: samples}
	seen := make(map[string]struct{})
	dropped, duplicated, filled := 0, 0, 0

	for _, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != len(header) {
			return gsea.ExpressionMatrix{}, errors.ParseError(
				"expression row for " + fields[0] + " has a mismatched column count")
		}
		gene := strings.TrimSpace(fields[0])
		if _, dup := seen[gene]; dup {
			duplicated++
			continue
		}
		seen[gene] = struct{}{}

		row := make([]float64, len(samples))
		missing := 0
		for i, f := range fields[skipCols:] {
			v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
			if err != nil || math.IsNaN(v) {
				missing++
				v = math.NaN()
			}
			row[i] = v
		}
		if missing == len(row) {
			dropped++
			continue
		}
		if missing > 0 {
			filled += missing
			for i, v := range row {
				if math.IsNaN(v) {
					row[i] = 0
				}
			}
		}
		matrix.Genes = append(matrix.Genes, gene)
		matrix.Values = append(matrix.Values, row)
	}

	if duplicated > 0 {
		r.log.Warn("dropped %d duplicated gene rows, keeping first values", duplicated)
	}
	if dropped > 0 {
		r.log.Warn("dropped %d all-missing gene rows", dropped)
	}
	if filled > 0 {
		r.log.Warn("input data contained %d missing values, filled with 0", filled)
	}
	return matrix, nil
}

// ReadClasses parses a CLS phenotype file into per-sample labels
func (r *FileReader) ReadClasses(path string) ([]string, error) {
	lines, err := readLines(path)
	if err != nil {
		return nil, err
	}
	if len(lines) < 3 {
		return nil, errors.ParseError("CLS file " + path + " must have 3 lines")
	}

	counts := strings.Fields(lines[0])
	if len(counts) != 3 {
		return nil, errors.ParseError("CLS header must be: <samples> <classes> 1")
	}
	nSamples, err := strconv.Atoi(counts[0])
	if err != nil {
		return nil, errors.ParseError("CLS sample count is not a number")
	}

	labels := strings.Fields(lines[2])
	if len(labels) != nSamples {
		return nil, errors.ParseError("CLS label line does not match the declared sample count")
	}

	// the second line may rename numeric labels: "# pos neg"
	names := strings.Fields(strings.TrimPrefix(lines[1], "#"))
	if len(names) == 2 {
		rename := map[string]string{"0": names[0], "1": names[1]}
		for i, l := range labels {
			if mapped, ok := rename[l]; ok {
				labels[i] = mapped
			}
		}
	}
	return labels, nil
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ParseError(err.Error()), "opening %s", path)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)
	for scanner.Scan() {
		lines = append(lines, strings.TrimRight(scanner.Text(), "\r\n"))
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(errors.ParseError(err.Error()), "reading %s", path)
	}
	return lines, nil
}
