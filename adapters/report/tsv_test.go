package report

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TenSixteenBio/GSEApy/domain/gsea"
)

func sampleRecords() []gsea.EnrichmentRecord {
	return []gsea.EnrichmentRecord{
		{
			Term:        "UP",
			ES:          0.654321,
			NES:         2.1,
			Pval:        0.001,
			FDR:         0.0125,
			MatchedSize: 12,
			GeneSetSize: 15,
			LeadGenes:   []string{"g1", "g2", "g3"},
		},
		{
			Term:        "FLAT",
			ES:          0.1,
			NES:         math.NaN(),
			Pval:        math.NaN(),
			FDR:         math.NaN(),
			MatchedSize: 3,
			GeneSetSize: 3,
		},
	}
}

func TestWriteReport_TSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.tsv")
	err := NewTSVWriter().WriteReport(path, gsea.RunSummary{ID: "run-1"}, sampleRecords())
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(raw), "\n"), "\n")
	require.Len(t, lines, 3)

	assert.Equal(t,
		"Term\tES\tNES\tNOM p-val\tFDR q-val\tMatched_size\tGene_set_size\tLead_genes",
		lines[0])

	up := strings.Split(lines[1], "\t")
	assert.Equal(t, "UP", up[0])
	assert.Equal(t, "0.654321", up[1])
	assert.Equal(t, "2.1", up[2])
	assert.Equal(t, "12", up[5])
	assert.Equal(t, "g1;g2;g3", up[7])

	flat := strings.Split(lines[2], "\t")
	assert.Equal(t, "NaN", flat[2])
	assert.Equal(t, "NaN", flat[3])
	assert.Equal(t, "NaN", flat[4])
	assert.Equal(t, "", flat[7])
}

func TestWriteReport_PreservesRecordOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.tsv")
	records := sampleRecords()
	records[0], records[1] = records[1], records[0]

	require.NoError(t, NewTSVWriter().WriteReport(path, gsea.RunSummary{}, records))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(string(raw), "\n")
	assert.True(t, strings.HasPrefix(lines[1], "FLAT\t"))
	assert.True(t, strings.HasPrefix(lines[2], "UP\t"))
}
