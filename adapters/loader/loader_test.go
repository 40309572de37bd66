package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TenSixteenBio/GSEApy/internal/errors"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadExpression_GCT(t *testing.T) {
	content := "#1.2\n" +
		"3\t2\n" +
		"NAME\tDescription\ts1\ts2\n" +
		"g1\tna\t1.5\t2.5\n" +
		"g2\tna\t3.0\t4.0\n" +
		"g3\tna\t5.0\t6.0\n"
	path := writeFile(t, "data.gct", content)

	matrix, err := NewFileReader().ReadExpression(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"s1", "s2"}, matrix.Samples)
	assert.Equal(t, []string{"g1", "g2", "g3"}, matrix.Genes)
	assert.Equal(t, []float64{1.5, 2.5}, matrix.Values[0])
}

func TestReadExpression_TSVCleanup(t *testing.T) {
	content := "# generated upstream\n" +
		"gene\ts1\ts2\ts3\n" +
		"g1\t1\t2\t3\n" +
		"g1\t9\t9\t9\n" + // duplicate keeps first row
		"g2\t4\tNA\t6\n" + // missing value filled with 0
		"g3\tNA\tNA\tNA\n" // all-missing row dropped
	path := writeFile(t, "data.txt", content)

	matrix, err := NewFileReader().ReadExpression(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"g1", "g2"}, matrix.Genes)
	assert.Equal(t, []float64{1, 2, 3}, matrix.Values[0])
	assert.Equal(t, []float64{4, 0, 6}, matrix.Values[1])
}

func TestReadExpression_MismatchedColumns(t *testing.T) {
	content := "gene\ts1\ts2\n" +
		"g1\t1\n"
	path := writeFile(t, "bad.txt", content)

	_, err := NewFileReader().ReadExpression(path)
	assert.True(t, errors.HasCode(err, errors.CodeParseError), "got %v", err)
}

func TestReadClasses(t *testing.T) {
	t.Run("named labels", func(t *testing.T) {
		path := writeFile(t, "pheno.cls", "6 2 1\n# tumor normal\ntumor tumor tumor normal normal normal\n")
		labels, err := NewFileReader().ReadClasses(path)
		require.NoError(t, err)
		assert.Equal(t, []string{"tumor", "tumor", "tumor", "normal", "normal", "normal"}, labels)
	})

	t.Run("numeric labels renamed from header", func(t *testing.T) {
		path := writeFile(t, "pheno.cls", "4 2 1\n# A B\n0 0 1 1\n")
		labels, err := NewFileReader().ReadClasses(path)
		require.NoError(t, err)
		assert.Equal(t, []string{"A", "A", "B", "B"}, labels)
	})

	t.Run("count mismatch rejected", func(t *testing.T) {
		path := writeFile(t, "pheno.cls", "5 2 1\n# A B\n0 0 1 1\n")
		_, err := NewFileReader().ReadClasses(path)
		assert.True(t, errors.HasCode(err, errors.CodeParseError))
	})
}

func TestReadGeneSets(t *testing.T) {
	content := "SET_A\tdesc\tg1\tg2\tg3\tg2\n" + // duplicate member collapsed
		"SET_B\tdesc\tg4\n" +
		"SET_A\tdesc\tg9\tg8\n" // later definition wins
	path := writeFile(t, "sets.gmt", content)

	collection, err := NewGMTReader().ReadGeneSets(path)
	require.NoError(t, err)
	require.Len(t, collection, 2)
	assert.Equal(t, []string{"g9", "g8"}, collection["SET_A"].Members)
	assert.Equal(t, []string{"g4"}, collection["SET_B"].Members)
}

func TestReadGeneSets_Malformed(t *testing.T) {
	path := writeFile(t, "sets.gmt", "SET_A\tdesc\n")
	_, err := NewGMTReader().ReadGeneSets(path)
	assert.True(t, errors.HasCode(err, errors.CodeParseError))
}

func TestReadRanking(t *testing.T) {
	content := "# comment\n" +
		"g1\t5.0\n" +
		"g2\t-2.0\n" +
		"g2\t99\n" + // duplicate keeps first value
		"g3\tNA\n" + // missing becomes 0
		"g4\tInf\n" + // clamped to finite max
		"g5\t-Inf\n" // clamped to finite min
	path := writeFile(t, "scores.rnk", content)

	ranked, err := NewRNKReader().ReadRanking(path)
	require.NoError(t, err)
	require.Len(t, ranked, 5)

	byGene := make(map[string]float64)
	for _, g := range ranked {
		byGene[g.Gene] = g.Score
	}
	assert.Equal(t, 5.0, byGene["g1"])
	assert.Equal(t, -2.0, byGene["g2"])
	assert.Equal(t, 0.0, byGene["g3"])
	assert.Equal(t, 5.0, byGene["g4"])
	assert.Equal(t, -2.0, byGene["g5"])
}

func TestPrepare(t *testing.T) {
	matrix, err := NewFileReader().ReadExpression(writeFile(t, "data.txt",
		"gene\ts1\ts2\ts3\ts4\n"+
			"steady\t5\t5\t5\t5\n"+ // zero variance in both groups, dropped
			"moving\t1\t2\t3\t4\n"))
	require.NoError(t, err)

	labels := []string{"a", "a", "b", "b"}
	out := Prepare(matrix, labels)
	require.Equal(t, []string{"moving"}, out.Genes)
	assert.InDelta(t, 1+1e-8, out.Values[0][0], 1e-15)
	assert.InDelta(t, 4+1e-8, out.Values[0][3], 1e-15)
}
