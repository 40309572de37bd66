package app

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TenSixteenBio/GSEApy/domain/gsea"
)

func TestAverageRanks(t *testing.T) {
	assert.Equal(t, []float64{1, 2, 3}, averageRanks([]float64{10, 20, 30}))
	// two-way tie at the bottom shares rank 1.5
	assert.Equal(t, []float64{1.5, 1.5, 3}, averageRanks([]float64{5, 5, 9}))
	// all tied
	assert.Equal(t, []float64{2, 2, 2}, averageRanks([]float64{7, 7, 7}))
}

func TestNormalizeSample(t *testing.T) {
	values := []float64{3, 1, 2}

	t.Run("rank", func(t *testing.T) {
		out := normalizeSample(values, gsea.NormRank)
		assert.InDelta(t, 10000.0*3.0/3.0, out[0], 1e-9)
		assert.InDelta(t, 10000.0*1.0/3.0, out[1], 1e-9)
	})

	t.Run("log_rank", func(t *testing.T) {
		out := normalizeSample(values, gsea.NormLogRank)
		assert.InDelta(t, math.Log(10000.0+math.E), out[0], 1e-9)
	})

	t.Run("log clamps below one", func(t *testing.T) {
		out := normalizeSample([]float64{0.5, 4}, gsea.NormLog)
		assert.InDelta(t, math.Log(1+math.E), out[0], 1e-9)
		assert.InDelta(t, math.Log(4+math.E), out[1], 1e-9)
	})

	t.Run("custom passes through", func(t *testing.T) {
		out := normalizeSample(values, gsea.NormCustom)
		assert.Equal(t, values, out)
	})
}

func ssgseaMatrix() gsea.ExpressionMatrix {
	// sample "hot" expresses the set genes highest, sample "cold" lowest
	return gsea.ExpressionMatrix{
		Genes:   []string{"g1", "g2", "g3", "g4", "g5", "g6"},
		Samples: []string{"hot", "cold"},
		Values: [][]float64{
			{100, 1},
			{90, 2},
			{80, 3},
			{10, 50},
			{9, 60},
			{8, 70},
		},
	}
}

func TestSingleSampleRun_OrdersSetGenesBySample(t *testing.T) {
	matrix := ssgseaMatrix()
	collection := gsea.GeneSetCollection{
		"TOP3": {Term: "TOP3", Members: []string{"g1", "g2", "g3"}},
	}

	svc := NewSingleSampleService()
	results, err := svc.Run(context.Background(), matrix, collection, SingleSampleOptions{
		SampleNorm: gsea.NormRank,
		Weight:     0.25,
		MinSize:    1,
		MaxSize:    10,
		Threads:    2,
	})
	require.NoError(t, err)
	require.Len(t, results, 2)

	byName := make(map[string]gsea.SampleEnrichment)
	for _, r := range results {
		byName[r.Sample] = r
	}
	hot, cold := byName["hot"], byName["cold"]
	assert.Greater(t, hot.ES, cold.ES, "set genes lead in the hot sample")
	assert.Greater(t, hot.NES, cold.NES)

	// batch rescaling divides by the ES spread, so the extremes map to a
	// unit-wide interval
	assert.InDelta(t, 1.0, hot.NES-cold.NES, 1e-12)
}

func TestSingleSampleRun_DeterministicAcrossThreads(t *testing.T) {
	matrix := ssgseaMatrix()
	collection := gsea.GeneSetCollection{
		"TOP3": {Term: "TOP3", Members: []string{"g1", "g2", "g3"}},
		"TAIL": {Term: "TAIL", Members: []string{"g4", "g5", "g6"}},
	}

	run := func(threads int) []gsea.SampleEnrichment {
		results, err := NewSingleSampleService().Run(context.Background(), matrix, collection, SingleSampleOptions{
			SampleNorm: gsea.NormRank,
			Weight:     0.25,
			MinSize:    1,
			MaxSize:    10,
			Threads:    threads,
		})
		require.NoError(t, err)
		return results
	}

	base := run(1)
	for _, threads := range []int{2, 4} {
		got := run(threads)
		require.Equal(t, len(base), len(got))
		for i := range base {
			assert.Equal(t, base[i].Sample, got[i].Sample)
			assert.Equal(t, base[i].Term, got[i].Term)
			assert.Equal(t, math.Float64bits(base[i].ES), math.Float64bits(got[i].ES))
		}
	}
}

func TestSingleSampleOptions_Validate(t *testing.T) {
	valid := SingleSampleOptions{SampleNorm: gsea.NormRank, Weight: 0.25, MinSize: 1, MaxSize: 10, Threads: 1}
	require.NoError(t, valid.Validate())

	bad := valid
	bad.Weight = -1
	assert.Error(t, bad.Validate())

	bad = valid
	bad.Threads = 0
	assert.Error(t, bad.Validate())

	bad = valid
	bad.MinSize = 20
	assert.Error(t, bad.Validate())
}
