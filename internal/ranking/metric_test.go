package ranking

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TenSixteenBio/GSEApy/domain/gsea"
	"github.com/TenSixteenBio/GSEApy/internal/errors"
)

// fixture: pos samples {1,2,3} (mean 2, sample std 1),
// neg samples {4,6,8} (mean 6, sample std 2)
func fixtureMatrix() (gsea.ExpressionMatrix, gsea.Phenotype) {
	matrix := gsea.ExpressionMatrix{
		Genes:   []string{"g1", "g2"},
		Samples: []string{"s1", "s2", "s3", "s4", "s5", "s6"},
		Values: [][]float64{
			{1, 2, 3, 4, 6, 8},
			{10, 11, 12, 1, 2, 3},
		},
	}
	pheno := gsea.Phenotype{
		Pos:        "a",
		Neg:        "b",
		Assignment: []bool{true, true, true, false, false, false},
	}
	return matrix, pheno
}

func TestParseMetric(t *testing.T) {
	cases := map[string]Metric{
		"signal_to_noise":       SignalToNoise,
		"s2n":                   SignalToNoise,
		"ABS_Signal_To_Noise":   AbsSignalToNoise,
		"abs_s2n":               AbsSignalToNoise,
		"t_test":                TTest,
		"ratio_of_classes":      RatioOfClasses,
		"diff_of_classes":       DiffOfClasses,
		"log2_ratio_of_classes": Log2RatioOfClasses,
	}
	for name, want := range cases {
		got, err := ParseMetric(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	_, err := ParseMetric("pearson")
	assert.True(t, errors.HasCode(err, errors.CodeUnsupportedMetric))
}

func TestScoreGenes_Formulas(t *testing.T) {
	matrix, pheno := fixtureMatrix()

	t.Run("signal_to_noise", func(t *testing.T) {
		scores, err := ScoreGenes(matrix.Values, pheno.Assignment, SignalToNoise)
		require.NoError(t, err)
		assert.InDelta(t, (2.0-6.0)/(1.0+2.0), scores[0], 1e-12)
	})

	t.Run("abs_signal_to_noise", func(t *testing.T) {
		scores, err := ScoreGenes(matrix.Values, pheno.Assignment, AbsSignalToNoise)
		require.NoError(t, err)
		assert.InDelta(t, 4.0/3.0, scores[0], 1e-12)
	})

	t.Run("t_test", func(t *testing.T) {
		scores, err := ScoreGenes(matrix.Values, pheno.Assignment, TTest)
		require.NoError(t, err)
		want := (2.0 - 6.0) / math.Sqrt(1.0/3.0+4.0/3.0)
		assert.InDelta(t, want, scores[0], 1e-12)
	})

	t.Run("ratio_of_classes", func(t *testing.T) {
		scores, err := ScoreGenes(matrix.Values, pheno.Assignment, RatioOfClasses)
		require.NoError(t, err)
		assert.InDelta(t, 2.0/6.0, scores[0], 1e-12)
	})

	t.Run("diff_of_classes", func(t *testing.T) {
		scores, err := ScoreGenes(matrix.Values, pheno.Assignment, DiffOfClasses)
		require.NoError(t, err)
		assert.InDelta(t, -4.0, scores[0], 1e-12)
	})

	t.Run("log2_ratio_of_classes", func(t *testing.T) {
		scores, err := ScoreGenes(matrix.Values, pheno.Assignment, Log2RatioOfClasses)
		require.NoError(t, err)
		assert.InDelta(t, math.Log2(2.0/6.0), scores[0], 1e-12)
	})
}

func TestRank_OrderAndDirection(t *testing.T) {
	matrix, pheno := fixtureMatrix()

	ranked, err := Rank(matrix, pheno, SignalToNoise, false)
	require.NoError(t, err)
	// g2 is strongly up in the positive group, g1 is down
	assert.Equal(t, "g2", ranked[0].Gene)
	assert.Equal(t, "g1", ranked[1].Gene)

	ascending, err := Rank(matrix, pheno, SignalToNoise, true)
	require.NoError(t, err)
	assert.Equal(t, "g1", ascending[0].Gene)
}

func TestRank_InsufficientGroupSize(t *testing.T) {
	matrix, _ := fixtureMatrix()
	pheno := gsea.Phenotype{
		Pos:        "a",
		Neg:        "b",
		Assignment: []bool{true, true, false, false, false, false},
	}
	_, err := Rank(matrix, pheno, SignalToNoise, false)
	assert.True(t, errors.HasCode(err, errors.CodeInsufficientGroupSize), "got %v", err)
}

func TestScoreGenes_DegenerateInput(t *testing.T) {
	// constant gene: zero std in both groups
	values := [][]float64{{5, 5, 5, 5, 5, 5}}
	assignment := []bool{true, true, true, false, false, false}

	_, err := ScoreGenes(values, assignment, SignalToNoise)
	assert.True(t, errors.HasCode(err, errors.CodeDegenerateInput), "got %v", err)

	// diff_of_classes has no denominator and must accept the same gene
	scores, err := ScoreGenes(values, assignment, DiffOfClasses)
	require.NoError(t, err)
	assert.Equal(t, 0.0, scores[0])
}

func TestOrder_StableTies(t *testing.T) {
	scores := []float64{1.0, 3.0, 1.0, 2.0}

	desc := Order(scores, false)
	assert.Equal(t, []int{1, 3, 0, 2}, desc, "tied genes keep input order")

	asc := Order(scores, true)
	assert.Equal(t, []int{0, 2, 3, 1}, asc)
}
