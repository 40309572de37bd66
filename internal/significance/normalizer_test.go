package significance

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_PositiveScore(t *testing.T) {
	batch := []Scored{
		{Term: "A", ES: 0.5, Nulls: []float64{0.25, 0.25, -0.25, -0.25}},
	}
	out := Normalize(batch)
	require.Len(t, out, 1)

	// mean of the positive null subset is 0.25
	assert.InDelta(t, 2.0, out[0].NES, 1e-12)
	// no positive null reaches 0.5
	assert.Equal(t, 0.0, out[0].Pval)
	// pooled null NES are [1, 1]; none reaches NES=2
	assert.Equal(t, 0.0, out[0].FDR)
}

func TestNormalize_NegativeScore(t *testing.T) {
	batch := []Scored{
		{Term: "A", ES: -0.5, Nulls: []float64{0.25, 0.25, -0.25, -0.25}},
	}
	out := Normalize(batch)

	assert.InDelta(t, -2.0, out[0].NES, 1e-12)
	assert.Equal(t, 0.0, out[0].Pval)
	assert.Equal(t, 0.0, out[0].FDR)
}

func TestNormalize_NominalPFraction(t *testing.T) {
	batch := []Scored{
		{Term: "A", ES: 0.3, Nulls: []float64{0.1, 0.3, 0.6, -0.2}},
	}
	out := Normalize(batch)
	// two of three positive nulls are >= 0.3
	assert.InDelta(t, 2.0/3.0, out[0].Pval, 1e-12)
}

func TestNormalize_EmptyNullSubsetIsNaN(t *testing.T) {
	t.Run("no positive nulls for positive score", func(t *testing.T) {
		out := Normalize([]Scored{
			{Term: "A", ES: 0.5, Nulls: []float64{-0.1, -0.2, -0.3}},
		})
		assert.True(t, math.IsNaN(out[0].NES))
		assert.True(t, math.IsNaN(out[0].Pval))
		assert.True(t, math.IsNaN(out[0].FDR))
	})

	t.Run("zero permutations", func(t *testing.T) {
		out := Normalize([]Scored{
			{Term: "A", ES: 0.5, Nulls: nil},
		})
		assert.True(t, math.IsNaN(out[0].NES))
		assert.True(t, math.IsNaN(out[0].Pval))
		assert.True(t, math.IsNaN(out[0].FDR))
		// the observed statistic itself survives
		assert.Equal(t, 0.5, out[0].ES)
	})
}

func TestNormalize_FDRClampsToOne(t *testing.T) {
	// a weak set whose NES sits below the entire null pool
	batch := []Scored{
		{Term: "weak", ES: 0.1, Nulls: []float64{0.2, 0.2, 0.2}},
	}
	out := Normalize(batch)
	// numerator: all 3 pooled null NES (1.0) >= 0.5 -> 1.0
	// denominator: 1 observed NES >= 0.5 of 1 -> 1.0
	assert.Equal(t, 1.0, out[0].FDR)
}

func TestNormalize_FDRWithinBounds(t *testing.T) {
	batch := []Scored{
		{Term: "A", ES: 0.6, Nulls: []float64{0.2, 0.4, -0.3, 0.1, -0.1}},
		{Term: "B", ES: -0.4, Nulls: []float64{0.3, -0.2, -0.5, 0.2, -0.1}},
		{Term: "C", ES: 0.2, Nulls: []float64{0.2, 0.3, 0.1, -0.4, 0.5}},
	}
	out := Normalize(batch)
	for _, o := range out {
		require.False(t, math.IsNaN(o.FDR), "term %s", o.Term)
		assert.GreaterOrEqual(t, o.FDR, 0.0, "term %s", o.Term)
		assert.LessOrEqual(t, o.FDR, 1.0, "term %s", o.Term)
		assert.GreaterOrEqual(t, o.Pval, 0.0, "term %s", o.Term)
		assert.LessOrEqual(t, o.Pval, 1.0, "term %s", o.Term)
	}
}

func TestNormalize_PreservesInputOrder(t *testing.T) {
	batch := []Scored{
		{Term: "Z", ES: 0.4, Nulls: []float64{0.2, -0.2}},
		{Term: "A", ES: -0.4, Nulls: []float64{0.2, -0.2}},
	}
	out := Normalize(batch)
	assert.Equal(t, "Z", out[0].Term)
	assert.Equal(t, "A", out[1].Term)
}
