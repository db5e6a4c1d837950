package lsa

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"essaysim/internal/linalg"
)

func mustMatrix(t *testing.T, rows [][]float64) *linalg.Matrix {
	t.Helper()
	m, err := linalg.FromRows(rows)
	require.NoError(t, err)
	return m
}

func TestTruncationRank(t *testing.T) {
	// Singular values 4, 3, 2, 1: cumulative shares 0.4, 0.7, 0.9, 1.0.
	a := mustMatrix(t, [][]float64{
		{4, 0, 0, 0},
		{0, 3, 0, 0},
		{0, 0, 2, 0},
		{0, 0, 0, 1},
	})
	r, err := NewReducer(a)
	require.NoError(t, err)

	tests := []struct {
		q    float64
		want int
	}{
		{0.1, 1},
		{0.35, 1},
		{0.5, 2},
		{0.65, 2},
		{0.85, 3},
		{1.0, 4},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, r.TruncationRank(tt.q), "q=%v", tt.q)
	}
}

func TestTruncationRankMonotonic(t *testing.T) {
	a := mustMatrix(t, [][]float64{
		{1, 2, 0, 1, 0},
		{0, 1, 3, 0, 1},
		{2, 0, 1, 1, 0},
	})
	r, err := NewReducer(a)
	require.NoError(t, err)

	prev := 0
	for q := 0.05; q <= 1.0; q += 0.05 {
		k := r.TruncationRank(q)
		assert.GreaterOrEqual(t, k, prev, "q=%v", q)
		prev = k
	}
	assert.Equal(t, r.Rank(), r.TruncationRank(1.0))
}

func TestTruncationRankZeroMatrix(t *testing.T) {
	r, err := NewReducer(linalg.New(2, 3))
	require.NoError(t, err)
	assert.Zero(t, r.Rank())
	assert.Zero(t, r.TruncationRank(DefaultEnergy))

	out, err := r.Transform()
	require.NoError(t, err)
	assert.True(t, linalg.Equal(linalg.New(2, 3), linalg.Round(out, 9)))
}

func TestTransformFullRankReconstructs(t *testing.T) {
	a := mustMatrix(t, [][]float64{{1, 0, 2}, {0, 3, 1}})
	r, err := NewReducer(a, WithEnergy(1.0))
	require.NoError(t, err)

	out, err := r.Transform()
	require.NoError(t, err)
	assert.True(t, linalg.Equal(linalg.Round(a, 9), linalg.Round(out, 9)), "got\n%s", out)
}

func TestTransformDropsWeakDirection(t *testing.T) {
	a := mustMatrix(t, [][]float64{{10, 0}, {0, 0.5}})
	r, err := NewReducer(a)
	require.NoError(t, err)
	require.Equal(t, 1, r.TruncationRank(DefaultEnergy))

	out, err := r.Transform()
	require.NoError(t, err)
	assert.InDelta(t, 10.0, out.At(0, 0), 1e-12)
	assert.InDelta(t, 0.0, out.At(1, 1), 1e-12)
}

func TestInvalidEnergyFallsBack(t *testing.T) {
	a := mustMatrix(t, [][]float64{{1}})
	for _, q := range []float64{0, -1, 1.5, math.NaN()} {
		r, err := NewReducer(a, WithEnergy(q))
		require.NoError(t, err)
		assert.Equal(t, DefaultEnergy, r.Energy())
	}
}

func TestNonConvergencePropagates(t *testing.T) {
	a := mustMatrix(t, [][]float64{
		{4, 1, 0, 2},
		{1, 3, 1, 0},
		{0, 1, 2, 1},
		{2, 0, 1, 5},
	})
	_, err := NewReducer(a, WithMaxIterations(1))
	assert.ErrorIs(t, err, linalg.ErrNonConvergence)
}
