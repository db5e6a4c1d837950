// Package lsa truncates a singular value decomposition to the leading
// singular values that carry most of its energy and reconstructs the
// denoised term-document matrix.
package lsa

import (
	"fmt"

	"essaysim/internal/linalg"
)

// DefaultEnergy is the share of singular-value mass kept by Transform.
const DefaultEnergy = 0.9

// Reducer performs latent semantic analysis over one term-document matrix.
type Reducer struct {
	svd    *linalg.SVD
	energy float64
}

// Option configures a Reducer.
type Option func(*reducerConfig)

type reducerConfig struct {
	energy  float64
	svdOpts []linalg.Option
}

// WithEnergy sets the energy threshold used by Transform. Values outside (0, 1]
// fall back to DefaultEnergy.
func WithEnergy(q float64) Option {
	return func(c *reducerConfig) {
		c.energy = q
	}
}

// WithMaxIterations forwards an iteration budget to the SVD.
func WithMaxIterations(n int) Option {
	return func(c *reducerConfig) {
		c.svdOpts = append(c.svdOpts, linalg.WithMaxIterations(n))
	}
}

// NewReducer decomposes a and returns a Reducer for it.
func NewReducer(a *linalg.Matrix, opts ...Option) (*Reducer, error) {
	cfg := reducerConfig{energy: DefaultEnergy}
	for _, opt := range opts {
		opt(&cfg)
	}
	if !(cfg.energy > 0 && cfg.energy <= 1) {
		cfg.energy = DefaultEnergy
	}

	svd, err := linalg.Decompose(a, cfg.svdOpts...)
	if err != nil {
		return nil, fmt.Errorf("lsa decompose: %w", err)
	}
	return &Reducer{svd: svd, energy: cfg.energy}, nil
}

// SVD returns the underlying decomposition.
func (r *Reducer) SVD() *linalg.SVD {
	return r.svd
}

// Energy returns the configured energy threshold.
func (r *Reducer) Energy() float64 {
	return r.energy
}

// Rank returns the numerical rank of the decomposed matrix.
func (r *Reducer) Rank() int {
	return r.svd.Rank()
}

// TruncationRank returns the smallest k such that the first k singular values
// hold at least q of the mass of the first Rank() values. k never exceeds
// Rank(); a matrix without any significant singular value yields 0.
func (r *Reducer) TruncationRank(q float64) int {
	rank := r.svd.Rank()
	values := r.svd.Values()

	var total float64
	for _, v := range values[:rank] {
		total += v
	}
	if rank == 0 || total == 0 {
		return 0
	}

	var cum float64
	for k := 1; k <= rank; k++ {
		cum += values[k-1]
		if cum/total >= q {
			return k
		}
	}
	return rank
}

// Transform zeroes singular values past TruncationRank(Energy()) and returns
// U·S'·Vᵗ over the original columns.
func (r *Reducer) Transform() (*linalg.Matrix, error) {
	return r.svd.Reconstruct(r.TruncationRank(r.energy))
}
