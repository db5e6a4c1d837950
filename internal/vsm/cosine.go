package vsm

import (
	"fmt"
	"math"

	"essaysim/internal/linalg"
)

// Cosine returns the cosine similarity of two vectors built from the same
// vocabulary. It returns 0 when either vector has zero magnitude.
func Cosine(a, b Vector) (float64, error) {
	if a.vocab != b.vocab {
		return 0, ErrVocabularyMismatch
	}
	return CosineValues(a.values, b.values)
}

// CosineValues is Cosine over raw positional values. The result is clamped
// to [-1, 1] and is exactly 1 for identical inputs.
func CosineValues(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("cosine of %d and %d values: %w", len(a), len(b), linalg.ErrDimensionMismatch)
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0, nil
	}
	den := math.Sqrt(normA * normB)
	if math.IsInf(den, 0) || den == 0 {
		den = math.Sqrt(normA) * math.Sqrt(normB)
	}
	return math.Max(-1, math.Min(1, dot/den)), nil
}
