package vsm

import (
	"fmt"
	"math"
)

// TFIDF holds inverse document frequencies fitted on one corpus.
type TFIDF struct {
	vocab *Vocabulary
	idf   []float64
}

// FitTFIDF computes idf[j] = 1 + log10((m+1)/(df[j]+1)) where m is the
// number of documents and df[j] the number with a positive count in column j.
func FitTFIDF(c *Corpus) *TFIDF {
	n := c.vocab.Len()
	df := make([]int, n)
	for _, v := range c.vectors {
		for j, x := range v.values {
			if x > 0 {
				df[j]++
			}
		}
	}

	m := float64(len(c.vectors))
	idf := make([]float64, n)
	for j := range idf {
		idf[j] = 1 + math.Log10((m+1)/float64(df[j]+1))
	}
	return &TFIDF{vocab: c.vocab, idf: idf}
}

// IDF returns the fitted weights in vocabulary order.
func (t *TFIDF) IDF() []float64 {
	out := make([]float64, len(t.idf))
	copy(out, t.idf)
	return out
}

// Transform multiplies every vector by the idf weights. Inputs are not
// modified. Transforming an already transformed vector applies idf again.
func (t *TFIDF) Transform(vectors ...Vector) ([]Vector, error) {
	out := make([]Vector, len(vectors))
	for i, v := range vectors {
		if v.vocab != t.vocab {
			return nil, fmt.Errorf("tfidf transform row %d: %w", i, ErrVocabularyMismatch)
		}
		values := make([]float64, len(v.values))
		for j, x := range v.values {
			values[j] = x * t.idf[j]
		}
		out[i] = Vector{vocab: v.vocab, values: values}
	}
	return out, nil
}
