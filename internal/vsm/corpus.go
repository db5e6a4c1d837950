package vsm

import (
	"fmt"

	"essaysim/internal/linalg"
)

// Corpus is a set of count vectors sharing one Vocabulary.
// Row i corresponds to the i-th document passed to Vectorize.
type Corpus struct {
	vocab   *Vocabulary
	vectors []Vector
}

// Vectorize builds the vocabulary as the union of document terms in
// first-seen order, walking documents in the given order, then counts
// every document over it.
func Vectorize(docs ...Document) *Corpus {
	vocab := NewVocabulary()
	for _, d := range docs {
		for _, term := range d.terms {
			vocab.Add(term)
		}
	}

	vectors := make([]Vector, len(docs))
	for i, d := range docs {
		values := make([]float64, vocab.Len())
		for term, count := range d.counts {
			values[vocab.index[term]] = float64(count)
		}
		vectors[i] = Vector{vocab: vocab, values: values}
	}
	return &Corpus{vocab: vocab, vectors: vectors}
}

func (c *Corpus) Vocabulary() *Vocabulary {
	return c.vocab
}

func (c *Corpus) Len() int {
	return len(c.vectors)
}

func (c *Corpus) Vector(i int) Vector {
	return c.vectors[i]
}

func (c *Corpus) Vectors() []Vector {
	out := make([]Vector, len(c.vectors))
	copy(out, c.vectors)
	return out
}

// Matrix returns the documents × terms matrix of the corpus.
func (c *Corpus) Matrix() (*linalg.Matrix, error) {
	return ToMatrix(c.vectors)
}

// ToMatrix stacks vectors as rows. All vectors must share a vocabulary.
func ToMatrix(vectors []Vector) (*linalg.Matrix, error) {
	if len(vectors) == 0 || vectors[0].vocab.Len() == 0 {
		return nil, ErrEmptyVocabulary
	}
	vocab := vectors[0].vocab
	rows := make([][]float64, len(vectors))
	for i, v := range vectors {
		if v.vocab != vocab {
			return nil, fmt.Errorf("row %d: %w", i, ErrVocabularyMismatch)
		}
		rows[i] = v.values
	}
	return linalg.FromRows(rows)
}

// FromMatrix re-binds the rows of m to vocab.
func FromMatrix(vocab *Vocabulary, m *linalg.Matrix) ([]Vector, error) {
	rows, cols := m.Dims()
	if cols != vocab.Len() {
		return nil, fmt.Errorf("matrix has %d columns for %d terms: %w", cols, vocab.Len(), linalg.ErrDimensionMismatch)
	}
	out := make([]Vector, rows)
	for i := range out {
		out[i] = Vector{vocab: vocab, values: m.Row(i)}
	}
	return out, nil
}
