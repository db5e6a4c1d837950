// Package vsm builds aligned term vectors over a shared vocabulary.
package vsm

import (
	"errors"
	"fmt"

	"essaysim/internal/linalg"
)

var (
	// ErrEmptyVocabulary is returned when no document contributes a term.
	ErrEmptyVocabulary = errors.New("vsm: empty vocabulary")
	// ErrVocabularyMismatch is returned when vectors from different vocabularies are combined.
	ErrVocabularyMismatch = errors.New("vsm: vocabulary mismatch")
)

// Vocabulary is an ordered set of distinct terms with a term→column lookup.
type Vocabulary struct {
	terms []string
	index map[string]int
}

func NewVocabulary() *Vocabulary {
	return &Vocabulary{index: make(map[string]int)}
}

// Add inserts term if absent and returns its column.
func (v *Vocabulary) Add(term string) int {
	if i, ok := v.index[term]; ok {
		return i
	}
	v.index[term] = len(v.terms)
	v.terms = append(v.terms, term)
	return len(v.terms) - 1
}

func (v *Vocabulary) Index(term string) (int, bool) {
	i, ok := v.index[term]
	return i, ok
}

func (v *Vocabulary) Len() int {
	return len(v.terms)
}

// Terms returns the terms in column order.
func (v *Vocabulary) Terms() []string {
	out := make([]string, len(v.terms))
	copy(out, v.terms)
	return out
}

// Document is an ordered term→count mapping; order is first occurrence.
type Document struct {
	terms  []string
	counts map[string]int
}

// NewDocument counts tokens in order of first occurrence.
func NewDocument(tokens []string) Document {
	d := Document{counts: make(map[string]int, len(tokens))}
	for _, tok := range tokens {
		if _, ok := d.counts[tok]; !ok {
			d.terms = append(d.terms, tok)
		}
		d.counts[tok]++
	}
	return d
}

func (d Document) Terms() []string {
	out := make([]string, len(d.terms))
	copy(out, d.terms)
	return out
}

func (d Document) Count(term string) int {
	return d.counts[term]
}

// Len returns the number of tokens the document was built from.
func (d Document) Len() int {
	var n int
	for _, c := range d.counts {
		n += c
	}
	return n
}

// Vector is a positional sequence of weights bound to a Vocabulary.
type Vector struct {
	vocab  *Vocabulary
	values []float64
}

// NewVector binds values to vocab. len(values) must equal vocab.Len().
func NewVector(vocab *Vocabulary, values []float64) (Vector, error) {
	if len(values) != vocab.Len() {
		return Vector{}, fmt.Errorf("vector of %d values for %d terms: %w", len(values), vocab.Len(), linalg.ErrDimensionMismatch)
	}
	out := make([]float64, len(values))
	copy(out, values)
	return Vector{vocab: vocab, values: out}, nil
}

func (v Vector) Vocabulary() *Vocabulary {
	return v.vocab
}

func (v Vector) Len() int {
	return len(v.values)
}

func (v Vector) At(i int) float64 {
	return v.values[i]
}

// Values returns a copy of the weights.
func (v Vector) Values() []float64 {
	out := make([]float64, len(v.values))
	copy(out, v.values)
	return out
}

// Weights returns the weights keyed by term.
func (v Vector) Weights() map[string]float64 {
	out := make(map[string]float64, len(v.values))
	for i, term := range v.vocab.terms {
		out[term] = v.values[i]
	}
	return out
}
