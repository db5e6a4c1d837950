// Package similarity scores how close candidate texts are to a reference text.
//
// Texts are tokenized and cleaned for a language, vectorized over a shared
// vocabulary, reweighted by TF-IDF, denoised by LSA and compared by cosine
// similarity against the reference row.
package similarity

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"essaysim/internal/adapter/analyzer"
	"essaysim/internal/linalg"
	"essaysim/internal/lsa"
	"essaysim/internal/vsm"
)

// DefaultMaxVocabulary bounds the number of distinct terms in one corpus.
// The SVD allocates square factors over the vocabulary.
const DefaultMaxVocabulary = 5000

// ErrVocabularyTooLarge is returned when a corpus has more distinct terms
// than the pipeline accepts.
var ErrVocabularyTooLarge = errors.New("similarity: vocabulary too large")

// Pipeline holds one language and the stage settings. It keeps no state
// between calls and is safe for concurrent use.
type Pipeline struct {
	lang          *analyzer.Language
	useTFIDF      bool
	useLSA        bool
	energy        float64
	maxIterations int
	maxVocabulary int
	log           *zap.Logger
}

type Option func(*Pipeline)

// WithTFIDF toggles TF-IDF reweighting.
func WithTFIDF(enabled bool) Option {
	return func(p *Pipeline) { p.useTFIDF = enabled }
}

// WithLSA toggles the LSA reduction.
func WithLSA(enabled bool) Option {
	return func(p *Pipeline) { p.useLSA = enabled }
}

// WithEnergy sets the LSA energy threshold.
func WithEnergy(q float64) Option {
	return func(p *Pipeline) { p.energy = q }
}

// WithMaxIterations caps QR steps per deflation; n <= 0 selects the default.
func WithMaxIterations(n int) Option {
	return func(p *Pipeline) { p.maxIterations = n }
}

// WithMaxVocabulary caps the corpus vocabulary; n <= 0 disables the cap.
func WithMaxVocabulary(n int) Option {
	return func(p *Pipeline) { p.maxVocabulary = n }
}

func WithLogger(l *zap.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.log = l
		}
	}
}

// New creates a Pipeline for lang with TF-IDF and LSA enabled.
func New(lang *analyzer.Language, opts ...Option) *Pipeline {
	p := &Pipeline{
		lang:          lang,
		useTFIDF:      true,
		useLSA:        true,
		energy:        lsa.DefaultEnergy,
		maxVocabulary: DefaultMaxVocabulary,
		log:           zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ForLanguage resolves code in reg and creates a Pipeline for it.
// Unknown codes fail here, before any text is processed.
func ForLanguage(reg *analyzer.Registry, code string, opts ...Option) (*Pipeline, error) {
	lang, err := reg.Lookup(code)
	if err != nil {
		return nil, err
	}
	return New(lang, opts...), nil
}

func (p *Pipeline) Language() *analyzer.Language {
	return p.lang
}

// Fingerprint identifies the language and stage settings. Two pipelines
// with equal fingerprints score identically.
func (p *Pipeline) Fingerprint() string {
	return fmt.Sprintf("%s|tfidf=%t|lsa=%t|energy=%g|iter=%d",
		p.lang.Code, p.useTFIDF, p.useLSA, p.energy, p.maxIterations)
}

// Analysis is the full trace of one scoring run.
type Analysis struct {
	Language       string     `json:"language"`
	Terms          [][]string `json:"terms"`
	Vocabulary     []string   `json:"vocabulary"`
	IDF            []float64  `json:"idf,omitempty"`
	SingularValues []float64  `json:"singular_values,omitempty"`
	Rank           int        `json:"rank"`
	TruncationRank int        `json:"truncation_rank"`
	Scores         []float64  `json:"scores"`
}

// Score returns the similarity of candidate to reference.
func (p *Pipeline) Score(reference, candidate string) (float64, error) {
	scores, err := p.ScoreCorpus(reference, candidate)
	if err != nil {
		return 0, err
	}
	return scores[0], nil
}

// ScoreCorpus scores every candidate against reference within one shared
// corpus. Scores are in candidate order.
func (p *Pipeline) ScoreCorpus(reference string, candidates ...string) ([]float64, error) {
	a, err := p.Inspect(reference, candidates...)
	if err != nil {
		return nil, err
	}
	return a.Scores, nil
}

// Inspect scores like ScoreCorpus and also returns the intermediate artifacts.
func (p *Pipeline) Inspect(reference string, candidates ...string) (*Analysis, error) {
	texts := append([]string{reference}, candidates...)
	a := &Analysis{
		Language: p.lang.Code,
		Terms:    make([][]string, len(texts)),
		Scores:   make([]float64, len(candidates)),
	}

	docs := make([]vsm.Document, len(texts))
	for i, text := range texts {
		a.Terms[i] = p.lang.Terms(text)
		docs[i] = vsm.NewDocument(a.Terms[i])
	}

	corpus := vsm.Vectorize(docs...)
	a.Vocabulary = corpus.Vocabulary().Terms()
	if p.maxVocabulary > 0 && len(a.Vocabulary) > p.maxVocabulary {
		return nil, fmt.Errorf("%w: %d distinct terms, limit %d",
			ErrVocabularyTooLarge, len(a.Vocabulary), p.maxVocabulary)
	}
	vectors := corpus.Vectors()

	if p.useTFIDF {
		tf := vsm.FitTFIDF(corpus)
		a.IDF = tf.IDF()
		weighted, err := tf.Transform(vectors...)
		if err != nil {
			return nil, err
		}
		vectors = weighted
	}

	m, err := vsm.ToMatrix(vectors)
	if errors.Is(err, vsm.ErrEmptyVocabulary) {
		p.log.Debug("empty vocabulary, scoring zero",
			zap.String("language", p.lang.Code),
			zap.Int("documents", len(texts)),
		)
		return a, nil
	}
	if err != nil {
		return nil, err
	}

	// Documents without terms score 0 even if the reconstruction leaves
	// rounding noise in their rows.
	blank := make([]bool, len(texts))
	for i := range texts {
		blank[i] = len(a.Terms[i]) == 0
	}

	if p.useLSA {
		m, err = p.reduce(m, a)
		if err != nil {
			return nil, err
		}
	}

	ref := m.Row(0)
	for i := range candidates {
		if blank[0] || blank[i+1] {
			continue
		}
		s, err := vsm.CosineValues(ref, m.Row(i+1))
		if err != nil {
			return nil, err
		}
		a.Scores[i] = s
	}

	p.log.Debug("scored corpus",
		zap.String("language", p.lang.Code),
		zap.Int("vocabulary", len(a.Vocabulary)),
		zap.Int("rank", a.Rank),
		zap.Int("truncation_rank", a.TruncationRank),
		zap.Float64s("scores", a.Scores),
	)
	return a, nil
}

func (p *Pipeline) reduce(m *linalg.Matrix, a *Analysis) (*linalg.Matrix, error) {
	r, err := lsa.NewReducer(m, lsa.WithEnergy(p.energy), lsa.WithMaxIterations(p.maxIterations))
	if err != nil {
		return nil, fmt.Errorf("reduce %d terms: %w", len(a.Vocabulary), err)
	}
	a.SingularValues = r.SVD().Values()
	a.Rank = r.Rank()
	a.TruncationRank = r.TruncationRank(r.Energy())
	return r.Transform()
}
