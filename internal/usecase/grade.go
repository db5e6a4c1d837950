package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"

	"essaysim/internal/adapter/analyzer"
	"essaysim/internal/adapter/cache"
	"essaysim/internal/domain"
	"essaysim/internal/linalg"
	"essaysim/internal/logger"
	"essaysim/internal/metrics"
	"essaysim/internal/port"
	"essaysim/internal/similarity"
	"essaysim/internal/textstats"
)

var (
	ErrInvalidThresholds = errors.New("invalid thresholds")
	ErrNoResponses       = errors.New("no responses to grade")
)

// Thresholds split scores into correctness bands.
type Thresholds struct {
	Upper float64 `json:"upper"`
	Lower float64 `json:"lower"`
}

// Validate requires 0 <= Lower <= Upper <= 1.
func (t Thresholds) Validate() error {
	if !(t.Lower >= 0 && t.Lower <= t.Upper && t.Upper <= 1) {
		return fmt.Errorf("%w: need 0 <= lower (%v) <= upper (%v) <= 1", ErrInvalidThresholds, t.Lower, t.Upper)
	}
	return nil
}

// Band returns correct at or above Upper, incorrect below Lower and
// partial in between.
func (t Thresholds) Band(score float64) domain.Band {
	switch {
	case score >= t.Upper:
		return domain.BandCorrect
	case score < t.Lower:
		return domain.BandIncorrect
	default:
		return domain.BandPartial
	}
}

// Fraction is the credit awarded for a band: full, none, or the score
// itself for partial answers.
func Fraction(band domain.Band, score float64) float64 {
	switch band {
	case domain.BandCorrect:
		return 1
	case domain.BandIncorrect:
		return 0
	default:
		return score
	}
}

// Response is one text to grade. Source names where it came from, e.g. a
// file path, and may be empty.
type Response struct {
	Source string `json:"source,omitempty"`
	Text   string `json:"text"`
}

type GradeRequest struct {
	Language   string
	Reference  string
	Responses  []Response
	Thresholds *Thresholds // nil selects the configured thresholds
	StatItems  []textstats.Item
	// Joint scores all responses in one corpus instead of one corpus per
	// response. Joint scores depend on the other responses and are not cached.
	Joint  bool
	Record bool
}

type Grade struct {
	Source    string            `json:"source,omitempty"`
	Score     float64           `json:"score"`
	Band      domain.Band       `json:"band"`
	Fraction  float64           `json:"fraction"`
	Stats     []textstats.Value `json:"stats,omitempty"`
	AttemptID string            `json:"attempt_id,omitempty"`
	Cached    bool              `json:"cached,omitempty"`
}

type GradeResult struct {
	Language   string     `json:"language"`
	Thresholds Thresholds `json:"thresholds"`
	Grades     []Grade    `json:"grades"`
}

// GradeUseCase grades responses against a reference text.
type GradeUseCase struct {
	registry        *analyzer.Registry
	defaultLanguage string
	thresholds      Thresholds
	pipelineOpts    []similarity.Option
	cache           port.ScoreCache
	store           port.AttemptStore
}

type GradeOption func(*GradeUseCase)

// WithScoreCache enables score memoization for pairwise grading.
func WithScoreCache(c port.ScoreCache) GradeOption {
	return func(u *GradeUseCase) { u.cache = c }
}

// WithAttemptStore enables recording of attempts.
func WithAttemptStore(s port.AttemptStore) GradeOption {
	return func(u *GradeUseCase) { u.store = s }
}

// WithPipelineOptions sets the stage options used for every pipeline.
func WithPipelineOptions(opts ...similarity.Option) GradeOption {
	return func(u *GradeUseCase) { u.pipelineOpts = append(u.pipelineOpts, opts...) }
}

// WithDefaultLanguage sets the language used when a request names none.
func WithDefaultLanguage(code string) GradeOption {
	return func(u *GradeUseCase) { u.defaultLanguage = code }
}

// NewGradeUseCase creates a grade use case. thresholds are used for
// requests that carry none and must be valid.
func NewGradeUseCase(registry *analyzer.Registry, thresholds Thresholds, opts ...GradeOption) (*GradeUseCase, error) {
	if err := thresholds.Validate(); err != nil {
		return nil, err
	}
	u := &GradeUseCase{
		registry:        registry,
		defaultLanguage: "en",
		thresholds:      thresholds,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u, nil
}

// Thresholds returns the configured thresholds.
func (u *GradeUseCase) Thresholds() Thresholds {
	return u.thresholds
}

// Pipeline resolves code, or the default language when code is empty.
func (u *GradeUseCase) Pipeline(ctx context.Context, code string) (*similarity.Pipeline, error) {
	if code == "" {
		code = u.defaultLanguage
	}
	opts := append([]similarity.Option{}, u.pipelineOpts...)
	opts = append(opts, similarity.WithLogger(logger.FromContext(ctx)))
	return similarity.ForLanguage(u.registry, code, opts...)
}

// Grade scores, bands and optionally records every response in req.
// Recording happens after all responses are scored and stores either all
// attempts or none.
func (u *GradeUseCase) Grade(ctx context.Context, req GradeRequest) (*GradeResult, error) {
	res, err := u.grade(ctx, req)
	if err != nil {
		metrics.GradeErrorsTotal.WithLabelValues(ErrorKind(err)).Inc()
		logger.FromContext(ctx).Warn("grade failed",
			zap.String("language", req.Language),
			zap.Int("responses", len(req.Responses)),
			zap.Error(err),
		)
	}
	return res, err
}

func (u *GradeUseCase) grade(ctx context.Context, req GradeRequest) (*GradeResult, error) {
	log := logger.FromContext(ctx)

	th := u.thresholds
	if req.Thresholds != nil {
		th = *req.Thresholds
	}
	if err := th.Validate(); err != nil {
		return nil, err
	}

	p, err := u.Pipeline(ctx, req.Language)
	if err != nil {
		return nil, err
	}
	code := p.Language().Code

	if len(req.Responses) == 0 {
		return nil, ErrNoResponses
	}

	start := time.Now()
	scores, cached, err := u.score(ctx, p, req)
	if err != nil {
		return nil, err
	}
	metrics.ScoreDuration.WithLabelValues(code).Observe(time.Since(start).Seconds())

	result := &GradeResult{
		Language:   code,
		Thresholds: th,
		Grades:     make([]Grade, len(req.Responses)),
	}
	refHash := fmt.Sprintf("%016x", xxhash.Sum64String(req.Reference))

	record := req.Record && u.store != nil
	var attempts []*domain.Attempt
	for i, r := range req.Responses {
		g := Grade{
			Source: r.Source,
			Score:  scores[i],
			Band:   th.Band(scores[i]),
			Cached: cached[i],
		}
		g.Fraction = Fraction(g.Band, g.Score)
		if len(req.StatItems) > 0 {
			g.Stats = textstats.Compute(r.Text, req.StatItems)
		}
		if record {
			attempts = append(attempts, &domain.Attempt{
				Language:      code,
				ReferenceHash: refHash,
				Source:        r.Source,
				Response:      r.Text,
				Score:         g.Score,
				Band:          g.Band,
				Fraction:      g.Fraction,
				Stats:         toDomainStats(g.Stats),
			})
		}
		result.Grades[i] = g
	}

	if record {
		if err := u.store.PutAttempts(attempts); err != nil {
			return nil, fmt.Errorf("record attempts: %w", err)
		}
		for i, a := range attempts {
			result.Grades[i].AttemptID = a.ID
		}
	}

	for _, g := range result.Grades {
		metrics.GradesTotal.WithLabelValues(code, string(g.Band)).Inc()
		log.Debug("graded response",
			zap.String("language", code),
			zap.String("source", g.Source),
			zap.Float64("score", g.Score),
			zap.String("band", string(g.Band)),
			zap.Bool("cached", g.Cached),
			zap.String("attempt_id", g.AttemptID),
		)
	}

	return result, nil
}

func (u *GradeUseCase) score(ctx context.Context, p *similarity.Pipeline, req GradeRequest) ([]float64, []bool, error) {
	scores := make([]float64, len(req.Responses))
	cached := make([]bool, len(req.Responses))

	if req.Joint {
		texts := make([]string, len(req.Responses))
		for i, r := range req.Responses {
			texts[i] = r.Text
		}
		a, err := p.Inspect(req.Reference, texts...)
		if err != nil {
			return nil, nil, err
		}
		observeRank(a)
		return a.Scores, cached, nil
	}

	for i, r := range req.Responses {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		var key uint64
		if u.cache != nil {
			key = cache.Key(p.Fingerprint(), req.Reference, r.Text)
			if s, ok := u.cache.Get(key); ok {
				metrics.ScoreCacheTotal.WithLabelValues("hit").Inc()
				scores[i], cached[i] = s, true
				continue
			}
			metrics.ScoreCacheTotal.WithLabelValues("miss").Inc()
		}

		a, err := p.Inspect(req.Reference, r.Text)
		if err != nil {
			return nil, nil, err
		}
		observeRank(a)
		scores[i] = a.Scores[0]
		if u.cache != nil {
			u.cache.Put(key, scores[i])
		}
	}
	return scores, cached, nil
}

func observeRank(a *similarity.Analysis) {
	if len(a.SingularValues) > 0 {
		metrics.TruncationRank.Observe(float64(a.TruncationRank))
	}
}

func toDomainStats(values []textstats.Value) []domain.Stat {
	if len(values) == 0 {
		return nil
	}
	out := make([]domain.Stat, len(values))
	for i, v := range values {
		out[i] = domain.Stat{Name: string(v.Item), Value: v.Value}
	}
	return out
}

// ErrorKind classifies err for metrics and logs.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, analyzer.ErrUnknownLanguage):
		return "unknown_language"
	case errors.Is(err, ErrInvalidThresholds):
		return "invalid_thresholds"
	case errors.Is(err, ErrNoResponses):
		return "no_responses"
	case errors.Is(err, textstats.ErrUnknownItem):
		return "unknown_stat_item"
	case errors.Is(err, similarity.ErrVocabularyTooLarge):
		return "vocabulary_too_large"
	case errors.Is(err, linalg.ErrNonConvergence):
		return "non_convergence"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "internal"
	}
}
