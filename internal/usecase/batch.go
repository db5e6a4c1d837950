package usecase

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"essaysim/internal/domain"
	"essaysim/internal/logger"
	"essaysim/internal/port"
	"essaysim/internal/textstats"
)

// BatchUseCase grades a directory of response files against one reference.
type BatchUseCase struct {
	grader  *GradeUseCase
	walker  port.FileWalker
	reader  port.FileReader
	workers int
}

func NewBatchUseCase(grader *GradeUseCase, walker port.FileWalker, reader port.FileReader, workers int) *BatchUseCase {
	if workers < 1 {
		workers = 1
	}
	return &BatchUseCase{
		grader:  grader,
		walker:  walker,
		reader:  reader,
		workers: workers,
	}
}

type BatchRequest struct {
	Language   string
	Reference  string
	Thresholds *Thresholds
	StatItems  []textstats.Item
	Record     bool
}

// BatchItem is the outcome for one file. Error is set when the file could
// not be read or graded; the batch continues past it.
type BatchItem struct {
	Path  string `json:"path"`
	Grade *Grade `json:"grade,omitempty"`
	Error string `json:"error,omitempty"`
}

type BatchResult struct {
	Language string         `json:"language"`
	Items    []BatchItem    `json:"items"`
	Summary  domain.Summary `json:"summary"`
	Failed   int            `json:"failed"`
}

// Collect lists the response files under root.
func (u *BatchUseCase) Collect(root string) ([]port.FileInfo, error) {
	files, err := u.walker.Walk(root)
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}
	return files, nil
}

// Run grades files in parallel with at most workers in flight. Items keep
// the order of files. progress, when set, is called once per finished file.
func (u *BatchUseCase) Run(ctx context.Context, req BatchRequest, files []port.FileInfo, progress func(done, total int)) (*BatchResult, error) {
	log := logger.FromContext(ctx)

	// Fail fast on request level errors before touching any file.
	th := u.grader.Thresholds()
	if req.Thresholds != nil {
		th = *req.Thresholds
	}
	if err := th.Validate(); err != nil {
		return nil, err
	}
	p, err := u.grader.Pipeline(ctx, req.Language)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, ErrNoResponses
	}

	result := &BatchResult{
		Language: p.Language().Code,
		Items:    make([]BatchItem, len(files)),
	}

	var (
		mu   sync.Mutex
		done int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(u.workers)

	for i, f := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			item := BatchItem{Path: f.Rel}
			if item.Path == "" {
				item.Path = f.Path
			}

			text, err := u.reader.ReadFile(f.Path)
			if err == nil {
				var res *GradeResult
				res, err = u.grader.Grade(gctx, GradeRequest{
					Language:   result.Language,
					Reference:  req.Reference,
					Responses:  []Response{{Source: item.Path, Text: text}},
					Thresholds: &th,
					StatItems:  req.StatItems,
					Record:     req.Record,
				})
				if err == nil {
					item.Grade = &res.Grades[0]
				}
			}
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				log.Warn("batch item failed", zap.String("path", item.Path), zap.Error(err))
				item.Error = err.Error()
			}
			result.Items[i] = item

			if progress != nil {
				mu.Lock()
				done++
				progress(done, len(files))
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result.Summary, result.Failed = summarize(result.Items)
	log.Info("batch graded",
		zap.String("language", result.Language),
		zap.Int("files", len(files)),
		zap.Int("failed", result.Failed),
		zap.Float64("mean_score", result.Summary.MeanScore),
	)
	return result, nil
}

func summarize(items []BatchItem) (domain.Summary, int) {
	sum := domain.NewSummary()
	failed := 0
	for _, it := range items {
		if it.Grade == nil {
			failed++
			continue
		}
		sum.Add(it.Grade.Band, it.Grade.Score)
	}
	return sum, failed
}
