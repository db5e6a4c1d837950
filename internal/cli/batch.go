package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"essaysim/internal/adapter/fs"
	"essaysim/internal/adapter/store"
	"essaysim/internal/domain"
	"essaysim/internal/usecase"
)

var (
	batchWorkers int
	batchJSON    bool
	batchRecord  bool
	batchStats   string
	batchQuiet   bool
)

var batchCmd = &cobra.Command{
	Use:   "batch REFERENCE DIR",
	Short: "Grade every response file in a directory",
	Long: `Grade all response files below DIR against the reference file. Files
are selected with the batch.includes and batch.excludes glob patterns and
graded in parallel.

Examples:
  essaysim batch ref.txt answers/
  essaysim batch ref.txt answers/ --workers 8 --json > grades.json`,
	Args: cobra.ExactArgs(2),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)
	batchCmd.Flags().IntVarP(&batchWorkers, "workers", "w", 0, "parallel workers (default from config)")
	batchCmd.Flags().BoolVar(&batchJSON, "json", false, "output as JSON")
	batchCmd.Flags().BoolVar(&batchRecord, "record", false, "record attempts in the history (default from config)")
	batchCmd.Flags().StringVar(&batchStats, "stats", "", "comma separated text statistics to report")
	batchCmd.Flags().BoolVarP(&batchQuiet, "quiet", "q", false, "hide the progress bar")
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	reference, err := readText(cmd.InOrStdin(), args[0], false)
	if err != nil {
		return fmt.Errorf("failed to read reference: %w", err)
	}

	dir, err := filepath.Abs(args[1])
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("path does not exist: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", dir)
	}

	items, err := statItems(batchStats)
	if err != nil {
		return err
	}

	reg, err := newRegistry(cfg)
	if err != nil {
		return err
	}

	record := batchRecord || cfg.Store.Record
	var st *store.BoltStore
	if record {
		st, err = openStore(cfg, GetRootDir())
		if err != nil {
			return err
		}
		defer st.Close()
	}

	grader, err := newGrader(cfg, reg, st)
	if err != nil {
		return err
	}

	workers := cfg.Batch.Workers
	if batchWorkers > 0 {
		workers = batchWorkers
	}
	batchUC := usecase.NewBatchUseCase(grader, fs.NewWalker(cfg.Batch.Includes, cfg.Batch.Excludes), fs.Reader{}, workers)

	files, err := batchUC.Collect(dir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no response files found in %s", dir)
	}

	var progress func(done, total int)
	if !batchQuiet && !batchJSON {
		progress = newProgress(cmd, len(files))
	}

	res, err := batchUC.Run(cmd.Context(), usecase.BatchRequest{
		Language:  cfg.Grading.Language,
		Reference: reference,
		StatItems: items,
		Record:    record,
	}, files, progress)
	if err != nil {
		return fmt.Errorf("batch grading failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if batchJSON {
		output, _ := json.MarshalIndent(res, "", "  ")
		fmt.Fprintln(out, string(output))
		return nil
	}

	for _, it := range res.Items {
		if it.Grade == nil {
			fmt.Fprintf(out, "%-32s error: %s\n", it.Path, it.Error)
			continue
		}
		fmt.Fprintf(out, "%-32s score %.4f  %-9s credit %.2f\n", it.Path, it.Grade.Score, it.Grade.Band, it.Grade.Fraction)
	}

	fmt.Fprintf(out, "\nBatch complete:\n")
	fmt.Fprintf(out, "  Graded:     %d\n", res.Summary.Count)
	fmt.Fprintf(out, "  Failed:     %d\n", res.Failed)
	fmt.Fprintf(out, "  Mean score: %.4f\n", res.Summary.MeanScore)
	for _, b := range domain.Bands {
		fmt.Fprintf(out, "  %-11s %d\n", string(b)+":", res.Summary.Bands[b])
	}
	return nil
}

// newProgress returns a callback that drives a progress bar with an ETA.
func newProgress(cmd *cobra.Command, total int) func(done, total int) {
	var (
		mu    sync.Mutex
		start = time.Now()
	)
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(cmd.ErrOrStderr()),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowBytes(false),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetDescription("[cyan]Grading[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(cmd.ErrOrStderr())
		}),
	)

	return func(done, total int) {
		mu.Lock()
		defer mu.Unlock()

		bar.Set(done)
		elapsed := time.Since(start)
		rate := float64(done) / elapsed.Seconds()
		if rate > 0 && done < total {
			eta := time.Duration(float64(total-done)/rate) * time.Second
			bar.Describe(fmt.Sprintf("[cyan]Grading[reset] ETA: %s", formatDuration(eta)))
		}
	}
}
