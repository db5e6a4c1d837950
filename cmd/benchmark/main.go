package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"strings"
	"time"

	"essaysim/config"
	"essaysim/internal/adapter/analyzer"
	"essaysim/internal/adapter/fs"
	"essaysim/internal/similarity"
)

type variant struct {
	name string
	opts []similarity.Option
}

func main() {
	dir := flag.String("dir", ".", "Project directory holding the config")
	refPath := flag.String("ref", "", "Reference text file (default: built-in sample)")
	answers := flag.String("answers", "", "Directory of response files (default: synthetic responses)")
	n := flag.Int("n", 50, "Number of synthetic responses")
	runs := flag.Int("runs", 3, "Timed runs per variant")
	seed := flag.Int64("seed", 1, "Seed for synthetic responses")
	flag.Parse()

	cfg, err := config.LoadFromDir(*dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	reg, err := analyzer.DefaultRegistry()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading languages: %v\n", err)
		os.Exit(1)
	}

	reference := sampleReference
	if *refPath != "" {
		reference, err = fs.ReadFile(*refPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading reference: %v\n", err)
			os.Exit(1)
		}
	}

	var responses []string
	if *answers != "" {
		responses, err = readAnswers(*answers, cfg)
	} else {
		responses = synthesize(reference, *n, rand.New(rand.NewSource(*seed)))
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading responses: %v\n", err)
		os.Exit(1)
	}
	if len(responses) == 0 {
		fmt.Fprintln(os.Stderr, "No responses to score")
		os.Exit(1)
	}

	variants := []variant{
		{"counts", []similarity.Option{similarity.WithTFIDF(false), similarity.WithLSA(false)}},
		{"tfidf", []similarity.Option{similarity.WithTFIDF(true), similarity.WithLSA(false)}},
		{"tfidf+lsa", []similarity.Option{similarity.WithTFIDF(true), similarity.WithLSA(true), similarity.WithEnergy(cfg.Pipeline.Energy)}},
	}

	fmt.Println("SIMILARITY PIPELINE BENCHMARK")
	fmt.Println(strings.Repeat("=", 70))
	fmt.Printf("Language:  %s\n", cfg.Grading.Language)
	fmt.Printf("Responses: %d\n", len(responses))
	fmt.Printf("Runs:      %d\n", *runs)
	fmt.Println()

	for _, v := range variants {
		p, err := similarity.ForLanguage(reg, cfg.Grading.Language, v.opts...)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Variant: %s\n", v.name)
		fmt.Println(strings.Repeat("-", 70))

		pairwise, scores, err := timeRuns(*runs, func() ([]float64, error) {
			out := make([]float64, len(responses))
			for i, r := range responses {
				s, err := p.Score(reference, r)
				if err != nil {
					return nil, err
				}
				out[i] = s
			}
			return out, nil
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Scoring error: %v\n", err)
			os.Exit(1)
		}
		joint, _, err := timeRuns(*runs, func() ([]float64, error) {
			return p.ScoreCorpus(reference, responses...)
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Scoring error: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("  Pairwise: %v total, %v per response\n", pairwise, pairwise/time.Duration(len(responses)))
		fmt.Printf("  Joint:    %v total\n", joint)
		report(scores, cfg)
		fmt.Println()
	}
}

// timeRuns returns the fastest of runs executions of fn and its last result.
func timeRuns(runs int, fn func() ([]float64, error)) (time.Duration, []float64, error) {
	best := time.Duration(0)
	var scores []float64
	for i := 0; i < max(runs, 1); i++ {
		start := time.Now()
		s, err := fn()
		if err != nil {
			return 0, nil, err
		}
		if d := time.Since(start); best == 0 || d < best {
			best = d
		}
		scores = s
	}
	return best, scores, nil
}

func report(scores []float64, cfg *config.Config) {
	sorted := append([]float64(nil), scores...)
	sort.Float64s(sorted)

	total := 0.0
	correct, partial := 0, 0
	for _, s := range scores {
		total += s
		switch {
		case s >= cfg.Grading.UpperCorrectness:
			correct++
		case s >= cfg.Grading.LowerCorrectness:
			partial++
		}
	}

	fmt.Printf("  Mean score:   %.3f\n", total/float64(len(scores)))
	fmt.Printf("  Median score: %.3f\n", sorted[len(sorted)/2])
	fmt.Printf("  Bands:        correct %d, partial %d, incorrect %d\n",
		correct, partial, len(scores)-correct-partial)
}

func readAnswers(dir string, cfg *config.Config) ([]string, error) {
	files, err := fs.NewWalker(cfg.Batch.Includes, cfg.Batch.Excludes).Walk(dir)
	if err != nil {
		return nil, err
	}
	texts := make([]string, 0, len(files))
	for _, f := range files {
		text, err := fs.ReadFile(f.Path)
		if err != nil {
			return nil, err
		}
		texts = append(texts, text)
	}
	return texts, nil
}

// synthesize derives responses from reference by dropping, repeating and
// replacing words, so scores spread across all bands.
func synthesize(reference string, n int, rng *rand.Rand) []string {
	words := strings.Fields(reference)
	out := make([]string, n)
	for i := range out {
		keep := rng.Float64()
		var b strings.Builder
		for _, w := range words {
			switch r := rng.Float64(); {
			case r > keep:
				b.WriteString(filler[rng.Intn(len(filler))])
			case r < 0.05:
				b.WriteString(w + " " + w)
			default:
				b.WriteString(w)
			}
			b.WriteByte(' ')
		}
		out[i] = strings.TrimSpace(b.String())
	}
	return out
}

var filler = []string{
	"river", "engine", "banana", "orbit", "lantern", "marble", "quiet", "velvet",
	"harbor", "pencil", "thunder", "garden", "copper", "window", "saddle", "meadow",
}

const sampleReference = `Photosynthesis is the process by which green plants use sunlight,
water and carbon dioxide to produce glucose and oxygen. It takes place in the
chloroplasts, where chlorophyll absorbs light energy and converts it into
chemical energy stored in sugar molecules.`
