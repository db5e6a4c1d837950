package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"essaysim/internal/adapter/store"
	"essaysim/internal/usecase"
)

var (
	scoreText   bool
	scoreJSON   bool
	scoreJoint  bool
	scoreRecord bool
	scoreStats  string
)

var scoreCmd = &cobra.Command{
	Use:   "score REFERENCE RESPONSE...",
	Short: "Score responses against a reference",
	Long: `Score one or more responses against a reference text and band each
score with the correctness thresholds. Arguments are file paths, "-" for
stdin, or literal texts with --text.

Examples:
  essaysim score ref.txt alice.txt bob.txt
  essaysim score --text "Water boils at 100 C." "At 100 C water boils." --json
  essaysim score ref.txt answer.txt --stats words,fogindex --record`,
	Args: cobra.MinimumNArgs(2),
	RunE: runScore,
}

func init() {
	rootCmd.AddCommand(scoreCmd)
	scoreCmd.Flags().BoolVarP(&scoreText, "text", "t", false, "treat arguments as literal texts")
	scoreCmd.Flags().BoolVar(&scoreJSON, "json", false, "output as JSON")
	scoreCmd.Flags().BoolVar(&scoreJoint, "joint", false, "score all responses in one shared corpus")
	scoreCmd.Flags().BoolVar(&scoreRecord, "record", false, "record attempts in the history (default from config)")
	scoreCmd.Flags().StringVar(&scoreStats, "stats", "", "comma separated text statistics to report")
}

func runScore(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	items, err := statItems(scoreStats)
	if err != nil {
		return err
	}

	reference, err := readText(cmd.InOrStdin(), args[0], scoreText)
	if err != nil {
		return fmt.Errorf("failed to read reference: %w", err)
	}
	responses := make([]usecase.Response, 0, len(args)-1)
	for _, arg := range args[1:] {
		text, err := readText(cmd.InOrStdin(), arg, scoreText)
		if err != nil {
			return fmt.Errorf("failed to read response: %w", err)
		}
		source := arg
		if scoreText {
			source = ""
		}
		responses = append(responses, usecase.Response{Source: source, Text: text})
	}

	reg, err := newRegistry(cfg)
	if err != nil {
		return err
	}

	record := scoreRecord || cfg.Store.Record
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

	res, err := grader.Grade(cmd.Context(), usecase.GradeRequest{
		Language:  cfg.Grading.Language,
		Reference: reference,
		Responses: responses,
		StatItems: items,
		Joint:     scoreJoint,
		Record:    record,
	})
	if err != nil {
		return fmt.Errorf("scoring failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if scoreJSON {
		output, _ := json.MarshalIndent(res, "", "  ")
		fmt.Fprintln(out, string(output))
		return nil
	}

	fmt.Fprintf(out, "Language: %s  (correct >= %.2f, incorrect < %.2f)\n\n",
		res.Language, res.Thresholds.Upper, res.Thresholds.Lower)
	for i, g := range res.Grades {
		name := g.Source
		if name == "" {
			name = fmt.Sprintf("response %d", i+1)
		}
		fmt.Fprintf(out, "%-24s score %.4f  %-9s credit %.2f", name, g.Score, g.Band, g.Fraction)
		if g.AttemptID != "" {
			fmt.Fprintf(out, "  [%s]", g.AttemptID)
		}
		fmt.Fprintln(out)
		if len(g.Stats) > 0 {
			parts := make([]string, len(g.Stats))
			for j, s := range g.Stats {
				parts[j] = fmt.Sprintf("%s=%.2f", s.Item, s.Value)
			}
			fmt.Fprintf(out, "  %s\n", strings.Join(parts, " "))
		}
	}
	return nil
}
