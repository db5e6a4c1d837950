package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	inspectText bool
	inspectJSON bool
)

var inspectCmd = &cobra.Command{
	Use:   "inspect REFERENCE RESPONSE...",
	Short: "Show the intermediate artifacts of a scoring run",
	Long: `Run the scoring pipeline on one shared corpus and print the cleaned
terms, vocabulary, idf weights, singular values and truncation rank.

Examples:
  essaysim inspect ref.txt answer.txt
  essaysim inspect --text "the cats sat" "a cat sits" --json`,
	Args: cobra.MinimumNArgs(2),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().BoolVarP(&inspectText, "text", "t", false, "treat arguments as literal texts")
	inspectCmd.Flags().BoolVar(&inspectJSON, "json", false, "output as JSON")
}

func runInspect(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	texts := make([]string, len(args))
	for i, arg := range args {
		text, err := readText(cmd.InOrStdin(), arg, inspectText)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", arg, err)
		}
		texts[i] = text
	}

	reg, err := newRegistry(cfg)
	if err != nil {
		return err
	}
	grader, err := newGrader(cfg, reg, nil)
	if err != nil {
		return err
	}
	p, err := grader.Pipeline(cmd.Context(), cfg.Grading.Language)
	if err != nil {
		return err
	}

	a, err := p.Inspect(texts[0], texts[1:]...)
	if err != nil {
		return fmt.Errorf("inspect failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if inspectJSON {
		output, _ := json.MarshalIndent(a, "", "  ")
		fmt.Fprintln(out, string(output))
		return nil
	}

	fmt.Fprintf(out, "Language:   %s\n", a.Language)
	for i, terms := range a.Terms {
		label := "reference"
		if i > 0 {
			label = fmt.Sprintf("response %d", i)
		}
		fmt.Fprintf(out, "%-11s %s\n", label+":", strings.Join(terms, " "))
	}
	fmt.Fprintf(out, "Vocabulary: %d terms\n", len(a.Vocabulary))
	if len(a.IDF) > 0 {
		fmt.Fprintln(out, "IDF:")
		for i, term := range a.Vocabulary {
			fmt.Fprintf(out, "  %-20s %.4f\n", term, a.IDF[i])
		}
	}
	if len(a.SingularValues) > 0 {
		fmt.Fprintf(out, "Singular values: %s\n", formatFloats(a.SingularValues))
		fmt.Fprintf(out, "Rank: %d  Truncation rank: %d\n", a.Rank, a.TruncationRank)
	}
	fmt.Fprintf(out, "Scores: %s\n", formatFloats(a.Scores))
	return nil
}

func formatFloats(vs []float64) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = fmt.Sprintf("%.4f", v)
	}
	return "[" + strings.Join(parts, " ") + "]"
}
