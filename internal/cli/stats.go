package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"essaysim/internal/textstats"
)

var (
	statsText  bool
	statsItems string
	statsJSON  bool
)

var statsCmd = &cobra.Command{
	Use:   "stats FILE",
	Short: "Compute text statistics",
	Long: `Compute descriptive statistics of a text: counts of characters, words,
sentences and paragraphs, averages per sentence, lexical density and the
fog index.

Examples:
  essaysim stats answer.txt
  essaysim stats --text "Short answer. Two sentences." --items words,fogindex`,
	Args: cobra.ExactArgs(1),
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().BoolVarP(&statsText, "text", "t", false, "treat the argument as literal text")
	statsCmd.Flags().StringVar(&statsItems, "items", "", "comma separated items (default all)")
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "output as JSON")
}

func runStats(cmd *cobra.Command, args []string) error {
	items, err := textstats.ParseItems(statsItems)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		items = textstats.AllItems
	}

	text, err := readText(cmd.InOrStdin(), args[0], statsText)
	if err != nil {
		return err
	}
	values := textstats.Compute(text, items)

	out := cmd.OutOrStdout()
	if statsJSON {
		output, _ := json.MarshalIndent(values, "", "  ")
		fmt.Fprintln(out, string(output))
		return nil
	}
	for _, v := range values {
		fmt.Fprintf(out, "%-22s %.2f\n", v.Item, v.Value)
	}
	return nil
}
