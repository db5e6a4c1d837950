package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"essaysim/config"
	"essaysim/internal/domain"
)

var (
	historyLimit  int
	historyJSON   bool
	historyDelete string
	historyClear  bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded attempts",
	Long: `List recorded attempts, newest first, with a summary per band.
Attempts are stored in .essaysim/attempts.db within the project directory.

Examples:
  essaysim history
  essaysim history --limit 5 --json
  essaysim history --delete 3f2a9c0d1e4b5a67
  essaysim history --clear`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of attempts to show (0 for all)")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "output as JSON")
	historyCmd.Flags().StringVar(&historyDelete, "delete", "", "delete the attempt with this ID")
	historyCmd.Flags().BoolVar(&historyClear, "clear", false, "delete all attempts")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	rootDir := GetRootDir()

	if _, err := os.Stat(config.StoreDBPath(rootDir)); os.IsNotExist(err) {
		return fmt.Errorf("no history found. Run 'essaysim score --record' first")
	}

	st, err := openStore(cfg, rootDir)
	if err != nil {
		return err
	}
	defer st.Close()

	out := cmd.OutOrStdout()
	switch {
	case historyClear:
		if err := st.Clear(); err != nil {
			return fmt.Errorf("failed to clear history: %w", err)
		}
		if err := st.Migrate(cfg); err != nil {
			return fmt.Errorf("failed to update schema info: %w", err)
		}
		fmt.Fprintln(out, "History cleared.")
		return nil
	case historyDelete != "":
		if err := st.DeleteAttempt(historyDelete); err != nil {
			return err
		}
		fmt.Fprintf(out, "Deleted %s\n", historyDelete)
		return nil
	}

	attempts, err := st.ListAttempts(historyLimit)
	if err != nil {
		return fmt.Errorf("failed to list attempts: %w", err)
	}
	sum, err := st.Summary()
	if err != nil {
		return fmt.Errorf("failed to summarize attempts: %w", err)
	}

	if historyJSON {
		output, _ := json.MarshalIndent(struct {
			Items   []domain.Attempt `json:"items"`
			Summary domain.Summary   `json:"summary"`
		}{attempts, sum}, "", "  ")
		fmt.Fprintln(out, string(output))
		return nil
	}

	if len(attempts) == 0 {
		fmt.Fprintln(out, "No attempts recorded.")
		return nil
	}
	for _, a := range attempts {
		fmt.Fprintf(out, "%s  %s  %-3s %.4f %-9s %s\n",
			a.ID, a.CreatedAt.Local().Format("2006-01-02 15:04"), a.Language, a.Score, a.Band, preview(a))
	}
	fmt.Fprintf(out, "\n%d attempts, mean score %.4f (correct %d, partial %d, incorrect %d)\n",
		sum.Count, sum.MeanScore,
		sum.Bands[domain.BandCorrect], sum.Bands[domain.BandPartial], sum.Bands[domain.BandIncorrect])
	return nil
}

func preview(a domain.Attempt) string {
	if a.Source != "" {
		return a.Source
	}
	text := strings.Join(strings.Fields(a.Response), " ")
	if r := []rune(text); len(r) > 40 {
		text = string(r[:40]) + "..."
	}
	return text
}
