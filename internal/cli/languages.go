package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var languagesCmd = &cobra.Command{
	Use:   "languages",
	Short: "List available languages",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := newRegistry(GetConfig())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, code := range reg.Codes() {
			marker := " "
			if code == GetConfig().Grading.Language {
				marker = "*"
			}
			fmt.Fprintf(out, "%s %-6s %s\n", marker, code, reg.Name(code))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(languagesCmd)
}
