package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "council",
	Short: "Convene a multi-model deliberation council",
	Long: `council runs a query through a deliberation pipeline: a gate check,
query normalization, parallel member answers, anonymized peer review and a
final chair synthesis. Councils, members and personas are loaded from a
metadata directory.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
