package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hupe1980/llmcouncil/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate <config.json>",
	Short: "Resolve a per-prompt configuration and report its findings",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}

		var raw map[string]any
		if err := json.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("parse %s: %w", args[0], err)
		}

		resolver := config.NewResolver(config.NewDefaults())
		cfg, findings := resolver.Resolve("validate", raw)

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "id:        %s\n", cfg.ID)
		fmt.Fprintf(out, "enabled:   %t\n", cfg.Enabled)
		fmt.Fprintf(out, "council:   %s\n", cfg.CouncilID)
		fmt.Fprintf(out, "stages:    %v\n", cfg.Stages)
		fmt.Fprintf(out, "output:    %s (audit: %t)\n", cfg.Output.Format, cfg.Output.IncludeAudit)

		if len(findings) > 0 {
			fmt.Fprintln(out, "\nfindings:")
			for _, f := range findings {
				fmt.Fprintf(out, "  [%s] %s\n", f.Kind, f.Detail)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
