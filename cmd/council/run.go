package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hupe1980/llmcouncil"
	"github.com/hupe1980/llmcouncil/core"
	"github.com/hupe1980/llmcouncil/logging"
	"github.com/hupe1980/llmcouncil/metadata"
	"github.com/hupe1980/llmcouncil/model"
	"github.com/hupe1980/llmcouncil/model/anthropic"
	"github.com/hupe1980/llmcouncil/model/openai"
	"github.com/hupe1980/llmcouncil/reporting"
)

var (
	metadataRoot string
	councilID    string
	promptID     string
	configPath   string
	findingsDir  string
	showAudit    bool
	verbose      bool
)

var runCmd = &cobra.Command{
	Use:   "run [query]",
	Short: "Run one deliberation over a query or a stored prompt",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runDeliberation,
}

func init() {
	runCmd.Flags().StringVar(&metadataRoot, "metadata-root", defaultMetadataRoot(), "metadata directory (councils, members, personas, ...)")
	runCmd.Flags().StringVar(&councilID, "council", "ai-council", "council id to convene")
	runCmd.Flags().StringVar(&promptID, "prompt", "", "stored prompt id (alternative to a query argument)")
	runCmd.Flags().StringVar(&configPath, "config", "", "per-prompt configuration file (JSON)")
	runCmd.Flags().StringVar(&findingsDir, "findings-dir", "", "write findings as JSONL under this directory")
	runCmd.Flags().BoolVar(&showAudit, "audit", true, "append the audit appendix to the output")
	runCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "structured logging to stderr")
	rootCmd.AddCommand(runCmd)
}

func defaultMetadataRoot() string {
	if root := os.Getenv("COUNCIL_METADATA_ROOT"); root != "" {
		return root
	}
	return "council-metadata"
}

func runDeliberation(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	var logger logging.Logger = logging.NoOpLogger{}
	if verbose {
		logger = logging.NewDefaultSlogLogger()
	}

	store := metadata.NewStore(metadataRoot, func(o *metadata.Options) {
		o.Logger = logger
	})

	query, id, err := resolveQuery(cmd, args, store)
	if err != nil {
		return err
	}

	council, err := store.Assemble(ctx, councilID)
	if err != nil {
		return fmt.Errorf("assemble council %q: %w", councilID, err)
	}

	var rawConfig map[string]any
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(data, &rawConfig); err != nil {
			return fmt.Errorf("parse %s: %w", configPath, err)
		}
	}

	reporter := reporting.MultiReporter{reporting.NewLoggerReporter(logger)}
	if findingsDir != "" {
		jsonl, err := reporting.NewJSONLReporter(findingsDir, logger)
		if err != nil {
			return err
		}
		defer jsonl.Close()
		reporter = append(reporter, jsonl)
	}

	invoker := model.NewRouter(openai.New()).
		Register("openai", openai.New()).
		Register("anthropic", anthropic.New())

	c, err := llmcouncil.New(invoker, func(o *llmcouncil.Options) {
		o.PersonaLoader = store
		o.Reporter = reporter
		o.Logger = logger
	})
	if err != nil {
		return err
	}

	res, err := c.ConveneWithConfig(ctx, id, query, council, rawConfig)
	if err != nil {
		return err
	}

	render(cmd, res)
	return nil
}

func resolveQuery(cmd *cobra.Command, args []string, store *metadata.Store) (query, id string, err error) {
	switch {
	case promptID != "":
		rec, err := store.Prompt(cmd.Context(), promptID)
		if err != nil {
			return "", "", err
		}
		return rec.Prompt, promptID, nil
	case len(args) == 1:
		return args[0], "adhoc", nil
	default:
		return "", "", fmt.Errorf("either a query argument or --prompt is required")
	}
}

func render(cmd *cobra.Command, res *core.RunResult) {
	out := cmd.OutOrStdout()

	if res.Stopped() {
		fmt.Fprintf(out, "Run stopped at the gate: %s\n", res.StopReason)
		for _, alt := range res.Alternatives {
			fmt.Fprintf(out, "  - %s\n", alt)
		}
		return
	}

	fmt.Fprintln(out, strings.TrimSpace(res.Final))

	if !showAudit {
		return
	}

	fmt.Fprintf(out, "\n---\n\n## Audit\n\nRun %s finished in state %s.\n", res.RunID, res.State)

	if len(res.LabelToMember) > 0 {
		fmt.Fprintln(out, "\nParticipants:")
		for _, label := range core.Labels(len(res.LabelToMember)) {
			if name, ok := res.LabelToMember[label]; ok {
				fmt.Fprintf(out, "  Response %s: %s\n", label, name)
			}
		}
	}

	if res.Aggregate != nil && len(res.Aggregate.Scores) > 0 {
		fmt.Fprintln(out, "\nConsensus ranking:")
		for i, s := range res.Aggregate.Scores {
			fmt.Fprintf(out, "  %d. Response %s (score %d)\n", i+1, s.Label, s.Score)
		}
	}

	if len(res.Findings) > 0 {
		fmt.Fprintln(out, "\nFindings:")
		for _, f := range res.Findings {
			fmt.Fprintf(out, "  [%s] %s: %s\n", f.Kind, f.StageID, f.Detail)
		}
	}
}
