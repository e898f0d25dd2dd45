package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"nexus-hq/arbiter/pkg/batch"
	"nexus-hq/arbiter/pkg/cli"
	"nexus-hq/arbiter/pkg/config"
	"nexus-hq/arbiter/pkg/engine"
	"nexus-hq/arbiter/pkg/generator"
	"nexus-hq/arbiter/pkg/signals/content"
	"nexus-hq/arbiter/pkg/signals/risk"
	"nexus-hq/arbiter/pkg/telemetry/logging"
)

var batchFlags struct {
	count       int
	concurrency int
	seed        int64
	format      string
}

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Evaluate a batch of synthetic applications",
	Long: `Generate synthetic loan applications and evaluate them through the
decision engine, reporting aggregate disposition counts.

Batch statistics reflect pre-human dispositions only: arbitration never
declines on its own, so the report has no declined count. Deferred
applications are counted, not enqueued; a batch run leaves no state
behind.

Examples:
  # Evaluate 100 applications
  arbiter batch

  # Larger run with a fixed seed for a reproducible report
  arbiter batch --count 5000 --seed 42

  # Machine-readable output
  arbiter batch --format json`,
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVarP(&batchFlags.count, "count", "n", 100, "number of applications to evaluate")
	batchCmd.Flags().IntVar(&batchFlags.concurrency, "concurrency", 8, "concurrent evaluations")
	batchCmd.Flags().Int64Var(&batchFlags.seed, "seed", 0, "random seed (0 = random)")
	batchCmd.Flags().StringVar(&batchFlags.format, "format", "text", "output format (text, json)")
}

func runBatch(cmd *cobra.Command, args []string) error {
	if err := config.Initialize(cfgFile); err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	cfg := config.GetConfig()

	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}
	if _, err := logging.Setup(&cfg.Telemetry.Logging); err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}

	eng := engine.New(
		risk.NewHeuristicEstimator(batchFlags.seed),
		content.NewKeywordAnalyzer(),
		engine.WithSignalTimeout(cfg.Signals.Timeout),
	)
	gen := generator.New(batchFlags.seed)

	runner := batch.NewRunner(eng, gen, config.Governance(),
		batch.WithConcurrency(batchFlags.concurrency),
	)

	ctx := cli.SetupSignalHandler()
	report, err := runner.Run(ctx, batchFlags.count)
	if err != nil {
		return cli.NewCommandError("batch", err)
	}

	if batchFlags.format == string(cli.FormatJSON) {
		return cli.NewFormatter(cli.FormatJSON).FormatTo(os.Stdout, report)
	}

	fmt.Printf("Evaluated %d applications in %s\n", report.Total, report.Duration.Round(time.Millisecond))
	fmt.Printf("  auto-approved:  %d\n", report.Approved)
	fmt.Printf("  needs review:   %d\n", report.Review)
	fmt.Printf("  failed:         %d\n", report.Failed)
	return nil
}
