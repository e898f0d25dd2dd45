package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"nexus-hq/arbiter/pkg/audit/recorder"
	"nexus-hq/arbiter/pkg/cli"
	"nexus-hq/arbiter/pkg/config"
	"nexus-hq/arbiter/pkg/engine"
	"nexus-hq/arbiter/pkg/feedback"
	"nexus-hq/arbiter/pkg/server"
	"nexus-hq/arbiter/pkg/signals/content"
	"nexus-hq/arbiter/pkg/signals/risk"
	"nexus-hq/arbiter/pkg/telemetry/logging"
	"nexus-hq/arbiter/pkg/telemetry/metrics"
	"nexus-hq/arbiter/pkg/workflow"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the arbiter API server",
	Long: `Start the arbiter API server with the specified configuration.

The server accepts loan applications, evaluates them through the decision
engine, holds deferred applications in the review queue, and records
every finalized decision in the audit log.

Examples:
  # Start with default config
  arbiter run

  # Start with custom config
  arbiter run --config /etc/arbiter/config.yaml

  # Override listen address
  arbiter run --listen 0.0.0.0:8080

  # Validate config without starting the server
  arbiter run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting the server")
}

func runServer(cmd *cobra.Command, args []string) error {
	if err := config.Initialize(cfgFile); err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	cfg := config.GetConfig()

	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	if _, err := logging.Setup(&cfg.Telemetry.Logging); err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}

	if runFlags.dryRun {
		fmt.Println("configuration valid")
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Governance hot reload, when enabled.
	if cfg.Governance.Watch {
		watcher, err := config.NewWatcher(cfgFile, nil)
		if err != nil {
			return cli.NewCommandError("run", err)
		}
		go func() {
			if err := watcher.Watch(ctx); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "config watcher stopped: %v\n", err)
			}
		}()
		defer watcher.Stop()
	}

	var collector *metrics.Collector
	if cfg.Telemetry.Metrics.Enabled {
		collector = metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
	}

	auditStorage, err := buildAuditStorage(cfg)
	if err != nil {
		return cli.NewCommandError("run", err)
	}
	defer auditStorage.Close()

	recorderOpts := []recorder.Option{}
	if collector != nil {
		recorderOpts = append(recorderOpts, recorder.WithObserver(collector))
	}
	auditRecorder := recorder.New(auditStorage, cfg.Audit.Recorder, recorderOpts...)
	defer auditRecorder.Close()

	queue, err := buildReviewQueue(cfg)
	if err != nil {
		return cli.NewCommandError("run", err)
	}
	defer queue.Close()

	eng := engine.New(
		risk.NewHeuristicEstimator(0),
		content.NewKeywordAnalyzer(),
		engine.WithSignalTimeout(cfg.Signals.Timeout),
	)

	pipelineOpts := []workflow.PipelineOption{}
	if collector != nil {
		pipelineOpts = append(pipelineOpts, workflow.WithMetrics(collector))
	}
	pipeline := workflow.NewPipeline(eng, queue, auditRecorder, config.Governance, pipelineOpts...)

	if cfg.Feedback.Enabled {
		scheduler := feedback.NewScheduler(feedback.NewExporter(auditStorage), cfg.Feedback)
		if err := scheduler.Start(ctx); err != nil {
			return cli.NewCommandError("run", err)
		}
		defer scheduler.Stop()
	}

	srv := server.NewServer(&cfg.Server, pipeline, auditStorage, queue, collector, &cfg.Telemetry.Metrics)
	return srv.Start(ctx)
}
