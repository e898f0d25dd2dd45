package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"nexus-hq/arbiter/pkg/audit"
	"nexus-hq/arbiter/pkg/cli"
	"nexus-hq/arbiter/pkg/config"
	"nexus-hq/arbiter/pkg/engine"
	"nexus-hq/arbiter/pkg/feedback"
)

var auditFlags struct {
	applicationID string
	disposition   string
	timeRange     string
	feedback      bool
	overridden    bool
	limit         int
	offset        int
	format        string
	output        string
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Query the audit log",
	Long: `Query and export finalized decision records.

The audit log is append-only: these commands read history, they never
modify it.

Subcommands:
  query   - Query audit records with filters
  export  - Export feedback-triggered records as JSON Lines

Examples:
  # Records for one application
  arbiter audit query --application LN-4F2A91C3

  # Deferred decisions in a time window
  arbiter audit query --disposition HITL_REVIEW \
    --time-range "2026-08-01T00:00:00Z/2026-08-29T00:00:00Z"

  # Export feedback-triggered records for retraining
  arbiter audit export --output feedback.jsonl`,
}

var auditQueryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query audit records",
	Long: `Query audit records with filters.

Time Range Format:
  RFC3339 interval: "start/end"
  Example: "2026-08-01T00:00:00Z/2026-08-29T00:00:00Z"`,
	RunE: runAuditQuery,
}

var auditExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export feedback-triggered records",
	Long: `Export feedback-triggered audit records as JSON Lines, one record
per line, suitable for the model-retraining pipeline.`,
	RunE: runAuditExport,
}

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.AddCommand(auditQueryCmd)
	auditCmd.AddCommand(auditExportCmd)

	auditQueryCmd.Flags().StringVar(&auditFlags.applicationID, "application", "", "filter by application id")
	auditQueryCmd.Flags().StringVar(&auditFlags.disposition, "disposition", "", "filter by disposition (AUTO_APPROVE, AUTO_DECLINE, HITL_REVIEW)")
	auditQueryCmd.Flags().StringVar(&auditFlags.timeRange, "time-range", "", "RFC3339 interval \"start/end\"")
	auditQueryCmd.Flags().BoolVar(&auditFlags.feedback, "feedback", false, "only feedback-triggered records")
	auditQueryCmd.Flags().BoolVar(&auditFlags.overridden, "overridden", false, "only human-resolved records")
	auditQueryCmd.Flags().IntVar(&auditFlags.limit, "limit", 50, "maximum records to return")
	auditQueryCmd.Flags().IntVar(&auditFlags.offset, "offset", 0, "records to skip")
	auditQueryCmd.Flags().StringVar(&auditFlags.format, "format", "text", "output format (text, json)")

	auditExportCmd.Flags().StringVar(&auditFlags.output, "output", "", "output file (default stdout)")
}

func runAuditQuery(cmd *cobra.Command, args []string) error {
	if err := config.Initialize(cfgFile); err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}

	storage, err := buildAuditStorage(config.GetConfig())
	if err != nil {
		return cli.NewCommandError("audit query", err)
	}
	defer storage.Close()

	query := &audit.Query{
		ApplicationID:  auditFlags.applicationID,
		Disposition:    engine.Disposition(auditFlags.disposition),
		OverriddenOnly: auditFlags.overridden,
		Limit:          auditFlags.limit,
		Offset:         auditFlags.offset,
	}
	if auditFlags.feedback {
		triggered := true
		query.FeedbackTriggered = &triggered
	}
	if auditFlags.timeRange != "" {
		start, end, err := parseTimeRange(auditFlags.timeRange)
		if err != nil {
			return cli.NewConfigError("time-range", err.Error())
		}
		query.StartTime = &start
		query.EndTime = &end
	}

	ctx := cli.SetupSignalHandler()
	records, err := storage.Query(ctx, query)
	if err != nil {
		return cli.NewCommandError("audit query", err)
	}

	if auditFlags.format == string(cli.FormatJSON) {
		return cli.NewFormatter(cli.FormatJSON).FormatTo(os.Stdout, records)
	}

	if len(records) == 0 {
		fmt.Println("no records match")
		return nil
	}
	for _, record := range records {
		line := fmt.Sprintf("%s  %s  %-12s  %s",
			record.RecordedAt.Format(time.RFC3339),
			record.ApplicationID,
			record.Disposition,
			record.Application.BusinessName,
		)
		if record.HumanOverride != nil {
			line += fmt.Sprintf("  [reviewed: %s]", record.HumanOverride.FinalDecision)
		}
		fmt.Println(line)
	}
	fmt.Printf("%d record(s)\n", len(records))
	return nil
}

func runAuditExport(cmd *cobra.Command, args []string) error {
	if err := config.Initialize(cfgFile); err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}

	storage, err := buildAuditStorage(config.GetConfig())
	if err != nil {
		return cli.NewCommandError("audit export", err)
	}
	defer storage.Close()

	out := os.Stdout
	if auditFlags.output != "" {
		f, err := os.Create(auditFlags.output)
		if err != nil {
			return cli.NewCommandError("audit export", err)
		}
		defer f.Close()
		out = f
	}

	ctx := cli.SetupSignalHandler()
	count, err := feedback.NewExporter(storage).Export(ctx, nil, out)
	if err != nil {
		return cli.NewCommandError("audit export", err)
	}
	fmt.Fprintf(os.Stderr, "exported %d record(s)\n", count)
	return nil
}

// parseTimeRange parses an RFC3339 "start/end" interval.
func parseTimeRange(s string) (time.Time, time.Time, error) {
	parts := strings.SplitN(s, "/", 2)
	if len(parts) != 2 {
		return time.Time{}, time.Time{}, fmt.Errorf("expected \"start/end\", got %q", s)
	}
	start, err := time.Parse(time.RFC3339, parts[0])
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid start %q: %w", parts[0], err)
	}
	end, err := time.Parse(time.RFC3339, parts[1])
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid end %q: %w", parts[1], err)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("end precedes start")
	}
	return start, end, nil
}
