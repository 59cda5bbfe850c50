package main

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"syncline/internal/preflight"
	"syncline/internal/stats"
)

func newStatsCommand(ctx *commandContext) *cobra.Command {
	var recent int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show the processing-statistics journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openJournal()
			if err != nil {
				return err
			}
			defer store.Close()

			summary, err := store.Summary(cmd.Context())
			if err != nil {
				return fmt.Errorf("read summary: %w", err)
			}
			records, err := store.Recent(cmd.Context(), recent)
			if err != nil {
				return fmt.Errorf("read recent operations: %w", err)
			}

			if jsonOutput {
				return writeJSON(cmd, struct {
					Summary stats.Summary  `json:"summary"`
					Recent  []stats.Record `json:"recent"`
				}{summary, records})
			}
			renderStats(cmd, ctx, summary, records)
			return nil
		},
	}

	cmd.Flags().IntVar(&recent, "recent", 10, "Number of recent operations to list")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit statistics as JSON")
	cmd.AddCommand(newStatsClearCommand(ctx))
	return cmd
}

func newStatsClearCommand(ctx *commandContext) *cobra.Command {
	var confirmed bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every journal record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirmed {
				return fmt.Errorf("refusing to clear the journal without --yes")
			}
			store, err := ctx.openJournal()
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Clear(cmd.Context()); err != nil {
				return fmt.Errorf("clear journal: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Journal cleared")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&confirmed, "yes", "y", false, "Confirm deletion")
	return cmd
}

func renderStats(cmd *cobra.Command, ctx *commandContext, summary stats.Summary, records []stats.Record) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)

	fmt.Fprintln(out, renderKVTable([][]string{
		{"Total operations", formatSamples(summary.TotalOperations)},
		{"Successes", formatSamples(summary.Successes)},
		{"Failures", formatSamples(summary.Failures)},
		{"Success rate", formatPercent(summary.SuccessRate())},
		{"Avg realtime ratio", fmt.Sprintf("%.1fx", summary.AvgRealtimeRatio)},
		{"Avg confidence", formatRatio(summary.AvgConfidence)},
	}))

	if len(summary.ByMethod) > 0 {
		methods := make([]string, 0, len(summary.ByMethod))
		for method := range summary.ByMethod {
			methods = append(methods, method)
		}
		sort.Strings(methods)
		rows := make([][]string, 0, len(methods))
		for _, method := range methods {
			rows = append(rows, []string{method, formatSamples(summary.ByMethod[method])})
		}
		fmt.Fprintln(out, renderTable(
			[]string{"Method", "Operations"},
			rows,
			[]columnAlignment{alignLeft, alignRight},
		))
	}

	if len(records) > 0 {
		rows := make([][]string, 0, len(records))
		for _, rec := range records {
			row := []string{
				rec.StartedAt.Local().Format(time.DateTime),
				rec.Method,
				yesNo(rec.Success),
				"",
				"",
				rec.ErrorCode,
			}
			if rec.Success {
				row[3] = formatSamples(rec.OffsetSamples)
				row[4] = formatRatio(rec.Confidence)
			}
			rows = append(rows, row)
		}
		fmt.Fprintln(out, renderTable(
			[]string{"Started", "Method", "OK", "Offset", "Confidence", "Code"},
			rows,
			[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft},
		))
	}

	if cfg, err := ctx.ensureConfig(); err == nil {
		check := preflight.CheckDirectoryAccess("stats directory", cfg.Paths.StatsDir)
		kind := statusOK
		if !check.Passed {
			kind = statusWarn
		}
		fmt.Fprintln(out, renderStatusLine(kind, check.Name+": "+check.Detail, colorize))
	}
}
