package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"syncline/internal/audio"
	"syncline/internal/media"
	"syncline/internal/syncer"
)

func newBatchCommand(ctx *commandContext) *cobra.Command {
	var flags engineFlags
	var jsonOutput bool
	var concurrency int

	cmd := &cobra.Command{
		Use:   "batch <reference.wav> <target.wav> [target.wav ...]",
		Short: "Align multiple targets against one reference",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			req, err := flags.request(cmd, cfg)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("concurrency") {
				cfg.Batch.MaxConcurrent = concurrency
			}

			reference, err := media.LoadWAV(args[0])
			if err != nil {
				return fmt.Errorf("load reference %s: %w", args[0], err)
			}
			targetPaths := args[1:]
			targets := make([]audio.Buffer, len(targetPaths))
			for i, path := range targetPaths {
				// Unreadable targets become failed slots so their
				// siblings still run.
				buf, loadErr := media.LoadWAV(path)
				if loadErr != nil {
					fmt.Fprintln(cmd.ErrOrStderr(), renderStatusLine(statusWarn,
						fmt.Sprintf("load %s: %v", path, loadErr), shouldColorize(cmd.ErrOrStderr())))
					continue
				}
				targets[i] = buf
			}

			return ctx.withEngine(func(engine *syncer.Engine) error {
				outcomes, err := engine.ProcessBatch(cmd.Context(), reference, targets, req)
				if err != nil {
					return err
				}
				if jsonOutput {
					views := make([]outcomeView, len(outcomes))
					for i, outcome := range outcomes {
						views[i] = newOutcomeView(outcome)
					}
					return writeJSON(cmd, views)
				}
				renderBatch(cmd, targetPaths, outcomes)
				return nil
			})
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit results as JSON")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "Maximum targets processed in parallel")
	return cmd
}

func renderBatch(cmd *cobra.Command, paths []string, outcomes []*syncer.Outcome) {
	out := cmd.OutOrStdout()

	rows := make([][]string, 0, len(outcomes))
	succeeded := 0
	for i, outcome := range outcomes {
		name := ""
		if i < len(paths) {
			name = filepath.Base(paths[i])
		}
		row := []string{name, string(outcome.State), "", "", "", string(outcome.Code)}
		if result := outcome.Result; result != nil {
			row[2] = formatSamples(result.OffsetSamples)
			row[3] = formatMilliseconds(result.OffsetMilliseconds)
			row[4] = formatRatio(result.Confidence)
		}
		if outcome.State == syncer.StateSucceeded {
			succeeded++
		}
		rows = append(rows, row)
	}

	fmt.Fprintln(out, renderTable(
		[]string{"Target", "State", "Offset", "Offset (ms)", "Confidence", "Code"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft},
	))

	colorize := shouldColorize(out)
	summary := fmt.Sprintf("%d/%d targets aligned", succeeded, len(outcomes))
	kind := statusOK
	if succeeded < len(outcomes) {
		kind = statusWarn
	}
	fmt.Fprintln(out, renderStatusLine(kind, summary, colorize))
}
