package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"syncline/internal/media"
	"syncline/internal/syncer"
)

func newAlignCommand(ctx *commandContext) *cobra.Command {
	var flags engineFlags
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "align <reference.wav> <target.wav>",
		Short: "Compute the offset that aligns target to reference",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			req, err := flags.request(cmd, cfg)
			if err != nil {
				return err
			}

			reference, err := media.LoadWAV(args[0])
			if err != nil {
				return fmt.Errorf("load reference %s: %w", args[0], err)
			}
			target, err := media.LoadWAV(args[1])
			if err != nil {
				return fmt.Errorf("load target %s: %w", args[1], err)
			}
			req.Reference = reference
			req.Target = target

			return ctx.withEngine(func(engine *syncer.Engine) error {
				outcome, err := engine.Process(cmd.Context(), req)
				if jsonOutput {
					if writeErr := writeJSON(cmd, newOutcomeView(outcome)); writeErr != nil {
						return writeErr
					}
					return err
				}
				renderOutcome(cmd, outcome)
				return err
			})
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the result as JSON")
	return cmd
}

func renderOutcome(cmd *cobra.Command, outcome *syncer.Outcome) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)

	if outcome.Result == nil {
		kind := statusError
		if outcome.State == syncer.StateCancelled {
			kind = statusWarn
		}
		fmt.Fprintln(out, renderStatusLine(kind, fmt.Sprintf("%s (%s)", outcome.State, outcome.Code), colorize))
		return
	}

	result := outcome.Result
	rows := [][]string{
		{"Offset", fmt.Sprintf("%s samples (%s)", formatSamples(result.OffsetSamples), formatMilliseconds(result.OffsetMilliseconds))},
		{"Confidence", formatRatio(result.Confidence)},
		{"Peak correlation", formatRatio(result.PeakCorrelation)},
		{"Secondary peak ratio", formatRatio(result.SecondaryPeakRatio)},
		{"SNR estimate", formatRatio(result.SNREstimate)},
		{"Noise floor", formatDB(result.NoiseFloorDB)},
		{"Method", result.Method},
		{"Degradation", outcome.Level.String()},
		{"Wall time", formatWallTime(outcome.WallTime)},
		{"Realtime ratio", fmt.Sprintf("%.1fx", outcome.RealtimeRatio)},
	}
	if drift := result.Drift; drift != nil {
		detail := yesNo(drift.Detected)
		if drift.Detected {
			detail = fmt.Sprintf("%.1f ppm over %d keyframes, corrected: %s",
				drift.PPM, len(drift.Keyframes), yesNo(drift.CorrectionApplied))
		}
		rows = append(rows, []string{"Drift", detail})
	}
	fmt.Fprintln(out, renderKVTable(rows))

	switch outcome.State {
	case syncer.StateSucceeded:
		fmt.Fprintln(out, renderStatusLine(statusOK, "alignment succeeded", colorize))
	default:
		fmt.Fprintln(out, renderStatusLine(statusWarn, fmt.Sprintf("%s (%s)", outcome.State, outcome.Code), colorize))
	}
	for _, warning := range outcome.ReferenceQuality.Warnings {
		fmt.Fprintln(out, renderStatusLine(statusWarn, "reference: "+warning, colorize))
	}
	for _, warning := range outcome.TargetQuality.Warnings {
		fmt.Fprintln(out, renderStatusLine(statusWarn, "target: "+warning, colorize))
	}
}
