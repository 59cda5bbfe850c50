package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"syncline/internal/media"
	"syncline/internal/preflight"
)

func newQualityCommand(ctx *commandContext) *cobra.Command {
	var noiseGate float64
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "quality <file.wav>",
		Short: "Analyze signal quality and report alignment suitability",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			gate := cfg.AlignConfig().NoiseGateDB
			if cmd.Flags().Changed("noise-gate") {
				gate = noiseGate
			}

			buf, err := media.LoadWAV(args[0])
			if err != nil {
				return fmt.Errorf("load %s: %w", args[0], err)
			}

			report := preflight.AnalyzeAudioQuality(buf, gate)
			if jsonOutput {
				return writeJSON(cmd, report)
			}
			renderQuality(cmd, args[0], report)
			return nil
		},
	}

	cmd.Flags().Float64Var(&noiseGate, "noise-gate", 0, "Silence threshold in dBFS")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the report as JSON")
	return cmd
}

func renderQuality(cmd *cobra.Command, path string, report preflight.QualityReport) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)

	fmt.Fprintf(out, "Quality report for %s\n", path)
	fmt.Fprintln(out, renderKVTable(
		[][]string{
			{"Samples", formatSamples(int64(report.SampleCount))},
			{"Duration", formatSeconds(report.DurationSeconds)},
			{"RMS level", formatRatio(report.RMSLevel)},
			{"Peak level", formatRatio(report.PeakLevel)},
			{"Dynamic range", formatDB(report.DynamicRangeDB)},
			{"Silence ratio", formatPercent(report.SilenceRatio)},
			{"Clipping ratio", formatPercent(report.ClippingRatio)},
			{"Spectral centroid", fmt.Sprintf("%.0f Hz", report.SpectralCentroid)},
			{"Spectral rolloff", fmt.Sprintf("%.0f Hz", report.SpectralRolloff)},
			{"Zero-crossing rate", formatRatio(report.ZeroCrossingRate)},
			{"Sufficient content", yesNo(report.SufficientContent)},
			{"Excessive clipping", yesNo(report.ExcessiveClipping)},
			{"Good dynamic range", yesNo(report.GoodDynamicRange)},
		},
	))

	if len(report.Warnings) == 0 {
		fmt.Fprintln(out, renderStatusLine(statusOK, "no quality issues detected", colorize))
		return
	}
	for _, warning := range report.Warnings {
		fmt.Fprintln(out, renderStatusLine(statusWarn, warning, colorize))
	}
	for _, rec := range report.Recommendations {
		fmt.Fprintln(out, renderStatusLine(statusInfo, rec, colorize))
	}
}
