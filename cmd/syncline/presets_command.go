package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"syncline/internal/align"
)

func newPresetsCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "presets",
		Short:       "List the available alignment presets",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			rows := make([][]string, 0)
			for _, preset := range align.Presets() {
				cfg := preset.Config
				rows = append(rows, []string{
					preset.Name,
					strconv.Itoa(cfg.WindowSize),
					strconv.Itoa(cfg.HopSize),
					formatRatio(cfg.ConfidenceThreshold),
					formatDB(cfg.NoiseGateDB),
					yesNo(cfg.DriftCorrection),
					preset.Description,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Preset", "Window", "Hop", "Threshold", "Gate", "Drift", "Description"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight, alignLeft, alignLeft},
			))
			return nil
		},
	}
}
