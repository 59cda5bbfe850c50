package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"syncline/internal/features"
)

func methodDescription(method features.Method) string {
	switch method {
	case features.MethodEnergy:
		return "Frame RMS energy; fastest, robust on percussive material"
	case features.MethodSpectralFlux:
		return "Onset-sensitive spectral change; good general default"
	case features.MethodChroma:
		return "Pitch-class profile; survives level and timbre differences"
	case features.MethodMFCC:
		return "Cepstral envelope; strongest on speech, needs more audio"
	default:
		return ""
	}
}

func newMethodsCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "methods",
		Short:       "List the feature extraction methods",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			rows := make([][]string, 0, len(features.ConcreteMethods))
			for _, method := range features.ConcreteMethods {
				rows = append(rows, []string{
					method.String(),
					strconv.Itoa(method.Dim()),
					formatSeconds(method.MinSeconds()),
					methodDescription(method),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Method", "Dimensions", "Min audio", "Description"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignRight, alignLeft},
			))
			fmt.Fprintln(cmd.OutOrStdout(), "hybrid runs every method the input is long enough for and keeps the most confident result.")
			return nil
		},
	}
}
