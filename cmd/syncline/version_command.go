package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"syncline/internal/version"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Show version and build information",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			info := version.Resolve()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "syncline %s\n", info.Version)
			if info.Commit != "" {
				fmt.Fprintf(out, "  commit: %s\n", info.Commit)
			}
			if info.BuildTime != "" {
				fmt.Fprintf(out, "  built:  %s\n", info.BuildTime)
			}
			fmt.Fprintf(out, "  go:     %s\n", info.GoVersion)
			return nil
		},
	}
}
