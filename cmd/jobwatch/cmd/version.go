package cmd

import (
	"github.com/spf13/cobra"

	"github.com/armadaproject/jobwatch/internal/jobwatchctl"
)

func versionCmd(a *jobwatchctl.App) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print client version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.Version()
		},
	}
}
