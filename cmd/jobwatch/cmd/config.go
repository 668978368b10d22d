package cmd

import (
	"github.com/spf13/cobra"

	"github.com/armadaproject/jobwatch/internal/jobwatchctl"
)

func configCmd(a *jobwatchctl.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Operations on the armadactl config file",
	}
	cmd.AddCommand(
		getContextsCmd(a),
		currentContextCmd(a),
		useContextCmd(a),
	)
	return cmd
}

func getContextsCmd(a *jobwatchctl.App) *cobra.Command {
	return &cobra.Command{
		Use:   "get-contexts",
		Short: "Retrieve a list of available contexts",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return initParams(cmd, a.Params)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.GetContexts()
		},
	}
}

func currentContextCmd(a *jobwatchctl.App) *cobra.Command {
	return &cobra.Command{
		Use:   "current-context",
		Short: "Retrieve the current context",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return initParams(cmd, a.Params)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.CurrentContext()
		},
	}
}

func useContextCmd(a *jobwatchctl.App) *cobra.Command {
	return &cobra.Command{
		Use:   "use-context <context>",
		Short: "Set the current context",
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return initParams(cmd, a.Params)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.UseContext(cmd.Context(), args[0])
		},
	}
}
