package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/armadaproject/armada/pkg/api"
	"github.com/armadaproject/jobwatch/internal/jobwatchctl"
)

func createCmd(a *jobwatchctl.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create Armada resource. Supported: queue",
	}
	cmd.AddCommand(queueCreateCmdWithApp(a))
	return cmd
}

// Takes a caller-supplied app struct; useful for testing.
func queueCreateCmdWithApp(a *jobwatchctl.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "queue <queue-name>",
		Short: "Create new queue",
		Long:  `Every job submitted to armada needs to be associated with queue.`,
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return initParams(cmd, a.Params)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			priorityFactor, err := cmd.Flags().GetFloat64("priority-factor")
			if err != nil {
				return fmt.Errorf("error reading priority-factor: %s", err)
			}
			owners, err := cmd.Flags().GetStringSlice("owners")
			if err != nil {
				return fmt.Errorf("error reading owners: %s", err)
			}
			groups, err := cmd.Flags().GetStringSlice("group-owners")
			if err != nil {
				return fmt.Errorf("error reading group-owners: %s", err)
			}
			return a.CreateQueue(cmd.Context(), &api.Queue{
				Name:           args[0],
				PriorityFactor: priorityFactor,
				UserOwners:     owners,
				GroupOwners:    groups,
			})
		},
		PostRunE: closeApp(a),
	}
	cmd.Flags().Float64("priority-factor", 1, "Set queue priority factor - lower number makes queue more important, must be > 0.")
	cmd.Flags().StringSlice("owners", []string{}, "Comma separated list of queue owners, defaults to current user.")
	cmd.Flags().StringSlice("group-owners", []string{}, "Comma separated list of queue group owners, defaults to empty list.")
	return cmd
}

func getCmd(a *jobwatchctl.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get",
		Short: "Retrieve information about armada resources. Supported: queues, active-queues, jobsets",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "queues",
			Short: "Print every queue",
			Args:  cobra.NoArgs,
			PreRunE: func(cmd *cobra.Command, args []string) error {
				return initParams(cmd, a.Params)
			},
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.Queues(cmd.Context())
			},
			PostRunE: closeApp(a),
		},
		&cobra.Command{
			Use:   "active-queues",
			Short: "Print the queues with active jobs, by pool",
			Args:  cobra.NoArgs,
			PreRunE: func(cmd *cobra.Command, args []string) error {
				return initParams(cmd, a.Params)
			},
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.ActiveQueues(cmd.Context())
			},
			PostRunE: closeApp(a),
		},
		&cobra.Command{
			Use:   "jobsets <queue>",
			Short: "Print the job sets of a queue known to Lookout",
			Args:  cobra.ExactArgs(1),
			PreRunE: func(cmd *cobra.Command, args []string) error {
				return initParams(cmd, a.Params)
			},
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.JobSets(cmd.Context(), args[0])
			},
			PostRunE: closeApp(a),
		},
	)
	return cmd
}
