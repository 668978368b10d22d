package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/armadaproject/jobwatch/internal/jobwatch"
	"github.com/armadaproject/jobwatch/internal/jobwatchctl"
)

func submitCmd(a *jobwatchctl.App) *cobra.Command {
	return &cobra.Command{
		Use:   "submit ./path/to/jobs.yaml",
		Short: "Submit jobs to armada and watch them",
		Long: `Submit jobs to armada from file. Accepted jobs are added to the watched jobs.

Example jobs.yaml:

queue: test
jobSetId: set1
jobs:
  - priority: 0
    podSpec:
      ... kubernetes pod spec ...
`,
		Args: cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return initParams(cmd, a.Params)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.Submit(cmd.Context(), args[0])
		},
		PostRunE: closeApp(a),
	}
}

func cancelCmd(a *jobwatchctl.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cancel",
		Short: "Cancels jobs in armada",
		Long:  `Cancels a job by id. The queue and job set may be given to narrow the request.`,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return initParams(cmd, a.Params)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			jobId, err := cmd.Flags().GetString("jobId")
			if err != nil {
				return fmt.Errorf("error reading jobId: %s", err)
			}
			queue, err := cmd.Flags().GetString("queue")
			if err != nil {
				return fmt.Errorf("error reading queue: %s", err)
			}
			jobSet, err := cmd.Flags().GetString("jobSet")
			if err != nil {
				return fmt.Errorf("error reading jobSet: %s", err)
			}
			return a.Cancel(cmd.Context(), queue, jobSet, jobId)
		},
		PostRunE: closeApp(a),
	}
	cmd.Flags().String("jobId", "", "job to cancel")
	cmd.Flags().String("queue", "", "queue of the job")
	cmd.Flags().String("jobSet", "", "job set of the job")
	return cmd
}

func logsCmd(a *jobwatchctl.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logs <jobId>",
		Short: "Print the logs of a job",
		Long: `Fetches the logs of a job's pod from the Binoculars of the cluster the job last ran on.

The cluster is looked up with the Jobs service; jobs without a run are looked up on the
"default" cluster.`,
		Args: cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return initParams(cmd, a.Params)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			options := jobwatch.LogOptions{}
			var err error
			if options.PodNumber, err = cmd.Flags().GetInt32("pod"); err != nil {
				return fmt.Errorf("error reading pod: %s", err)
			}
			if options.Namespace, err = cmd.Flags().GetString("namespace"); err != nil {
				return fmt.Errorf("error reading namespace: %s", err)
			}
			if options.SinceTime, err = cmd.Flags().GetString("since-time"); err != nil {
				return fmt.Errorf("error reading since-time: %s", err)
			}
			if options.TailLines, err = cmd.Flags().GetInt64("tail"); err != nil {
				return fmt.Errorf("error reading tail: %s", err)
			}
			return a.Logs(cmd.Context(), args[0], options)
		},
		PostRunE: closeApp(a),
	}
	cmd.Flags().Int32("pod", 0, "Pod number of the job")
	cmd.Flags().String("namespace", "", "Namespace of the job's pod (defaults to the job's namespace)")
	cmd.Flags().String("since-time", "", "Only return logs after this RFC3339 timestamp")
	cmd.Flags().Int64("tail", 0, "Number of lines from the end of the logs to show (0 uses the configured default)")
	return cmd
}
