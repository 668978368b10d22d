package cmd

import (
	"context"
	"fmt"
	"time"

	grpc_prometheus "github.com/grpc-ecosystem/go-grpc-prometheus"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/armadaproject/jobwatch/internal/common"
	"github.com/armadaproject/jobwatch/internal/jobwatch/metrics"
	"github.com/armadaproject/jobwatch/internal/jobwatchctl"
)

func watchCmd(a *jobwatchctl.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [<queue> <jobSet>]",
		Short: "Watch the saved job sets, optionally adding one.",
		Long: `Restores the saved job sets and prints their jobs whenever a state changes.

When a queue and job set are given they are added to the saved job sets first.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 && len(args) != 2 {
				return fmt.Errorf("accepts 0 or 2 args, received %d", len(args))
			}
			return nil
		},
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return initParams(cmd, a.Params)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			options := jobwatchctl.WatchOptions{}
			if len(args) == 2 {
				options.Queue, options.JobSetId = args[0], args[1]
			}
			var err error
			if options.RefreshInterval, err = cmd.Flags().GetDuration("refresh"); err != nil {
				return fmt.Errorf("error reading refresh: %s", err)
			}
			if options.PrintInterval, err = cmd.Flags().GetDuration("print-interval"); err != nil {
				return fmt.Errorf("error reading print-interval: %s", err)
			}
			if options.ExitIfInactive, err = cmd.Flags().GetBool("exit-if-inactive"); err != nil {
				return fmt.Errorf("error reading exit-if-inactive: %s", err)
			}

			if port := a.Params.Config.MetricsPort; port > 0 {
				registry := prometheus.NewRegistry()
				registry.MustRegister(grpc_prometheus.DefaultClientMetrics)
				a.Params.Observer = metrics.NewMetrics(registry)
				shutdownMetricServer := common.ServeMetricsFor(port, registry)
				defer shutdownMetricServer()
			}

			ctx, cancel := signalContext(cmd.Context())
			defer cancel()
			g, ctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				defer cancel()
				return a.Watch(ctx, options)
			})
			return g.Wait()
		},
		PostRunE: closeApp(a),
	}
	cmd.Flags().Duration("refresh", 0, "Poll the Jobs service for job states at this interval (0 disables polling)")
	cmd.Flags().Duration("print-interval", time.Second, "Minimum time between two printed snapshots")
	cmd.Flags().Bool("exit-if-inactive", false, "Exit once every job is finished")
	return cmd
}

func restoreCmd(a *jobwatchctl.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restore",
		Short: "Reopen the event streams of the saved job sets and print their jobs.",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return initParams(cmd, a.Params)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			settle, err := cmd.Flags().GetDuration("settle")
			if err != nil {
				return fmt.Errorf("error reading settle: %s", err)
			}
			ctx, cancel := signalContext(cmd.Context())
			defer cancel()
			return a.Restore(ctx, settle)
		},
		PostRunE: closeApp(a),
	}
	cmd.Flags().Duration("settle", 2*time.Second, "Time given to the event streams to replay before printing")
	return cmd
}

func refreshCmd(a *jobwatchctl.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Poll the Jobs service for the state of every job in the saved job sets.",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return initParams(cmd, a.Params)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			settle, err := cmd.Flags().GetDuration("settle")
			if err != nil {
				return fmt.Errorf("error reading settle: %s", err)
			}
			ctx, cancel := signalContext(cmd.Context())
			defer cancel()
			return a.Refresh(ctx, settle)
		},
		PostRunE: closeApp(a),
	}
	cmd.Flags().Duration("settle", 2*time.Second, "Time given to the event streams to discover jobs before polling")
	return cmd
}

func stopCmd(a *jobwatchctl.App) *cobra.Command {
	return &cobra.Command{
		Use:   "stop <queue> <jobSet>",
		Short: "Stop watching a job set and remove it from the saved job sets.",
		Args:  cobra.ExactArgs(2),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return initParams(cmd, a.Params)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.Stop(cmd.Context(), args[0], args[1])
		},
		PostRunE: closeApp(a),
	}
}

func clearCmd(a *jobwatchctl.App) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Forget every saved job set.",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return initParams(cmd, a.Params)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.Clear(cmd.Context())
		},
		PostRunE: closeApp(a),
	}
}

func loadCmd(a *jobwatchctl.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load <queue> <jobSet>",
		Short: "Add the jobs Lookout knows for a job set and watch it.",
		Args:  cobra.ExactArgs(2),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return initParams(cmd, a.Params)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := cmd.Flags().GetString("state")
			if err != nil {
				return fmt.Errorf("error reading state: %s", err)
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), a.Params.Config.RpcTimeout)
			defer cancel()
			return a.Load(ctx, args[0], args[1], state)
		},
		PostRunE: closeApp(a),
	}
	cmd.Flags().String("state", "", "Only load jobs in this state, e.g. RUNNING")
	return cmd
}
