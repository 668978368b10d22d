package jobwatchctl

import (
	"context"
	"fmt"
	"sort"

	"github.com/pkg/errors"
	"sigs.k8s.io/yaml"

	"github.com/armadaproject/armada/pkg/api"
	"github.com/armadaproject/jobwatch/internal/jobwatch"
	"github.com/armadaproject/jobwatch/pkg/client/validation"
)

// Submit submits the jobs of a submit file and adds the accepted ones to the watched jobs.
func (a *App) Submit(ctx context.Context, path string) error {
	submitFile, err := validation.ReadSubmitFile(path)
	if err != nil {
		return err
	}
	core, err := a.Core()
	if err != nil {
		return err
	}
	if _, err := core.Restore(ctx); err != nil {
		return err
	}

	results, err := core.Submit(ctx, submitFile)
	for _, result := range results {
		if result.Error != "" {
			fmt.Fprintf(a.Out, "Submission failed: %s\n", result.Error)
			continue
		}
		fmt.Fprintf(a.Out, "Submitted job id: %s (set: %s)\n", result.JobId, submitFile.JobSetId)
	}
	return err
}

func (a *App) Cancel(ctx context.Context, queue string, jobSetId string, jobId string) error {
	core, err := a.Core()
	if err != nil {
		return err
	}
	cancelled, err := core.CancelJob(ctx, queue, jobSetId, jobId)
	if err != nil {
		return errors.WithMessagef(err, "error cancelling job %s", jobId)
	}
	for _, id := range cancelled {
		fmt.Fprintf(a.Out, "Requested cancellation for job %s\n", id)
	}
	return nil
}

// Logs prints the logs of a job's pod, fetched from the Binoculars of the cluster it ran on.
func (a *App) Logs(ctx context.Context, jobId string, options jobwatch.LogOptions) error {
	core, err := a.Core()
	if err != nil {
		return err
	}
	lines, err := core.GetJobLogs(ctx, jobId, options)
	if err != nil {
		return err
	}
	for _, line := range lines {
		fmt.Fprintf(a.Out, "%s %s\n", line.Timestamp, line.Line)
	}
	return nil
}

func (a *App) CreateQueue(ctx context.Context, queue *api.Queue) error {
	core, err := a.Core()
	if err != nil {
		return err
	}
	if err := core.CreateQueue(ctx, queue); err != nil {
		return errors.WithMessagef(err, "error creating queue %s", queue.GetName())
	}
	fmt.Fprintf(a.Out, "Created queue %s\n", queue.Name)
	return nil
}

// Queues prints every queue as a yaml document.
func (a *App) Queues(ctx context.Context) error {
	core, err := a.Core()
	if err != nil {
		return err
	}
	queues, err := core.Queues(ctx)
	if err != nil {
		return err
	}
	for _, queue := range queues {
		out, err := yaml.Marshal(queue)
		if err != nil {
			return errors.Wrapf(err, "error printing queue %s", queue.Name)
		}
		fmt.Fprintf(a.Out, "---\n%s", out)
	}
	return nil
}

// ActiveQueues prints the queues with active jobs grouped by pool.
func (a *App) ActiveQueues(ctx context.Context) error {
	core, err := a.Core()
	if err != nil {
		return err
	}
	byPool, err := core.ActiveQueues(ctx)
	if err != nil {
		return err
	}
	pools := make([]string, 0, len(byPool))
	for pool := range byPool {
		pools = append(pools, pool)
	}
	sort.Strings(pools)
	for _, pool := range pools {
		fmt.Fprintf(a.Out, "%s:\n", pool)
		for _, queue := range byPool[pool] {
			fmt.Fprintf(a.Out, "  %s\n", queue)
		}
	}
	return nil
}

// JobSets prints the job sets Lookout knows for a queue.
func (a *App) JobSets(ctx context.Context, queue string) error {
	core, err := a.Core()
	if err != nil {
		return err
	}
	jobSets, err := core.BrowseJobSets(ctx, queue)
	if err != nil {
		return err
	}
	for _, jobSet := range jobSets {
		fmt.Fprintln(a.Out, jobSet)
	}
	return nil
}

// Load adds the jobs Lookout knows for a job set and starts monitoring it.
func (a *App) Load(ctx context.Context, queue string, jobSetId string, state string) error {
	core, err := a.Core()
	if err != nil {
		return err
	}
	if _, err := core.Restore(ctx); err != nil {
		return err
	}
	loaded, err := core.LoadJobSetFromLookout(ctx, queue, jobSetId, state)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "Loaded %d jobs into %s/%s\n", loaded, queue, jobSetId)
	return nil
}
