package jobwatchctl

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/armadaproject/jobwatch/internal/common/logging"
	"github.com/armadaproject/jobwatch/internal/common/util"
	"github.com/armadaproject/jobwatch/internal/jobwatch"
	"github.com/armadaproject/jobwatch/internal/jobwatch/domain"
	"github.com/armadaproject/jobwatch/internal/jobwatch/subscription"
)

type WatchOptions struct {
	// Optional job set to start monitoring in addition to the saved ones.
	Queue    string
	JobSetId string
	// Poll the Jobs service at this interval; zero relies on the event streams only.
	RefreshInterval time.Duration
	// Minimum time between two printed snapshots.
	PrintInterval time.Duration
	// Return once every known job is in a terminal state.
	ExitIfInactive bool
}

// Watch restores the saved job sets, optionally adds one more, and prints a snapshot whenever
// the registry changes until ctx is cancelled.
func (a *App) Watch(ctx context.Context, options WatchOptions) error {
	core, err := a.Core()
	if err != nil {
		return err
	}
	if _, err := core.Restore(ctx); err != nil {
		return err
	}
	if options.Queue != "" || options.JobSetId != "" {
		if err := core.Monitor(ctx, options.Queue, options.JobSetId); err != nil {
			return err
		}
	}
	fmt.Fprintf(a.Out, "Watching %d job sets on context %s\n", len(core.Snapshot()), core.ContextName())

	var refresh <-chan time.Time
	if options.RefreshInterval > 0 {
		ticker := time.NewTicker(options.RefreshInterval)
		defer ticker.Stop()
		refresh = ticker.C
	}
	printInterval := options.PrintInterval
	if printInterval <= 0 {
		printInterval = time.Second
	}
	printTicker := time.NewTicker(printInterval)
	defer printTicker.Stop()

	dirty := false
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-core.Changes():
			dirty = true
		case <-refresh:
			if _, err := core.RefreshViaPolling(ctx); err != nil {
				logging.WithStacktrace(log.WithField("JobWatch", "Watch"), err).Warn("refresh failed")
			}
		case <-printTicker.C:
			if !dirty {
				continue
			}
			dirty = false
			snapshots := core.Snapshot()
			a.printSnapshots(snapshots)
			if options.ExitIfInactive && allFinished(snapshots) {
				return nil
			}
		}
	}
}

// Restore starts monitoring the saved job sets and prints them once the streams have had
// settle to replay their events.
func (a *App) Restore(ctx context.Context, settle time.Duration) error {
	core, err := a.Core()
	if err != nil {
		return err
	}
	restored, err := core.Restore(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "Restored %d job sets\n", restored)
	if !sleep(ctx, settle) {
		return ctx.Err()
	}
	a.printSnapshots(core.Snapshot())
	return nil
}

// Refresh restores the saved job sets, lets their streams replay for settle, then polls the
// Jobs service for the state of every job found and prints the result.
func (a *App) Refresh(ctx context.Context, settle time.Duration) error {
	core, err := a.Core()
	if err != nil {
		return err
	}
	if _, err := core.Restore(ctx); err != nil {
		return err
	}
	if !sleep(ctx, settle) {
		return ctx.Err()
	}
	refreshed, err := core.RefreshViaPolling(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "Refreshed %d jobs\n", refreshed)
	a.printSnapshots(core.Snapshot())
	return nil
}

func (a *App) Stop(ctx context.Context, queue string, jobSetId string) error {
	core, err := a.Core()
	if err != nil {
		return err
	}
	if _, err := core.Restore(ctx); err != nil {
		return err
	}
	if err := core.StopMonitoring(ctx, queue, jobSetId); err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "Stopped monitoring %s/%s\n", queue, jobSetId)
	return nil
}

func (a *App) Clear(ctx context.Context) error {
	core, err := a.Core()
	if err != nil {
		return err
	}
	if err := core.ClearAll(ctx); err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "Cleared all monitored job sets\n")
	return nil
}

func (a *App) printSnapshots(snapshots []jobwatch.JobSetSnapshot) {
	if len(snapshots) == 0 {
		fmt.Fprintf(a.Out, "No job sets monitored\n")
		return
	}
	w := util.NewTabbedStringBuilder(1, 1, 2, ' ', 0)
	for _, snapshot := range snapshots {
		w.WriteRow(snapshot.Key, snapshot.Subscription, summarise(snapshot.Jobs))
		if snapshot.Subscription == subscription.Errored && snapshot.Err != nil {
			w.Writef("  error:\t%s\n", snapshot.Err)
		}
		for _, job := range snapshot.Jobs {
			w.Writef("  %s\t%s\t%s\t%s\n", job.JobId, job.State, formatTime(job.Created), job.Error)
		}
	}
	fmt.Fprint(a.Out, w.String())
}

func summarise(jobs []domain.JobRecord) string {
	counts := make(map[domain.JobState]int)
	for _, job := range jobs {
		counts[job.State]++
	}
	summary := ""
	for _, state := range domain.AllJobStates {
		if summary != "" {
			summary += ", "
		}
		summary += fmt.Sprintf("%s: %d", state, counts[state])
	}
	return summary
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(time.Stamp)
}

func allFinished(snapshots []jobwatch.JobSetSnapshot) bool {
	total := 0
	for _, snapshot := range snapshots {
		for _, job := range snapshot.Jobs {
			if !job.State.IsTerminal() {
				return false
			}
			total++
		}
	}
	return total > 0
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
