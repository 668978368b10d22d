package jobwatch

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/armadaproject/jobwatch/internal/common/armadaerrors"
	"github.com/armadaproject/jobwatch/internal/jobwatch/domain"
	"github.com/armadaproject/jobwatch/internal/jobwatch/lookout"
	"github.com/armadaproject/jobwatch/internal/jobwatch/reconcile"
)

// LookoutLimit bounds how many jobs are read from Lookout per request.
const LookoutLimit = 500

func (a *App) browser() (JobBrowser, error) {
	s, err := a.session()
	if err != nil {
		return nil, err
	}
	if s.conn.Browser == nil {
		return nil, &armadaerrors.ErrNotConfigured{Setting: "lookoutUrl", Message: "set lookoutUrl on the context to browse job sets"}
	}
	return s.conn.Browser, nil
}

// BrowseJobSets lists the job sets of the most recently submitted jobs in a queue.
func (a *App) BrowseJobSets(ctx context.Context, queue string) ([]string, error) {
	if queue == "" {
		return nil, &armadaerrors.ErrInvalidArgument{Name: "queue", Value: queue, Message: "queue must not be empty"}
	}
	browser, err := a.browser()
	if err != nil {
		return nil, err
	}
	return browser.JobSetsInQueue(ctx, queue, LookoutLimit)
}

// LoadJobSetFromLookout adds the jobs Lookout knows for a job set, optionally only those in
// state, and then monitors the job set. Jobs already in the registry keep their state.
// Returns the number of jobs read from Lookout.
func (a *App) LoadJobSetFromLookout(ctx context.Context, queue string, jobSetId string, state string) (int, error) {
	key := domain.NewJobSetKey(queue, jobSetId)
	if err := validateKey(key); err != nil {
		return 0, err
	}
	browser, err := a.browser()
	if err != nil {
		return 0, err
	}
	jobs, err := browser.SearchJobs(ctx, queue, jobSetId, state, LookoutLimit)
	if err != nil {
		return 0, err
	}

	for _, job := range jobs {
		a.registry.UpsertJob(key, job.JobId, reconcile.FromPolledText(job.State), domain.JobAttributes{
			Created:   job.Submitted,
			Namespace: job.Namespace,
			Priority:  job.Priority,
		})
		a.rememberCluster(job.JobId, lookoutDetails(job))
	}
	log.WithFields(log.Fields{"queue": queue, "job_set_id": jobSetId}).Infof("loaded %d jobs from lookout", len(jobs))

	if err := a.Monitor(ctx, queue, jobSetId); err != nil {
		return len(jobs), err
	}
	return len(jobs), nil
}

func lookoutDetails(job lookout.Job) *domain.JobDetails {
	details := &domain.JobDetails{
		JobId:     job.JobId,
		Queue:     job.Queue,
		JobSetId:  job.JobSet,
		Namespace: job.Namespace,
		State:     domain.PolledText(job.State),
		Runs:      make([]domain.JobRunDetails, 0, len(job.Runs)),
	}
	for _, run := range job.Runs {
		details.Runs = append(details.Runs, domain.JobRunDetails{RunId: run.RunId, Cluster: run.Cluster, Node: run.Node})
	}
	return details
}
