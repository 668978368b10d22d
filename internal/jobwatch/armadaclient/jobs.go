package armadaclient

import (
	"context"

	"github.com/pkg/errors"

	"github.com/armadaproject/armada/pkg/api"
	"github.com/armadaproject/jobwatch/internal/jobwatch/domain"
)

// GetJobDetails polls the Jobs service, expanding run history so that the cluster each
// run was placed on is known. Ids the server does not know are absent from the result.
func (c *Client) GetJobDetails(ctx context.Context, jobIds []string) (map[string]*domain.JobDetails, error) {
	conn, err := c.ensureApiConnection()
	if err != nil {
		return nil, err
	}
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	resp, err := api.NewJobsClient(conn).GetJobDetails(ctx, &api.JobDetailsRequest{
		JobIds:        jobIds,
		ExpandJobSpec: false,
		ExpandJobRun:  true,
	}, noRetry()...)
	if err != nil {
		return nil, errors.Wrapf(err, "error getting details of %d jobs", len(jobIds))
	}

	details := make(map[string]*domain.JobDetails, len(resp.JobDetails))
	for jobId, d := range resp.JobDetails {
		details[jobId] = ConvertJobDetails(jobId, d)
	}
	return details, nil
}

func ConvertJobDetails(jobId string, d *api.JobDetails) *domain.JobDetails {
	if d == nil {
		return &domain.JobDetails{JobId: jobId, State: domain.PolledCode(int32(api.JobState_QUEUED))}
	}
	details := &domain.JobDetails{
		JobId:     jobId,
		Queue:     d.Queue,
		JobSetId:  d.Jobset,
		Namespace: d.Namespace,
		State:     domain.PolledCode(int32(d.State)),
		Runs:      make([]domain.JobRunDetails, 0, len(d.JobRuns)),
	}
	for _, run := range d.JobRuns {
		if run == nil {
			continue
		}
		details.Runs = append(details.Runs, domain.JobRunDetails{
			RunId:   run.RunId,
			Cluster: run.Cluster,
			Node:    run.Node,
		})
	}
	return details
}

// GetJobErrors returns the last error message of each job that has one.
func (c *Client) GetJobErrors(ctx context.Context, jobIds []string) (map[string]string, error) {
	conn, err := c.ensureApiConnection()
	if err != nil {
		return nil, err
	}
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	resp, err := api.NewJobsClient(conn).GetJobErrors(ctx, &api.JobErrorsRequest{JobIds: jobIds}, noRetry()...)
	if err != nil {
		return nil, errors.Wrapf(err, "error getting errors of %d jobs", len(jobIds))
	}
	jobErrors := make(map[string]string, len(resp.JobErrors))
	for jobId, msg := range resp.JobErrors {
		if msg != "" {
			jobErrors[jobId] = msg
		}
	}
	return jobErrors, nil
}

// GetActiveQueues returns the queues with active jobs, keyed by pool.
func (c *Client) GetActiveQueues(ctx context.Context) (map[string][]string, error) {
	conn, err := c.ensureApiConnection()
	if err != nil {
		return nil, err
	}
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	resp, err := api.NewJobsClient(conn).GetActiveQueues(ctx, &api.GetActiveQueuesRequest{}, noRetry()...)
	if err != nil {
		return nil, errors.Wrap(err, "error getting active queues")
	}
	queuesByPool := make(map[string][]string, len(resp.ActiveQueuesByPool))
	for pool, queues := range resp.ActiveQueuesByPool {
		if queues == nil {
			queuesByPool[pool] = []string{}
			continue
		}
		queuesByPool[pool] = queues.Queues
	}
	return queuesByPool, nil
}
