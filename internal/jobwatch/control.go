package jobwatch

import (
	"context"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/armadaproject/armada/pkg/api"
	"github.com/armadaproject/jobwatch/internal/common/armadaerrors"
	"github.com/armadaproject/jobwatch/internal/jobwatch/armadaclient"
	"github.com/armadaproject/jobwatch/internal/jobwatch/domain"
	clientdomain "github.com/armadaproject/jobwatch/pkg/client/domain"
)

// Submit submits every job of the file. Accepted jobs are added to the registry as queued,
// which starts watching their job set. Results are returned even when a later chunk fails.
func (a *App) Submit(ctx context.Context, file *clientdomain.JobSubmitFile) ([]armadaclient.SubmitResult, error) {
	key := domain.NewJobSetKey(file.Queue, file.JobSetId)
	if err := validateKey(key); err != nil {
		return nil, err
	}
	if len(file.Jobs) == 0 {
		return nil, &armadaerrors.ErrInvalidArgument{Name: "jobs", Value: "", Message: "no jobs to submit"}
	}
	s, err := a.session()
	if err != nil {
		return nil, err
	}

	results, submitErr := s.conn.Api.SubmitJobs(ctx, file.Queue, file.JobSetId, file.Jobs)
	now := a.clock.Now()
	for i, result := range results {
		if result.Error != "" || result.JobId == "" {
			log.WithFields(log.Fields{"queue": file.Queue, "job_set_id": file.JobSetId}).Warnf("job was not accepted: %s", result.Error)
			continue
		}
		attrs := domain.JobAttributes{Created: now}
		if i < len(file.Jobs) {
			attrs.Namespace = file.Jobs[i].Namespace
			attrs.Priority = file.Jobs[i].Priority
		}
		if err := a.AddJob(ctx, key, result.JobId, domain.Queued, attrs); err != nil {
			return results, err
		}
	}
	return results, submitErr
}

// CancelJob asks the server to cancel a job. The registry is updated by the resulting event.
func (a *App) CancelJob(ctx context.Context, queue string, jobSetId string, jobId string) ([]string, error) {
	if jobId == "" {
		return nil, &armadaerrors.ErrInvalidArgument{Name: "jobId", Value: jobId, Message: "job id must not be empty"}
	}
	s, err := a.session()
	if err != nil {
		return nil, err
	}
	return s.conn.Api.CancelJob(ctx, queue, jobSetId, jobId)
}

func (a *App) CreateQueue(ctx context.Context, queue *api.Queue) error {
	if queue == nil || queue.Name == "" {
		return &armadaerrors.ErrInvalidArgument{Name: "name", Value: "", Message: "queue name must not be empty"}
	}
	if queue.PriorityFactor <= 0 {
		return &armadaerrors.ErrInvalidArgument{Name: "priorityFactor", Value: queue.PriorityFactor, Message: "must be positive"}
	}
	s, err := a.session()
	if err != nil {
		return err
	}
	return s.conn.Api.CreateQueue(ctx, queue)
}

func (a *App) Queues(ctx context.Context) ([]*api.Queue, error) {
	s, err := a.session()
	if err != nil {
		return nil, err
	}
	return s.conn.Api.Queues(ctx)
}

// ActiveQueues returns the queues with active jobs keyed by pool.
func (a *App) ActiveQueues(ctx context.Context) (map[string][]string, error) {
	s, err := a.session()
	if err != nil {
		return nil, err
	}
	queues, err := s.conn.Api.GetActiveQueues(ctx)
	if err != nil {
		return nil, errors.WithMessage(err, "error listing active queues")
	}
	return queues, nil
}
