package jobwatch

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/armadaproject/jobwatch/internal/common/logging"
	"github.com/armadaproject/jobwatch/internal/jobwatch/domain"
	"github.com/armadaproject/jobwatch/internal/jobwatch/reconcile"
)

// RefreshViaPolling asks the Jobs service for the current state of every known job and
// overwrites the registry with the answers. Error messages of failed jobs are fetched
// afterwards; failing to fetch them does not fail the refresh.
// Returns the number of jobs the service reported on.
func (a *App) RefreshViaPolling(ctx context.Context) (int, error) {
	s, err := a.session()
	if err != nil {
		return 0, err
	}
	jobIds := a.registry.AllJobIds()
	if len(jobIds) == 0 {
		log.Info("no jobs to refresh")
		return 0, nil
	}

	details, err := s.conn.Api.GetJobDetails(ctx, jobIds)
	if err != nil {
		return 0, err
	}

	var failed []string
	for jobId, d := range details {
		state := reconcile.FromPolled(d.State)
		a.registry.SetState(jobId, state)
		if state == domain.Failed {
			failed = append(failed, jobId)
		}
		a.rememberCluster(jobId, d)
	}
	log.Infof("refreshed %d of %d jobs", len(details), len(jobIds))

	if len(failed) > 0 {
		jobErrors, err := s.conn.Api.GetJobErrors(ctx, failed)
		if err != nil {
			logging.WithStacktrace(log.WithField("jobs", len(failed)), err).Warn("failed to get job errors")
		} else {
			for jobId, msg := range jobErrors {
				a.registry.SetError(jobId, msg)
			}
		}
	}
	return len(details), nil
}
