package jobwatch

import (
	"context"

	"github.com/patrickmn/go-cache"
	log "github.com/sirupsen/logrus"

	"github.com/armadaproject/jobwatch/internal/common/armadaerrors"
	"github.com/armadaproject/jobwatch/internal/common/logging"
	"github.com/armadaproject/jobwatch/internal/jobwatch/domain"
)

// DefaultClusterId is used to route log requests when the cluster a job ran on is unknown.
const DefaultClusterId = "default"

type LogOptions struct {
	PodNumber int32
	// Defaults to the namespace recorded for the job.
	Namespace string
	SinceTime string
	// Zero uses the configured default.
	TailLines int64
}

// GetJobLogs fetches a job's logs from the Binoculars of the cluster its latest run was on.
// An empty result is not an error.
func (a *App) GetJobLogs(ctx context.Context, jobId string, options LogOptions) ([]domain.LogLine, error) {
	if jobId == "" {
		return nil, &armadaerrors.ErrInvalidArgument{Name: "jobId", Value: jobId, Message: "job id must not be empty"}
	}
	s, err := a.session()
	if err != nil {
		return nil, err
	}

	clusterId, namespace := a.locateJob(ctx, s, jobId)
	route, err := s.routes.RouteFor(clusterId)
	if err != nil {
		return nil, err
	}

	request := &domain.LogRequest{
		JobId:     jobId,
		PodNumber: options.PodNumber,
		Namespace: options.Namespace,
		SinceTime: options.SinceTime,
		TailLines: options.TailLines,
	}
	if request.Namespace == "" {
		request.Namespace = namespace
	}
	if request.TailLines == 0 {
		request.TailLines = a.config.LogTailLines
	}
	log.WithFields(log.Fields{
		"job_id":  jobId,
		"cluster": clusterId,
		"address": route.Address,
	}).Debug("fetching logs")
	return route.Client.Logs(ctx, request)
}

// locateJob returns the cluster of the job's latest run, falling back to DefaultClusterId,
// and the job's namespace when known.
func (a *App) locateJob(ctx context.Context, s *session, jobId string) (string, string) {
	namespace := ""
	if record, ok := a.registry.Job(jobId); ok {
		namespace = record.Namespace
	}
	if a.clusters != nil {
		if cluster, ok := a.clusters.Get(jobId); ok {
			return cluster.(string), namespace
		}
	}

	details, err := s.conn.Api.GetJobDetails(ctx, []string{jobId})
	if err != nil {
		logging.WithStacktrace(log.WithField("job_id", jobId), err).Warn("could not get job details to find its cluster, using default")
		return DefaultClusterId, namespace
	}
	d, ok := details[jobId]
	if !ok {
		return DefaultClusterId, namespace
	}
	if namespace == "" {
		namespace = d.Namespace
	}
	cluster, ok := a.rememberCluster(jobId, d)
	if !ok {
		return DefaultClusterId, namespace
	}
	return cluster, namespace
}

func (a *App) rememberCluster(jobId string, d *domain.JobDetails) (string, bool) {
	cluster, ok := d.LatestCluster()
	if ok && a.clusters != nil {
		a.clusters.Set(jobId, cluster, cache.DefaultExpiration)
	}
	return cluster, ok
}
