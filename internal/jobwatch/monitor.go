package jobwatch

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/armadaproject/jobwatch/internal/common/armadaerrors"
	"github.com/armadaproject/jobwatch/internal/jobwatch/domain"
	"github.com/armadaproject/jobwatch/internal/jobwatch/subscription"
)

// JobSetSnapshot is a point-in-time view of one watched job set.
type JobSetSnapshot struct {
	Key          domain.JobSetKey
	Subscription subscription.State
	// Set when Subscription is Errored.
	Err  error
	Jobs []domain.JobRecord
}

func validateKey(key domain.JobSetKey) error {
	if key.Queue == "" {
		return &armadaerrors.ErrInvalidArgument{Name: "queue", Value: key.Queue, Message: "queue must not be empty"}
	}
	if key.JobSetId == "" {
		return &armadaerrors.ErrInvalidArgument{Name: "jobSetId", Value: key.JobSetId, Message: "job set id must not be empty"}
	}
	return nil
}

// Monitor starts watching a job set, replacing any stream already open for it, and saves
// the list of watched job sets.
func (a *App) Monitor(ctx context.Context, queue string, jobSetId string) error {
	key := domain.NewJobSetKey(queue, jobSetId)
	if err := validateKey(key); err != nil {
		return err
	}
	s, err := a.session()
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{"queue": queue, "job_set_id": jobSetId}).Info("monitoring job set")
	a.registry.EnsureJobSet(key)
	s.subscriptions.Monitor(ctx, key)
	a.persist(ctx)
	return nil
}

// AddJob records a job. The first job of a job set not yet watched starts its stream.
func (a *App) AddJob(ctx context.Context, key domain.JobSetKey, jobId string, state domain.JobState, attrs domain.JobAttributes) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if jobId == "" {
		return &armadaerrors.ErrInvalidArgument{Name: "jobId", Value: jobId, Message: "job id must not be empty"}
	}
	s, err := a.session()
	if err != nil {
		return err
	}
	if a.registry.UpsertJob(key, jobId, state, attrs) {
		s.subscriptions.Monitor(ctx, key)
		a.persist(ctx)
	}
	return nil
}

// RestartAll reopens the stream of every watched job set and returns how many were restarted.
func (a *App) RestartAll(ctx context.Context) (int, error) {
	s, err := a.session()
	if err != nil {
		return 0, err
	}
	restarted := s.subscriptions.RestartAll(ctx)
	log.Infof("restarted %d event streams", restarted)
	return restarted, nil
}

// StopMonitoring cancels one job set's stream, drops its jobs and removes it from the saved list.
func (a *App) StopMonitoring(ctx context.Context, queue string, jobSetId string) error {
	s, err := a.session()
	if err != nil {
		return err
	}
	key := domain.NewJobSetKey(queue, jobSetId)
	s.subscriptions.Cancel(key)
	if !a.registry.RemoveJobSet(key) {
		return &armadaerrors.ErrNotFound{Type: "job set", Value: key.String()}
	}
	a.persist(ctx)
	return nil
}

// ClearAll cancels every stream, empties the registry and the saved list.
func (a *App) ClearAll(ctx context.Context) error {
	if s, err := a.session(); err == nil {
		s.subscriptions.CancelAll()
	}
	a.registry.ClearAll()
	if a.clusters != nil {
		a.clusters.Flush()
	}
	if a.store == nil {
		return nil
	}
	return a.store.Save(ctx, []domain.MonitoredJobSet{})
}

// Changes is signalled after every registry mutation. Signals coalesce.
func (a *App) Changes() <-chan struct{} {
	return a.registry.Changes()
}

func (a *App) Job(jobId string) (domain.JobRecord, bool) {
	return a.registry.Job(jobId)
}

// Snapshot returns every watched job set in queue, job set order.
func (a *App) Snapshot() []JobSetSnapshot {
	var subscriptions *subscription.Manager
	if s, err := a.session(); err == nil {
		subscriptions = s.subscriptions
	}
	keys := a.registry.ListJobSetKeys()
	snapshots := make([]JobSetSnapshot, 0, len(keys))
	for _, key := range keys {
		snapshot := JobSetSnapshot{
			Key:          key,
			Subscription: subscription.Unsubscribed,
			Jobs:         a.registry.Jobs(key),
		}
		if subscriptions != nil {
			if handle, ok := subscriptions.Handle(key); ok {
				snapshot.Subscription = handle.State()
				snapshot.Err = handle.Err()
			}
		}
		snapshots = append(snapshots, snapshot)
	}
	return snapshots
}
