package repository

import (
	"context"

	"github.com/armadaproject/jobwatch/internal/jobwatch/domain"
)

// MonitoredJobSetStore persists the list of job sets being monitored so that it can be
// restored on the next start. Save replaces the whole list.
type MonitoredJobSetStore interface {
	Save(ctx context.Context, jobSets []domain.MonitoredJobSet) error
	Load(ctx context.Context) ([]domain.MonitoredJobSet, error)
	HealthCheck(ctx context.Context) (bool, error)
	Close() error
}
