package repository

import (
	"context"
	"sync"

	"github.com/armadaproject/jobwatch/internal/jobwatch/domain"
)

type InMemoryStore struct {
	jobSets []domain.MonitoredJobSet
	lock    sync.RWMutex
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Save(_ context.Context, jobSets []domain.MonitoredJobSet) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.jobSets = append([]domain.MonitoredJobSet(nil), jobSets...)
	return nil
}

func (s *InMemoryStore) Load(_ context.Context) ([]domain.MonitoredJobSet, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return append([]domain.MonitoredJobSet(nil), s.jobSets...), nil
}

func (s *InMemoryStore) HealthCheck(_ context.Context) (bool, error) {
	return true, nil
}

func (s *InMemoryStore) Close() error {
	return nil
}
