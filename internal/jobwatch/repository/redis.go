package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis"
	"github.com/pkg/errors"

	"github.com/armadaproject/jobwatch/internal/jobwatch/domain"
)

// RedisStore keeps the monitored job sets as one JSON document under a single key,
// so that several machines can share the list.
type RedisStore struct {
	db  redis.UniversalClient
	key string
}

func NewRedisStore(db redis.UniversalClient, key string) *RedisStore {
	return &RedisStore{db: db, key: key}
}

func (s *RedisStore) Save(_ context.Context, jobSets []domain.MonitoredJobSet) error {
	if jobSets == nil {
		jobSets = []domain.MonitoredJobSet{}
	}
	data, err := json.Marshal(jobSets)
	if err != nil {
		return errors.WithStack(err)
	}
	if err := s.db.Set(s.key, data, 0).Err(); err != nil {
		return errors.WithStack(err)
	}
	return nil
}

func (s *RedisStore) Load(_ context.Context) ([]domain.MonitoredJobSet, error) {
	val, err := s.db.Get(s.key).Result()
	if err == redis.Nil {
		return []domain.MonitoredJobSet{}, nil
	} else if err != nil {
		return nil, errors.WithStack(err)
	}

	jobSets := []domain.MonitoredJobSet{}
	if err := json.Unmarshal([]byte(val), &jobSets); err != nil {
		return nil, fmt.Errorf("[RedisStore.Load] error unmarshalling monitored job sets under %s: %s", s.key, err)
	}
	return jobSets, nil
}

func (s *RedisStore) HealthCheck(_ context.Context) (bool, error) {
	if err := s.db.Ping().Err(); err != nil {
		return false, fmt.Errorf("redis health check failed: %v", err)
	}
	return true, nil
}

func (s *RedisStore) Close() error {
	return s.db.Close()
}
