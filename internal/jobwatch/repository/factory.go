package repository

import (
	"fmt"

	"github.com/go-redis/redis"
	log "github.com/sirupsen/logrus"

	"github.com/armadaproject/jobwatch/internal/jobwatch/configuration"
)

// New creates the store selected by config.Type.
func New(config configuration.StoreConfig) (MonitoredJobSetStore, error) {
	switch config.Type {
	case configuration.StoreTypeMemory:
		return NewInMemoryStore(), nil
	case configuration.StoreTypeSqlite:
		log.WithField("path", config.SqlitePath).Debug("using sqlite store")
		return NewSqliteStore(config.SqlitePath)
	case configuration.StoreTypeRedis:
		log.WithField("addrs", config.Redis.Addrs).Debug("using redis store")
		db := redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs:    config.Redis.Addrs,
			DB:       config.Redis.DB,
			Password: config.Redis.Password,
		})
		return NewRedisStore(db, config.Redis.Key), nil
	default:
		return nil, fmt.Errorf("unknown store type %q", config.Type)
	}
}
