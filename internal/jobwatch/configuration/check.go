package configuration

import (
	log "github.com/sirupsen/logrus"

	"github.com/armadaproject/jobwatch/internal/common/armadaerrors"
)

// CheckConfig replaces invalid values with defaults, logging a warning for each.
// Returns a non-nil error if mis-configuration is unrecoverable.
func CheckConfig(config *JobWatchConfiguration) error {
	logger := log.WithField("JobWatch", "CheckConfig")
	defaults := Default()

	if config.RpcTimeout <= 0 {
		logger.WithFields(log.Fields{
			"default":    defaults.RpcTimeout,
			"configured": config.RpcTimeout,
		}).Warn("config.RpcTimeout invalid, using default instead")
		config.RpcTimeout = defaults.RpcTimeout
	}
	if config.LogTailLines < 0 {
		logger.WithFields(log.Fields{
			"default":    defaults.LogTailLines,
			"configured": config.LogTailLines,
		}).Warn("config.LogTailLines invalid, using default instead")
		config.LogTailLines = defaults.LogTailLines
	}

	switch config.Store.Type {
	case StoreTypeMemory, StoreTypeRedis:
	case StoreTypeSqlite:
		if config.Store.SqlitePath == "" {
			logger.WithFields(log.Fields{
				"default": defaults.Store.SqlitePath,
			}).Warn("config.Store.SqlitePath empty, using default instead")
			config.Store.SqlitePath = defaults.Store.SqlitePath
		}
	case "":
		logger.WithFields(log.Fields{
			"default": defaults.Store.Type,
		}).Warn("config.Store.Type empty, using default instead")
		config.Store.Type = defaults.Store.Type
		if config.Store.SqlitePath == "" {
			config.Store.SqlitePath = defaults.Store.SqlitePath
		}
	default:
		return &armadaerrors.ErrInvalidArgument{
			Name:    "store.type",
			Value:   config.Store.Type,
			Message: "must be one of memory, sqlite or redis",
		}
	}

	if config.Store.Type == StoreTypeRedis {
		if len(config.Store.Redis.Addrs) == 0 {
			return &armadaerrors.ErrInvalidArgument{
				Name:    "store.redis.addrs",
				Value:   "",
				Message: "at least one address is required for the redis store",
			}
		}
		if config.Store.Redis.Key == "" {
			config.Store.Redis.Key = defaults.Store.Redis.Key
		}
	}
	return nil
}
