package configuration

import "time"

const (
	StoreTypeMemory = "memory"
	StoreTypeSqlite = "sqlite"
	StoreTypeRedis  = "redis"
)

type RedisConfig struct {
	// Either a single address or a seed list of host:port addresses
	Addrs    []string
	DB       int
	Password string
	// Key holding the monitored job set list
	Key string
}

type StoreConfig struct {
	// One of memory, sqlite or redis
	Type string
	// Path of the sqlite database file, including its name; only read when Type is sqlite
	SqlitePath string
	Redis      RedisConfig
}

type JobWatchConfiguration struct {
	// Timeout applied to each unary RPC; streams have none
	RpcTimeout time.Duration
	// When set, stream events never move a job out of a terminal state
	TerminalStatesAreFinal bool
	// When set, jobs first seen on an event stream are added to their job set
	DiscoverJobs bool
	// Default tail applied to log requests; zero fetches everything Binoculars returns
	LogTailLines int64
	// How long the cluster a job ran on is remembered before job details are polled again.
	// Zero or negative disables the cache.
	ClusterLookupTTL time.Duration
	// Prometheus endpoint port used by the watch command; zero disables it
	MetricsPort uint16
	Store       StoreConfig
}

func Default() JobWatchConfiguration {
	return JobWatchConfiguration{
		RpcTimeout:       30 * time.Second,
		DiscoverJobs:     true,
		ClusterLookupTTL: 30 * time.Second,
		Store: StoreConfig{
			Type:       StoreTypeSqlite,
			SqlitePath: "~/.jobwatch/jobwatch.db",
			Redis: RedisConfig{
				Addrs: []string{"localhost:6379"},
				Key:   "jobwatch:monitoredJobSets",
			},
		},
	}
}
