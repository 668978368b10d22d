package configuration

import (
	"bytes"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func viperFromYaml(t *testing.T, yaml string) *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(bytes.NewBufferString(yaml)))
	return v
}

func TestLoad_MissingSectionGivesDefaults(t *testing.T) {
	v := viperFromYaml(t, "currentContext: main\n")
	config, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, Default(), config)
}

func TestLoad_OverridesDefaults(t *testing.T) {
	v := viperFromYaml(t, `
jobwatch:
  rpcTimeout: 5s
  terminalStatesAreFinal: true
  logTailLines: 200
  clusterLookupTTL: 1m
  metricsPort: 9090
  store:
    type: redis
    redis:
      addrs: redis-1:6379,redis-2:6379
      db: 2
`)
	config, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, config.RpcTimeout)
	assert.True(t, config.TerminalStatesAreFinal)
	assert.True(t, config.DiscoverJobs)
	assert.Equal(t, int64(200), config.LogTailLines)
	assert.Equal(t, time.Minute, config.ClusterLookupTTL)
	assert.Equal(t, uint16(9090), config.MetricsPort)
	assert.Equal(t, StoreTypeRedis, config.Store.Type)
	assert.Equal(t, []string{"redis-1:6379", "redis-2:6379"}, config.Store.Redis.Addrs)
	assert.Equal(t, 2, config.Store.Redis.DB)
	assert.Equal(t, Default().Store.Redis.Key, config.Store.Redis.Key)
}

func TestLoad_InvalidStore(t *testing.T) {
	v := viperFromYaml(t, `
jobwatch:
  store:
    type: postgres
`)
	_, err := Load(v)
	assert.Error(t, err)
}

func TestLoad_BadDuration(t *testing.T) {
	v := viperFromYaml(t, `
jobwatch:
  rpcTimeout: soon
`)
	_, err := Load(v)
	assert.Error(t, err)
}
