package configuration

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/armadaproject/jobwatch/internal/common/armadaerrors"
)

func TestCheckConfig_DefaultIsValid(t *testing.T) {
	config := Default()
	require.NoError(t, CheckConfig(&config))
	assert.Equal(t, Default(), config)
}

func TestCheckConfig_RectifiesInvalidValues(t *testing.T) {
	config := JobWatchConfiguration{
		RpcTimeout:   -time.Second,
		LogTailLines: -5,
	}
	require.NoError(t, CheckConfig(&config))

	assert.Equal(t, 30*time.Second, config.RpcTimeout)
	assert.Equal(t, int64(0), config.LogTailLines)
	assert.Equal(t, StoreTypeSqlite, config.Store.Type)
	assert.Equal(t, Default().Store.SqlitePath, config.Store.SqlitePath)
}

func TestCheckConfig_Store(t *testing.T) {
	tests := map[string]struct {
		store   StoreConfig
		wantErr bool
		check   func(t *testing.T, store StoreConfig)
	}{
		"memory": {
			store: StoreConfig{Type: StoreTypeMemory},
		},
		"sqlite without path": {
			store: StoreConfig{Type: StoreTypeSqlite},
			check: func(t *testing.T, store StoreConfig) {
				assert.NotEmpty(t, store.SqlitePath)
			},
		},
		"redis without key": {
			store: StoreConfig{Type: StoreTypeRedis, Redis: RedisConfig{Addrs: []string{"localhost:6379"}}},
			check: func(t *testing.T, store StoreConfig) {
				assert.Equal(t, "jobwatch:monitoredJobSets", store.Redis.Key)
			},
		},
		"redis without address": {
			store:   StoreConfig{Type: StoreTypeRedis},
			wantErr: true,
		},
		"unknown type": {
			store:   StoreConfig{Type: "postgres"},
			wantErr: true,
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			config := Default()
			config.Store = tc.store
			err := CheckConfig(&config)
			if tc.wantErr {
				var invalid *armadaerrors.ErrInvalidArgument
				assert.ErrorAs(t, err, &invalid)
				return
			}
			require.NoError(t, err)
			if tc.check != nil {
				tc.check(t, config.Store)
			}
		})
	}
}
