package configuration

import (
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// ConfigKey is the section of the armadactl config file holding these settings.
const ConfigKey = "jobwatch"

var decodeHooks = viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
	mapstructure.StringToTimeDurationHookFunc(),
	mapstructure.StringToSliceHookFunc(","),
))

// Load reads the jobwatch section of v on top of the defaults and checks the result.
// A missing section yields the defaults.
func Load(v *viper.Viper) (JobWatchConfiguration, error) {
	config := Default()
	if v.IsSet(ConfigKey) {
		if err := v.UnmarshalKey(ConfigKey, &config, decodeHooks); err != nil {
			return config, errors.Wrapf(err, "error reading %s configuration", ConfigKey)
		}
	}
	if err := CheckConfig(&config); err != nil {
		return config, err
	}
	return config, nil
}
