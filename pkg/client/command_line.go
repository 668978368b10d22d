package client

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func AddArmadaApiConnectionCommandlineArgs(rootCmd *cobra.Command) {
	rootCmd.PersistentFlags().String("armadaUrl", "", "override the armada server url of the current context")
	viper.BindPFlag("armadaUrl", rootCmd.PersistentFlags().Lookup("armadaUrl"))
	rootCmd.PersistentFlags().String("context", "", "use this context instead of the config file's current context")
	viper.BindPFlag("context", rootCmd.PersistentFlags().Lookup("context"))
}

// LoadCommandlineArgsFromConfigFile points viper at the armadactl config file, merging in
// armadactl-defaults.yaml from the executable's directory first when present.
func LoadCommandlineArgsFromConfigFile(cfgFile string) error {
	exePath, err := os.Executable()
	if err != nil {
		return fmt.Errorf("[LoadCommandlineArgsFromConfigFile] error finding executable path: %s", err)
	}
	viper.SetConfigFile(filepath.Join(filepath.Dir(exePath), "armadactl-defaults.yaml"))
	if err := viper.ReadInConfig(); err != nil {
		switch err.(type) {
		case viper.ConfigFileNotFoundError:
		case *os.PathError:
			// No default config is fine
		default:
			return fmt.Errorf("[LoadCommandlineArgsFromConfigFile] error reading config file %s: %s", viper.ConfigFileUsed(), err)
		}
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			return fmt.Errorf("[LoadCommandlineArgsFromConfigFile] error getting user home directory: %s", err)
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".armadactl")
	}

	viper.AutomaticEnv()

	if err := viper.MergeInConfig(); err != nil {
		switch err.(type) {
		case viper.ConfigFileNotFoundError:
			// Only occurs when looking for the default .armadactl file, which users don't have to create
		default:
			return fmt.Errorf("[LoadCommandlineArgsFromConfigFile] error reading config file %s: %s", viper.ConfigFileUsed(), err)
		}
	}
	return nil
}

// ConfigFilePath is the armadactl config file selected by LoadCommandlineArgsFromConfigFile.
func ConfigFilePath(cfgFile string) string {
	if cfgFile != "" {
		return cfgFile
	}
	if used := viper.ConfigFileUsed(); used != "" && filepath.Base(used) != "armadactl-defaults.yaml" {
		return used
	}
	return DefaultConfigPath
}

// ExtractCommandlineContext reads the armadactl file and resolves the context selected by the
// --context flag or the file itself. --armadaUrl overrides the context's server url.
func ExtractCommandlineContext(cfgFile string) (*ArmadaConfig, *ResolvedContext, error) {
	config, err := ReadConfigFromPath(ConfigFilePath(cfgFile))
	if err != nil {
		if url := viper.GetString("armadaUrl"); url != "" {
			config = &ArmadaConfig{ArmadaContext: ArmadaContext{ArmadaUrl: url}}
		} else {
			return nil, nil, err
		}
	}
	if name := viper.GetString("context"); name != "" {
		if err := config.UseContext(name); err != nil {
			return nil, nil, err
		}
	}
	resolved, err := config.Resolve()
	if err != nil {
		return nil, nil, err
	}
	if url := viper.GetString("armadaUrl"); url != "" {
		resolved.ArmadaUrl = url
	}
	return config, resolved, nil
}
