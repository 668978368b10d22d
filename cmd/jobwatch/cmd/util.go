package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/armadaproject/jobwatch/internal/jobwatch/configuration"
	"github.com/armadaproject/jobwatch/internal/jobwatchctl"
	"github.com/armadaproject/jobwatch/pkg/client"
)

// initParams reads the armadactl config file selected by --config and resolves the context
// the command runs against.
func initParams(cmd *cobra.Command, params *jobwatchctl.Params) error {
	cfgFile, err := cmd.Flags().GetString("config")
	if err != nil {
		return errors.Wrap(err, "error reading config flag")
	}
	if err := client.LoadCommandlineArgsFromConfigFile(cfgFile); err != nil {
		return errors.Wrap(err, "error loading command line arguments")
	}
	armadaConfig, resolved, err := client.ExtractCommandlineContext(cfgFile)
	if err != nil {
		return err
	}
	config, err := configuration.Load(viper.GetViper())
	if err != nil {
		return err
	}

	params.ConfigFile = cfgFile
	params.ArmadaConfig = armadaConfig
	params.Context = resolved
	params.Config = config
	log.WithField("context", resolved.Name).Debug("resolved armada context")
	return nil
}

// closeApp is used as PostRunE so that streams and the store are released after every command.
func closeApp(a *jobwatchctl.App) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		return a.Close()
	}
}

// signalContext is cancelled on SIGINT and SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	stopSignal := make(chan os.Signal, 1)
	signal.Notify(stopSignal, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		defer signal.Stop(stopSignal)
		select {
		case <-ctx.Done():
		case sig := <-stopSignal:
			log.Infof("received signal %v, stopping", sig)
			cancel()
		}
	}()
	return ctx, cancel
}
