package cmd

import (
	"github.com/spf13/cobra"

	"github.com/armadaproject/jobwatch/internal/jobwatchctl"
	"github.com/armadaproject/jobwatch/pkg/client"
)

// RootCmd is the root Cobra command that gets called from the main func.
// All other sub-commands should be registered here.
func RootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobwatch",
		Short: "jobwatch keeps track of the jobs of Armada job sets.",
		Long: `jobwatch keeps track of the jobs of Armada job sets.

Job sets are followed through their event streams and can be refreshed by polling the
Jobs service. The job sets being watched are saved and restored on the next run.

Connection settings are read from the armadactl config file, $HOME/.armadactl.yaml unless
--config is given. jobwatch settings live under its jobwatch key:

currentContext: main
contexts:
  main:
    armadaUrl: armada.example.com:443
    binocularsUrlPattern: binoculars-{CLUSTER_ID}.example.com:443
    lookoutUrl: https://lookout.example.com
jobwatch:
  rpcTimeout: 30s
  store:
    type: sqlite
    sqlitePath: ~/.jobwatch/jobwatch.db`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().String("config", "", "config file (default is $HOME/.armadactl.yaml)")
	client.AddArmadaApiConnectionCommandlineArgs(cmd)

	cmd.AddCommand(
		watchCmd(jobwatchctl.New()),
		restoreCmd(jobwatchctl.New()),
		refreshCmd(jobwatchctl.New()),
		stopCmd(jobwatchctl.New()),
		clearCmd(jobwatchctl.New()),
		loadCmd(jobwatchctl.New()),
		logsCmd(jobwatchctl.New()),
		submitCmd(jobwatchctl.New()),
		cancelCmd(jobwatchctl.New()),
		createCmd(jobwatchctl.New()),
		getCmd(jobwatchctl.New()),
		configCmd(jobwatchctl.New()),
		versionCmd(jobwatchctl.New()),
	)

	return cmd
}
