package jobwatchctl

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/pkg/errors"

	"github.com/armadaproject/jobwatch/internal/common/armadaerrors"
	"github.com/armadaproject/jobwatch/internal/common/util"
	"github.com/armadaproject/jobwatch/internal/jobwatch"
	"github.com/armadaproject/jobwatch/internal/jobwatch/configuration"
	"github.com/armadaproject/jobwatch/internal/jobwatch/repository"
	"github.com/armadaproject/jobwatch/internal/jobwatchctl/build"
	"github.com/armadaproject/jobwatch/pkg/client"
)

type App struct {
	// Parameters passed to the CLI by the user.
	Params *Params
	// Out is used to write the output. Defaults to standard out,
	// but can be overridden in tests to make assertions on the applications's output.
	Out io.Writer

	core *jobwatch.App
}

// Params struct holds all user-customizable parameters.
// Using a single struct for all CLI commands ensures that all flags are distinct
// and that they can be provided either dynamically on a command line, or
// statically in a config file that's reused between command runs.
type Params struct {
	// Path of the armadactl config file; empty selects ~/.armadactl.yaml.
	ConfigFile   string
	ArmadaConfig *client.ArmadaConfig
	Context      *client.ResolvedContext
	Config       configuration.JobWatchConfiguration

	// Overridden in tests; built from Config when nil.
	Connector jobwatch.Connector
	Store     repository.MonitoredJobSetStore
	Observer  jobwatch.Observer
	Clock     util.Clock
}

// New instantiates an App with default parameters, including standard output.
func New() *App {
	return &App{
		Params: &Params{Config: configuration.Default()},
		Out:    os.Stdout,
	}
}

// Core returns the monitoring application connected to the selected context, creating it on first use.
func (a *App) Core() (*jobwatch.App, error) {
	if a.core != nil {
		return a.core, nil
	}
	if a.Params.Context == nil {
		return nil, &armadaerrors.ErrNotConfigured{Setting: "context", Message: "no Armada context selected"}
	}

	store := a.Params.Store
	if store == nil {
		var err error
		store, err = repository.New(a.Params.Config.Store)
		if err != nil {
			return nil, err
		}
	}
	connect := a.Params.Connector
	if connect == nil {
		connect = jobwatch.NewConnector(a.Params.Config)
	}

	core := jobwatch.New(a.Params.Config, store, connect, a.Params.Observer, a.Params.Clock)
	if err := core.Connect(a.Params.Context); err != nil {
		_ = core.Close()
		return nil, err
	}
	a.core = core
	return core, nil
}

// Close releases the connections and the store of the monitoring application, if one was created.
func (a *App) Close() error {
	if a.core == nil {
		return nil
	}
	err := a.core.Close()
	a.core = nil
	return errors.WithMessage(err, "error closing jobwatch")
}

// Version prints build information (e.g., current git commit) to the app output.
func (a *App) Version() error {
	w := tabwriter.NewWriter(a.Out, 1, 1, 1, ' ', 0)
	defer w.Flush()
	fmt.Fprintf(w, "Version:\t%s\n", build.ReleaseVersion)
	fmt.Fprintf(w, "Commit:\t%s\n", build.GitCommit)
	fmt.Fprintf(w, "Go version:\t%s\n", build.GoVersion)
	fmt.Fprintf(w, "Built:\t%s\n", build.BuildTime)
	return nil
}
