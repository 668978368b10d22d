package jobwatchctl

import (
	"context"
	"fmt"

	"github.com/armadaproject/jobwatch/internal/common/armadaerrors"
	"github.com/armadaproject/jobwatch/pkg/client"
)

func (a *App) armadaConfig() (*client.ArmadaConfig, error) {
	if a.Params.ArmadaConfig == nil {
		return nil, &armadaerrors.ErrNotConfigured{Setting: "config", Message: "no armadactl config file loaded"}
	}
	return a.Params.ArmadaConfig, nil
}

// GetContexts prints the configured contexts, marking the current one.
func (a *App) GetContexts() error {
	config, err := a.armadaConfig()
	if err != nil {
		return err
	}
	current := config.CurrentContext
	if a.Params.Context != nil {
		current = a.Params.Context.Name
	}
	fmt.Fprintf(a.Out, "Available contexts:\n")
	for _, name := range config.ContextNames() {
		if name == current {
			fmt.Fprintf(a.Out, "%s (current)\n", name)
		} else {
			fmt.Fprintf(a.Out, "%s\n", name)
		}
	}
	return nil
}

func (a *App) CurrentContext() error {
	if a.Params.Context == nil {
		return &armadaerrors.ErrNotConfigured{Setting: "context", Message: "no Armada context selected"}
	}
	fmt.Fprintf(a.Out, "Current context: %s\n", a.Params.Context.Name)
	return nil
}

// UseContext makes name the current context in the config file. When a monitoring application
// is running, its streams are moved to the new context.
func (a *App) UseContext(ctx context.Context, name string) error {
	config, err := a.armadaConfig()
	if err != nil {
		return err
	}
	if err := config.UseContext(name); err != nil {
		return err
	}
	resolved, err := config.Resolve()
	if err != nil {
		return err
	}
	if err := client.WriteConfigToPath(client.ConfigFilePath(a.Params.ConfigFile), config); err != nil {
		return err
	}
	a.Params.Context = resolved

	if a.core != nil {
		restored, err := a.core.SwitchContext(ctx, resolved)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.Out, "Restored %d job sets on context %s\n", restored, name)
	}
	fmt.Fprintf(a.Out, "Switched to context %s\n", name)
	return nil
}
