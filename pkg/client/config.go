package client

import (
	"fmt"
	"os"
	"sort"

	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"sigs.k8s.io/yaml"

	"github.com/armadaproject/jobwatch/pkg/client/auth"
	"github.com/armadaproject/jobwatch/pkg/client/auth/exec"
)

const (
	DefaultConfigPath  = "~/.armadactl.yaml"
	DefaultContextName = "default"
)

// ArmadaContext is one named entry of the armadactl config file.
type ArmadaContext struct {
	ArmadaUrl            string                 `json:"armadaUrl,omitempty"`
	BinocularsUrl        string                 `json:"binocularsUrl,omitempty"`
	BinocularsUrlPattern string                 `json:"binocularsUrlPattern,omitempty"`
	LookoutUrl           string                 `json:"lookoutUrl,omitempty"`
	ForceNoTls           bool                   `json:"forceNoTls,omitempty"`
	BasicAuth            *auth.LoginCredentials `json:"basicAuth,omitempty"`
	ExecAuth             *exec.CommandDetails   `json:"execAuth,omitempty"`
}

// ArmadaConfig is the armadactl config file. Files without contexts use the legacy
// flat layout, which is read as a single context named "default".
type ArmadaConfig struct {
	CurrentContext string                    `json:"currentContext,omitempty"`
	Contexts       map[string]*ArmadaContext `json:"contexts,omitempty"`

	ArmadaContext

	// Settings read by jobwatch itself; carried so that rewriting the file keeps them.
	JobWatch map[string]interface{} `json:"jobwatch,omitempty"`
}

// ResolvedContext is the context selected from an ArmadaConfig.
type ResolvedContext struct {
	Name string
	ArmadaContext
}

func ReadConfigFromPath(path string) (*ArmadaConfig, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, errors.Wrapf(err, "error expanding config path %s", path)
	}
	data, err := os.ReadFile(expanded)
	if err != nil {
		return nil, errors.Wrapf(err, "error reading config file %s", expanded)
	}
	config := &ArmadaConfig{}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, errors.Wrapf(err, "error parsing config file %s", expanded)
	}
	return config, nil
}

func WriteConfigToPath(path string, config *ArmadaConfig) error {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return errors.Wrapf(err, "error expanding config path %s", path)
	}
	data, err := yaml.Marshal(config)
	if err != nil {
		return errors.WithStack(err)
	}
	if err := os.WriteFile(expanded, data, 0o600); err != nil {
		return errors.Wrapf(err, "error writing config file %s", expanded)
	}
	return nil
}

// ContextNames returns the configured context names, sorted.
func (c *ArmadaConfig) ContextNames() []string {
	names := make([]string, 0, len(c.Contexts))
	for name := range c.Contexts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve selects the active context. With contexts present, the current context is
// used, falling back to the first context by name. Otherwise the legacy flat fields are used.
func (c *ArmadaConfig) Resolve() (*ResolvedContext, error) {
	if len(c.Contexts) > 0 {
		name := c.CurrentContext
		if name == "" {
			name = c.ContextNames()[0]
		}
		context, ok := c.Contexts[name]
		if !ok || context == nil {
			return nil, fmt.Errorf("context %q not found in config", name)
		}
		return &ResolvedContext{Name: name, ArmadaContext: *context}, nil
	}
	if c.ArmadaUrl != "" {
		return &ResolvedContext{Name: DefaultContextName, ArmadaContext: c.ArmadaContext}, nil
	}
	return nil, errors.New("config has neither contexts nor an armadaUrl")
}

// UseContext makes name the current context.
func (c *ArmadaConfig) UseContext(name string) error {
	if _, ok := c.Contexts[name]; !ok {
		return fmt.Errorf("context %q not found", name)
	}
	c.CurrentContext = name
	return nil
}

// ConnectionDetails converts the context into dial settings for the Armada server.
func (r *ResolvedContext) ConnectionDetails() *ApiConnectionDetails {
	details := &ApiConnectionDetails{
		ArmadaUrl:  r.ArmadaUrl,
		ForceNoTls: r.ForceNoTls,
	}
	if r.BasicAuth != nil {
		details.BasicAuth = *r.BasicAuth
	}
	if r.ExecAuth != nil {
		details.ExecAuth = *r.ExecAuth
	}
	return details
}
