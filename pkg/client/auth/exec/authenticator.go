package exec

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
)

type EnvVar struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// CommandDetails configures an external command that prints a bearer token on stdout.
type CommandDetails struct {
	Cmd         string   `json:"cmd"`
	Args        []string `json:"args,omitempty"`
	Env         []EnvVar `json:"env,omitempty"`
	Interactive bool     `json:"interactive,omitempty"`
}

type Authenticator struct {
	cmd         string
	args        []string
	env         []string
	interactive bool

	// Stubbable for testing
	stdin   io.Reader
	stderr  io.Writer
	environ func() []string

	// Guards calling the plugin. Since the plugin could be interactive we want to make
	// sure it's only called once at a time.
	mu sync.Mutex
}

func NewAuthenticator(details CommandDetails) *Authenticator {
	env := make([]string, 0, len(details.Env))
	for _, e := range details.Env {
		env = append(env, e.Name+"="+e.Value)
	}
	return &Authenticator{
		cmd:         details.Cmd,
		args:        details.Args,
		env:         env,
		interactive: details.Interactive,
		stdin:       os.Stdin,
		stderr:      os.Stderr,
		environ:     os.Environ,
	}
}

func (a *Authenticator) GetCreds() (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.getCredsLocked()
}

// getCredsLocked executes the plugin and reads the credentials from stdout.
func (a *Authenticator) getCredsLocked() (string, error) {
	stdout := &bytes.Buffer{}
	cmd := exec.Command(a.cmd, a.args...)
	cmd.Env = append(a.environ(), a.env...)
	cmd.Stderr = a.stderr
	cmd.Stdout = stdout
	if a.interactive {
		cmd.Stdin = a.stdin
	}

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("error retrieving credentials: %w", err)
	}

	tok := strings.TrimSpace(stdout.String())
	if tok == "" {
		return "", fmt.Errorf("command %s didn't return a token", a.cmd)
	}
	return tok, nil
}

func (a *Authenticator) GetRequestMetadata(_ context.Context, _ ...string) (map[string]string, error) {
	tok, err := a.GetCreds()
	if err != nil {
		return nil, err
	}
	return map[string]string{
		"authorization": "Bearer " + tok,
	}, nil
}

func (a *Authenticator) RequireTransportSecurity() bool {
	return false
}
