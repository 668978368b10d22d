package exec

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAuthenticator(output string, exitCode string) *Authenticator {
	a := NewAuthenticator(CommandDetails{
		Cmd:  "sh",
		Args: []string{"./testdata/test-exec.sh"},
		Env: []EnvVar{
			{Name: "EXEC_TEST_OUTPUT", Value: output},
			{Name: "EXEC_TEST_EXIT_CODE", Value: exitCode},
		},
	})
	a.environ = func() []string { return nil }
	a.stderr = &bytes.Buffer{}
	return a
}

func TestAuthenticatorHappyPath(t *testing.T) {
	tok, err := testAuthenticator("aToken", "0").GetCreds()

	assert.NoError(t, err)
	assert.Equal(t, "aToken", tok)
}

func TestAuthenticatorCmdFails(t *testing.T) {
	tok, err := testAuthenticator("aToken", "1").GetCreds()

	assert.Error(t, err)
	assert.Empty(t, tok)
}

func TestAuthenticatorMissingCmd(t *testing.T) {
	a := testAuthenticator("aToken", "0")
	a.cmd = "not_a_valid_command.sh"
	a.args = nil

	tok, err := a.GetCreds()

	assert.Error(t, err)
	assert.Empty(t, tok)
}

func TestAuthenticatorNoToken(t *testing.T) {
	tok, err := testAuthenticator("", "0").GetCreds()

	assert.Error(t, err)
	assert.Empty(t, tok)
}

func TestAuthenticatorRequestMetadata(t *testing.T) {
	md, err := testAuthenticator("aToken", "0").GetRequestMetadata(context.Background())

	require.NoError(t, err)
	assert.Equal(t, map[string]string{"authorization": "Bearer aToken"}, md)
}
