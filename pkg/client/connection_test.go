package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/armadaproject/jobwatch/pkg/client/auth"
	"github.com/armadaproject/jobwatch/pkg/client/auth/exec"
)

func TestPerRpcCredentials(t *testing.T) {
	assert.Nil(t, perRpcCredentials(&ApiConnectionDetails{ArmadaUrl: "localhost:50051"}))

	basic := perRpcCredentials(&ApiConnectionDetails{BasicAuth: auth.LoginCredentials{Username: "user"}})
	assert.IsType(t, &auth.LoginCredentials{}, basic)

	execAuth := perRpcCredentials(&ApiConnectionDetails{ExecAuth: exec.CommandDetails{Cmd: "get-token"}})
	assert.IsType(t, &exec.Authenticator{}, execAuth)
}

func TestWithUrl(t *testing.T) {
	details := &ApiConnectionDetails{
		ArmadaUrl: "armada:50051",
		BasicAuth: auth.LoginCredentials{Username: "user", Password: "pass"},
	}

	binoculars := details.WithUrl("binoculars:50051")

	assert.Equal(t, "binoculars:50051", binoculars.ArmadaUrl)
	assert.Equal(t, details.BasicAuth, binoculars.BasicAuth)
	assert.Equal(t, "armada:50051", details.ArmadaUrl)
}

func TestCreateApiConnection_DoesNotBlock(t *testing.T) {
	conn, err := CreateApiConnection(&ApiConnectionDetails{ArmadaUrl: "localhost:1"})
	require.NoError(t, err)
	assert.NoError(t, conn.Close())
}
