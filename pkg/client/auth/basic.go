package auth

import (
	"context"
	"encoding/base64"
)

// LoginCredentials sends a basic auth header with every RPC.
type LoginCredentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (c *LoginCredentials) GetRequestMetadata(_ context.Context, _ ...string) (map[string]string, error) {
	return map[string]string{
		"authorization": "basic " + base64.StdEncoding.EncodeToString([]byte(c.Username+":"+c.Password)),
	}, nil
}

func (c *LoginCredentials) RequireTransportSecurity() bool {
	return false
}
