package client

import (
	"strings"
	"time"

	grpc_retry "github.com/grpc-ecosystem/go-grpc-middleware/retry"
	grpc_prometheus "github.com/grpc-ecosystem/go-grpc-prometheus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/armadaproject/jobwatch/pkg/client/auth"
	"github.com/armadaproject/jobwatch/pkg/client/auth/exec"
)

type ApiConnectionDetails struct {
	ArmadaUrl  string
	BasicAuth  auth.LoginCredentials
	ExecAuth   exec.CommandDetails
	ForceNoTls bool
}

type ConnectionDetails func() *ApiConnectionDetails

// WithUrl returns a copy of the details that dials url with the same credentials.
func (d *ApiConnectionDetails) WithUrl(url string) *ApiConnectionDetails {
	copied := *d
	copied.ArmadaUrl = url
	return &copied
}

func CreateApiConnection(config *ApiConnectionDetails, additionalDialOptions ...grpc.DialOption) (*grpc.ClientConn, error) {
	return CreateApiConnectionWithCallOptions(config, []grpc.CallOption{}, additionalDialOptions...)
}

func CreateApiConnectionWithCallOptions(
	config *ApiConnectionDetails,
	additionalDefaultCallOptions []grpc.CallOption,
	additionalDialOptions ...grpc.DialOption,
) (*grpc.ClientConn, error) {
	retryOpts := []grpc_retry.CallOption{
		grpc_retry.WithBackoff(grpc_retry.BackoffExponential(1 * time.Second)),
		grpc_retry.WithMax(3),
	}

	callOptions := append(additionalDefaultCallOptions, grpc.WaitForReady(true))

	defaultCallOptions := grpc.WithDefaultCallOptions(callOptions...)
	unaryInterceptors := grpc.WithChainUnaryInterceptor(
		grpc_prometheus.UnaryClientInterceptor,
		grpc_retry.UnaryClientInterceptor(retryOpts...),
	)
	streamInterceptors := grpc.WithChainStreamInterceptor(
		grpc_prometheus.StreamClientInterceptor,
		grpc_retry.StreamClientInterceptor(retryOpts...),
	)

	dialOpts := append(additionalDialOptions,
		defaultCallOptions,
		unaryInterceptors,
		streamInterceptors,
		transportCredentials(config))

	if creds := perRpcCredentials(config); creds != nil {
		dialOpts = append(dialOpts, grpc.WithPerRPCCredentials(creds))
	}

	return grpc.Dial(config.ArmadaUrl, dialOpts...)
}

func perRpcCredentials(config *ApiConnectionDetails) credentials.PerRPCCredentials {
	if config.BasicAuth.Username != "" {
		return &config.BasicAuth
	} else if config.ExecAuth.Cmd != "" {
		return exec.NewAuthenticator(config.ExecAuth)
	}
	return nil
}

func transportCredentials(config *ApiConnectionDetails) grpc.DialOption {
	if !config.ForceNoTls && !strings.Contains(config.ArmadaUrl, "localhost") {
		return grpc.WithTransportCredentials(credentials.NewClientTLSFromCert(nil, ""))
	}
	return grpc.WithTransportCredentials(insecure.NewCredentials())
}
