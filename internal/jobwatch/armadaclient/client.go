package armadaclient

import (
	"context"
	"sync"
	"time"

	"github.com/gogo/protobuf/types"
	grpc_retry "github.com/grpc-ecosystem/go-grpc-middleware/retry"
	"github.com/pkg/errors"
	"google.golang.org/grpc"

	"github.com/armadaproject/armada/pkg/api"
	"github.com/armadaproject/jobwatch/pkg/client"
)

// Dialer creates a connection for the given details. client.CreateApiConnection in production.
type Dialer func(config *client.ApiConnectionDetails) (*grpc.ClientConn, error)

// Client talks to the Armada server's Event, Jobs and Submit services over one lazily
// created connection. Calls are never retried here: the connection's retry interceptors
// are disabled per call so that failures surface to the caller.
type Client struct {
	config     *client.ApiConnectionDetails
	rpcTimeout time.Duration
	dial       Dialer
	conn       *grpc.ClientConn
	mux        sync.Mutex
}

func DefaultDialer(config *client.ApiConnectionDetails) (*grpc.ClientConn, error) {
	return client.CreateApiConnection(config)
}

func New(config *client.ApiConnectionDetails, rpcTimeout time.Duration) *Client {
	return NewWithDialer(config, rpcTimeout, DefaultDialer)
}

func NewWithDialer(config *client.ApiConnectionDetails, rpcTimeout time.Duration, dial Dialer) *Client {
	return &Client{
		config:     config,
		rpcTimeout: rpcTimeout,
		dial:       dial,
	}
}

func (c *Client) Url() string {
	return c.config.ArmadaUrl
}

// Health asks the event API for its health status.
func (c *Client) Health(ctx context.Context) (api.HealthCheckResponse_ServingStatus, error) {
	conn, err := c.ensureApiConnection()
	if err != nil {
		return api.HealthCheckResponse_UNKNOWN, err
	}
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	health, err := api.NewEventClient(conn).Health(ctx, &types.Empty{}, noRetry()...)
	if err != nil {
		return api.HealthCheckResponse_UNKNOWN, errors.Wrapf(err, "error checking health of %s", c.config.ArmadaUrl)
	}
	return health.Status, nil
}

// Close closes the connection if one was established. A later call dials again.
func (c *Client) Close() error {
	c.mux.Lock()
	defer c.mux.Unlock()

	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

func (c *Client) ensureApiConnection() (*grpc.ClientConn, error) {
	c.mux.Lock()
	defer c.mux.Unlock()

	if c.conn != nil {
		return c.conn, nil
	}
	conn, err := c.dial(c.config)
	if err != nil {
		return nil, errors.Wrapf(err, "error connecting to %s", c.config.ArmadaUrl)
	}
	c.conn = conn
	return conn, nil
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.rpcTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.rpcTimeout)
}

func noRetry() []grpc.CallOption {
	return []grpc.CallOption{grpc_retry.Disable()}
}
