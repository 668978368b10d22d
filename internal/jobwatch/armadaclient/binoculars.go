package armadaclient

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"google.golang.org/grpc"
	v1 "k8s.io/api/core/v1"

	"github.com/armadaproject/armada/pkg/api/binoculars"
	"github.com/armadaproject/jobwatch/internal/jobwatch/domain"
	"github.com/armadaproject/jobwatch/internal/jobwatch/routing"
	"github.com/armadaproject/jobwatch/pkg/client"
)

// BinocularsClient fetches pod logs from the Binoculars instance of one cluster.
type BinocularsClient struct {
	clusterId  string
	conn       *grpc.ClientConn
	client     binoculars.BinocularsClient
	rpcTimeout time.Duration
}

// NewBinocularsClientFactory returns a routing.ClientFactory dialling each cluster's
// Binoculars with the credentials of the Armada connection.
func NewBinocularsClientFactory(config *client.ApiConnectionDetails, rpcTimeout time.Duration, dial Dialer) routing.ClientFactory {
	return func(clusterId string, address string) (routing.LogClient, error) {
		conn, err := dial(config.WithUrl(address))
		if err != nil {
			return nil, errors.Wrapf(err, "error connecting to binoculars at %s", address)
		}
		return &BinocularsClient{
			clusterId:  clusterId,
			conn:       conn,
			client:     binoculars.NewBinocularsClient(conn),
			rpcTimeout: rpcTimeout,
		}, nil
	}
}

func (b *BinocularsClient) Logs(ctx context.Context, request *domain.LogRequest) ([]domain.LogLine, error) {
	if b.rpcTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.rpcTimeout)
		defer cancel()
	}

	logRequest := &binoculars.LogRequest{
		JobId:        request.JobId,
		PodNumber:    request.PodNumber,
		PodNamespace: request.Namespace,
		SinceTime:    request.SinceTime,
	}
	if request.TailLines > 0 {
		tailLines := request.TailLines
		logRequest.LogOptions = &v1.PodLogOptions{TailLines: &tailLines}
	}

	resp, err := b.client.Logs(ctx, logRequest, noRetry()...)
	if err != nil {
		return nil, errors.Wrapf(err, "error fetching logs of job %s from cluster %s", request.JobId, b.clusterId)
	}
	lines := make([]domain.LogLine, 0, len(resp.Log))
	for _, line := range resp.Log {
		if line == nil {
			continue
		}
		lines = append(lines, domain.LogLine{Timestamp: line.Timestamp, Line: line.Line})
	}
	return lines, nil
}

func (b *BinocularsClient) Close() error {
	return b.conn.Close()
}
