package jobwatch

import (
	"context"

	"github.com/armadaproject/armada/pkg/api"
	"github.com/armadaproject/jobwatch/internal/jobwatch/armadaclient"
	"github.com/armadaproject/jobwatch/internal/jobwatch/configuration"
	"github.com/armadaproject/jobwatch/internal/jobwatch/domain"
	"github.com/armadaproject/jobwatch/internal/jobwatch/lookout"
	"github.com/armadaproject/jobwatch/internal/jobwatch/routing"
	"github.com/armadaproject/jobwatch/internal/jobwatch/subscription"
	"github.com/armadaproject/jobwatch/pkg/client"
)

// ArmadaApi is what the application needs from the Armada server.
type ArmadaApi interface {
	subscription.EventSource
	GetJobDetails(ctx context.Context, jobIds []string) (map[string]*domain.JobDetails, error)
	GetJobErrors(ctx context.Context, jobIds []string) (map[string]string, error)
	GetActiveQueues(ctx context.Context) (map[string][]string, error)
	SubmitJobs(ctx context.Context, queue string, jobSetId string, items []*api.JobSubmitRequestItem) ([]armadaclient.SubmitResult, error)
	CancelJob(ctx context.Context, queue string, jobSetId string, jobId string) ([]string, error)
	CreateQueue(ctx context.Context, queue *api.Queue) error
	Queues(ctx context.Context) ([]*api.Queue, error)
	Close() error
}

// JobBrowser looks up jobs that are not being watched.
type JobBrowser interface {
	JobSetsInQueue(ctx context.Context, queue string, limit int) ([]string, error)
	SearchJobs(ctx context.Context, queue string, jobSet string, state string, limit int) ([]lookout.Job, error)
}

// Connection is everything that depends on the selected context.
type Connection struct {
	ContextName string
	Api         ArmadaApi
	// Nil when the context has no Lookout URL.
	Browser    JobBrowser
	LogClients routing.ClientFactory
	Routing    routing.AddressConfig
}

type Connector func(resolved *client.ResolvedContext) (*Connection, error)

// NewConnector dials Armada and Binoculars with client.CreateApiConnection.
func NewConnector(config configuration.JobWatchConfiguration) Connector {
	return func(resolved *client.ResolvedContext) (*Connection, error) {
		details := resolved.ConnectionDetails()
		conn := &Connection{
			ContextName: resolved.Name,
			Api:         armadaclient.New(details, config.RpcTimeout),
			LogClients:  armadaclient.NewBinocularsClientFactory(details, config.RpcTimeout, armadaclient.DefaultDialer),
			Routing: routing.AddressConfig{
				Pattern:        resolved.BinocularsUrlPattern,
				Override:       resolved.BinocularsUrl,
				PrimaryAddress: resolved.ArmadaUrl,
			},
		}
		if resolved.LookoutUrl != "" {
			conn.Browser = lookout.NewClient(resolved.LookoutUrl, nil)
		}
		return conn, nil
	}
}
