package jobwatchctl

import (
	"context"
	"fmt"
	"sync"

	"github.com/armadaproject/armada/pkg/api"
	"github.com/armadaproject/jobwatch/internal/jobwatch"
	"github.com/armadaproject/jobwatch/internal/jobwatch/armadaclient"
	"github.com/armadaproject/jobwatch/internal/jobwatch/domain"
	"github.com/armadaproject/jobwatch/internal/jobwatch/routing"
	"github.com/armadaproject/jobwatch/internal/jobwatch/subscription"
	"github.com/armadaproject/jobwatch/pkg/client"
)

// replayStream returns its events in order and then blocks until cancelled.
type replayStream struct {
	ctx    context.Context
	events []*domain.JobEvent
}

func (s *replayStream) Recv() (*domain.JobEvent, error) {
	if len(s.events) > 0 {
		event := s.events[0]
		s.events = s.events[1:]
		return event, nil
	}
	<-s.ctx.Done()
	return nil, s.ctx.Err()
}

type fakeApi struct {
	mutex     sync.Mutex
	events    map[domain.JobSetKey][]*domain.JobEvent
	details   map[string]*domain.JobDetails
	jobErrors map[string]string
	queues    []*api.Queue
	submitted int
}

func newFakeApi() *fakeApi {
	return &fakeApi{
		events:    map[domain.JobSetKey][]*domain.JobEvent{},
		details:   map[string]*domain.JobDetails{},
		jobErrors: map[string]string{},
	}
}

func (f *fakeApi) OpenJobSetStream(ctx context.Context, key domain.JobSetKey) (subscription.EventStream, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	events := make([]*domain.JobEvent, len(f.events[key]))
	copy(events, f.events[key])
	return &replayStream{ctx: ctx, events: events}, nil
}

func (f *fakeApi) GetJobDetails(_ context.Context, jobIds []string) (map[string]*domain.JobDetails, error) {
	result := map[string]*domain.JobDetails{}
	for _, jobId := range jobIds {
		if d, ok := f.details[jobId]; ok {
			result[jobId] = d
		}
	}
	return result, nil
}

func (f *fakeApi) GetJobErrors(context.Context, []string) (map[string]string, error) {
	return f.jobErrors, nil
}

func (f *fakeApi) GetActiveQueues(context.Context) (map[string][]string, error) {
	return map[string][]string{"gpu": {"q2"}, "cpu": {"q1", "q3"}}, nil
}

func (f *fakeApi) SubmitJobs(_ context.Context, _ string, _ string, items []*api.JobSubmitRequestItem) ([]armadaclient.SubmitResult, error) {
	results := make([]armadaclient.SubmitResult, 0, len(items))
	for range items {
		f.submitted++
		results = append(results, armadaclient.SubmitResult{JobId: fmt.Sprintf("job-%d", f.submitted)})
	}
	return results, nil
}

func (f *fakeApi) CancelJob(_ context.Context, _ string, _ string, jobId string) ([]string, error) {
	return []string{jobId}, nil
}

func (f *fakeApi) CreateQueue(_ context.Context, queue *api.Queue) error {
	f.queues = append(f.queues, queue)
	return nil
}

func (f *fakeApi) Queues(context.Context) ([]*api.Queue, error) {
	return f.queues, nil
}

func (f *fakeApi) Close() error {
	return nil
}

type staticLogClient struct{}

func (staticLogClient) Logs(_ context.Context, request *domain.LogRequest) ([]domain.LogLine, error) {
	return []domain.LogLine{{Timestamp: "2023-03-01T12:00:00Z", Line: "log of " + request.JobId}}, nil
}

func (staticLogClient) Close() error { return nil }

func connectorFor(apis map[string]*fakeApi) jobwatch.Connector {
	return func(resolved *client.ResolvedContext) (*jobwatch.Connection, error) {
		api, ok := apis[resolved.Name]
		if !ok {
			return nil, fmt.Errorf("unknown context %s", resolved.Name)
		}
		return &jobwatch.Connection{
			ContextName: resolved.Name,
			Api:         api,
			LogClients: func(string, string) (routing.LogClient, error) {
				return staticLogClient{}, nil
			},
			Routing: routing.AddressConfig{PrimaryAddress: resolved.ArmadaUrl},
		}, nil
	}
}
