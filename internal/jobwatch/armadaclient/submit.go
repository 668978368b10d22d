package armadaclient

import (
	"context"
	"io"

	"github.com/pkg/errors"

	"github.com/armadaproject/armada/pkg/api"
	"github.com/armadaproject/jobwatch/pkg/client"
)

const (
	defaultNamespace = "default"
	maxQueues        = 1000
)

// SubmitResult is the outcome of one submitted job request item.
type SubmitResult struct {
	JobId string
	Error string
}

// SubmitJobs submits items to a job set, splitting large submissions into several requests.
// Items without a namespace are placed in the default namespace. Results are in item order.
func (c *Client) SubmitJobs(ctx context.Context, queue string, jobSetId string, items []*api.JobSubmitRequestItem) ([]SubmitResult, error) {
	conn, err := c.ensureApiConnection()
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		if item.Namespace == "" {
			item.Namespace = defaultNamespace
		}
	}

	submitClient := api.NewSubmitClient(conn)
	results := make([]SubmitResult, 0, len(items))
	for _, request := range client.CreateChunkedSubmitRequests(queue, jobSetId, items) {
		resp, err := c.submit(ctx, submitClient, request)
		if err != nil {
			return results, errors.Wrapf(err, "error submitting %d jobs to %s/%s", len(request.JobRequestItems), queue, jobSetId)
		}
		for _, item := range resp.JobResponseItems {
			results = append(results, SubmitResult{JobId: item.JobId, Error: item.Error})
		}
	}
	return results, nil
}

func (c *Client) submit(ctx context.Context, submitClient api.SubmitClient, request *api.JobSubmitRequest) (*api.JobSubmitResponse, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	return submitClient.SubmitJobs(ctx, request, noRetry()...)
}

// CancelJob cancels one job and returns the ids the server reports as cancelled.
func (c *Client) CancelJob(ctx context.Context, queue string, jobSetId string, jobId string) ([]string, error) {
	conn, err := c.ensureApiConnection()
	if err != nil {
		return nil, err
	}
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	result, err := api.NewSubmitClient(conn).CancelJobs(ctx, &api.JobCancelRequest{
		JobId:    jobId,
		JobSetId: jobSetId,
		Queue:    queue,
	}, noRetry()...)
	if err != nil {
		return nil, errors.Wrapf(err, "error cancelling job %s", jobId)
	}
	return result.CancelledIds, nil
}

func (c *Client) CreateQueue(ctx context.Context, queue *api.Queue) error {
	conn, err := c.ensureApiConnection()
	if err != nil {
		return err
	}
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	if _, err := api.NewSubmitClient(conn).CreateQueue(ctx, queue, noRetry()...); err != nil {
		return errors.Wrapf(err, "error creating queue %s", queue.Name)
	}
	return nil
}

// Queues lists up to 1000 queues known to the server.
func (c *Client) Queues(ctx context.Context) ([]*api.Queue, error) {
	conn, err := c.ensureApiConnection()
	if err != nil {
		return nil, err
	}
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	stream, err := api.NewSubmitClient(conn).GetQueues(ctx, &api.StreamingQueueGetRequest{Num: maxQueues}, noRetry()...)
	if err != nil {
		return nil, errors.Wrap(err, "error listing queues")
	}
	var queues []*api.Queue
	for {
		msg, err := stream.Recv()
		if err == io.EOF {
			return queues, nil
		} else if err != nil {
			return queues, errors.Wrap(err, "error listing queues")
		}
		if msg.GetEnd() != nil {
			return queues, nil
		}
		if queue := msg.GetQueue(); queue != nil {
			queues = append(queues, queue)
		}
	}
}
