package armadaclient

import (
	"context"
	"io"

	grpc_retry "github.com/grpc-ecosystem/go-grpc-middleware/retry"
	"github.com/pkg/errors"
	"google.golang.org/grpc"

	"github.com/armadaproject/armada/pkg/api"
	"github.com/armadaproject/jobwatch/internal/jobwatch/domain"
	"github.com/armadaproject/jobwatch/internal/jobwatch/subscription"
)

// OpenJobSetStream opens a watching event stream over the whole history of a job set.
// The stream lives until ctx is cancelled or the server ends it.
func (c *Client) OpenJobSetStream(ctx context.Context, key domain.JobSetKey) (subscription.EventStream, error) {
	conn, err := c.ensureApiConnection()
	if err != nil {
		return nil, err
	}
	stream, err := api.NewEventClient(conn).GetJobSetEvents(ctx, &api.JobSetRequest{
		Id:             key.JobSetId,
		Queue:          key.Queue,
		Watch:          true,
		FromMessageId:  "",
		ErrorIfMissing: false,
	}, grpc.WaitForReady(false), grpc_retry.Disable())
	if err != nil {
		return nil, errors.Wrapf(err, "error opening event stream for %s", key)
	}
	return &jobSetStream{stream: stream}, nil
}

type jobSetStream struct {
	stream api.Event_GetJobSetEventsClient
}

func (s *jobSetStream) Recv() (*domain.JobEvent, error) {
	msg, err := s.stream.Recv()
	if err == io.EOF {
		return nil, err
	} else if err != nil {
		return nil, errors.WithStack(err)
	}
	return DecodeEvent(msg), nil
}

// DecodeEvent converts a stream message into a domain event. A message carrying none of
// the job lifecycle variants decodes to an event of kind EventUnknown.
func DecodeEvent(msg *api.EventStreamMessage) *domain.JobEvent {
	event := &domain.JobEvent{Kind: domain.EventUnknown}
	if msg == nil {
		return event
	}
	event.MessageId = msg.Id

	m := msg.Message
	if m == nil {
		return event
	}
	switch {
	case m.GetSubmitted() != nil:
		e := m.GetSubmitted()
		event.Kind, event.JobId, event.JobSetId, event.Queue = domain.EventSubmitted, e.JobId, e.JobSetId, e.Queue
	case m.GetQueued() != nil:
		e := m.GetQueued()
		event.Kind, event.JobId, event.JobSetId, event.Queue = domain.EventQueued, e.JobId, e.JobSetId, e.Queue
	case m.GetLeased() != nil:
		e := m.GetLeased()
		event.Kind, event.JobId, event.JobSetId, event.Queue = domain.EventLeased, e.JobId, e.JobSetId, e.Queue
		event.ClusterId = e.ClusterId
	case m.GetPending() != nil:
		e := m.GetPending()
		event.Kind, event.JobId, event.JobSetId, event.Queue = domain.EventPending, e.JobId, e.JobSetId, e.Queue
		event.ClusterId = e.ClusterId
	case m.GetRunning() != nil:
		e := m.GetRunning()
		event.Kind, event.JobId, event.JobSetId, event.Queue = domain.EventRunning, e.JobId, e.JobSetId, e.Queue
		event.ClusterId = e.ClusterId
	case m.GetSucceeded() != nil:
		e := m.GetSucceeded()
		event.Kind, event.JobId, event.JobSetId, event.Queue = domain.EventSucceeded, e.JobId, e.JobSetId, e.Queue
		event.ClusterId = e.ClusterId
	case m.GetFailed() != nil:
		e := m.GetFailed()
		event.Kind, event.JobId, event.JobSetId, event.Queue = domain.EventFailed, e.JobId, e.JobSetId, e.Queue
		event.ClusterId = e.ClusterId
		event.Reason = e.Reason
	case m.GetCancelled() != nil:
		e := m.GetCancelled()
		event.Kind, event.JobId, event.JobSetId, event.Queue = domain.EventCancelled, e.JobId, e.JobSetId, e.Queue
	case m.GetPreempted() != nil:
		e := m.GetPreempted()
		event.Kind, event.JobId, event.JobSetId, event.Queue = domain.EventPreempted, e.JobId, e.JobSetId, e.Queue
	}
	return event
}
