package armadaclient

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/armadaproject/armada/pkg/api"
	"github.com/armadaproject/jobwatch/internal/jobwatch/domain"
)

func TestDecodeEvent(t *testing.T) {
	tests := map[string]struct {
		message   *api.EventMessage
		kind      domain.EventKind
		clusterId string
		reason    string
	}{
		"submitted": {
			message: &api.EventMessage{Events: &api.EventMessage_Submitted{Submitted: &api.JobSubmittedEvent{JobId: "job", JobSetId: "set", Queue: "queue"}}},
			kind:    domain.EventSubmitted,
		},
		"queued": {
			message: &api.EventMessage{Events: &api.EventMessage_Queued{Queued: &api.JobQueuedEvent{JobId: "job", JobSetId: "set", Queue: "queue"}}},
			kind:    domain.EventQueued,
		},
		"leased": {
			message:   &api.EventMessage{Events: &api.EventMessage_Leased{Leased: &api.JobLeasedEvent{JobId: "job", JobSetId: "set", Queue: "queue", ClusterId: "c1"}}},
			kind:      domain.EventLeased,
			clusterId: "c1",
		},
		"pending": {
			message:   &api.EventMessage{Events: &api.EventMessage_Pending{Pending: &api.JobPendingEvent{JobId: "job", JobSetId: "set", Queue: "queue", ClusterId: "c1"}}},
			kind:      domain.EventPending,
			clusterId: "c1",
		},
		"running": {
			message:   &api.EventMessage{Events: &api.EventMessage_Running{Running: &api.JobRunningEvent{JobId: "job", JobSetId: "set", Queue: "queue", ClusterId: "c2"}}},
			kind:      domain.EventRunning,
			clusterId: "c2",
		},
		"succeeded": {
			message:   &api.EventMessage{Events: &api.EventMessage_Succeeded{Succeeded: &api.JobSucceededEvent{JobId: "job", JobSetId: "set", Queue: "queue", ClusterId: "c2"}}},
			kind:      domain.EventSucceeded,
			clusterId: "c2",
		},
		"failed": {
			message:   &api.EventMessage{Events: &api.EventMessage_Failed{Failed: &api.JobFailedEvent{JobId: "job", JobSetId: "set", Queue: "queue", ClusterId: "c2", Reason: "OOMKilled"}}},
			kind:      domain.EventFailed,
			clusterId: "c2",
			reason:    "OOMKilled",
		},
		"cancelled": {
			message: &api.EventMessage{Events: &api.EventMessage_Cancelled{Cancelled: &api.JobCancelledEvent{JobId: "job", JobSetId: "set", Queue: "queue"}}},
			kind:    domain.EventCancelled,
		},
		"preempted": {
			message: &api.EventMessage{Events: &api.EventMessage_Preempted{Preempted: &api.JobPreemptedEvent{JobId: "job", JobSetId: "set", Queue: "queue"}}},
			kind:    domain.EventPreempted,
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			event := DecodeEvent(&api.EventStreamMessage{Id: "42-0", Message: tc.message})

			assert.Equal(t, tc.kind, event.Kind)
			assert.Equal(t, "42-0", event.MessageId)
			assert.Equal(t, "job", event.JobId)
			assert.Equal(t, "set", event.JobSetId)
			assert.Equal(t, "queue", event.Queue)
			assert.Equal(t, tc.clusterId, event.ClusterId)
			assert.Equal(t, tc.reason, event.Reason)
		})
	}
}

func TestDecodeEvent_Unknown(t *testing.T) {
	reprioritized := &api.EventMessage{Events: &api.EventMessage_Reprioritized{Reprioritized: &api.JobReprioritizedEvent{JobId: "job"}}}

	assert.Equal(t, domain.EventUnknown, DecodeEvent(&api.EventStreamMessage{Id: "1", Message: reprioritized}).Kind)
	assert.Equal(t, domain.EventUnknown, DecodeEvent(&api.EventStreamMessage{Id: "1"}).Kind)
	assert.Equal(t, domain.EventUnknown, DecodeEvent(nil).Kind)
}

func TestConvertJobDetails(t *testing.T) {
	details := ConvertJobDetails("job", &api.JobDetails{
		Queue:     "queue",
		Jobset:    "set",
		Namespace: "ns",
		State:     api.JobState_FAILED,
		JobRuns:   []*api.JobRunDetails{{RunId: "run-1", Cluster: "c1", Node: "n1"}, nil},
	})

	assert.Equal(t, "job", details.JobId)
	assert.Equal(t, "set", details.JobSetId)
	assert.Equal(t, "ns", details.Namespace)
	assert.Equal(t, domain.PolledCode(int32(api.JobState_FAILED)), details.State)
	assert.Equal(t, []domain.JobRunDetails{{RunId: "run-1", Cluster: "c1", Node: "n1"}}, details.Runs)

	empty := ConvertJobDetails("job", nil)
	_, ok := empty.LatestCluster()
	assert.False(t, ok)
}
