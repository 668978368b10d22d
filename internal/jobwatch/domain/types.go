package domain

import (
	"fmt"
	"time"
)

// JobSetKey identifies a job set within a queue. It is used as the map key for both
// the job registry and the subscription table and is never mutated after creation.
type JobSetKey struct {
	Queue    string
	JobSetId string
}

func NewJobSetKey(queue, jobSetId string) JobSetKey {
	return JobSetKey{Queue: queue, JobSetId: jobSetId}
}

func (k JobSetKey) String() string {
	return fmt.Sprintf("%s/%s", k.Queue, k.JobSetId)
}

// JobState is the canonical job state. No other value may be stored on a JobRecord.
type JobState int

const (
	Queued JobState = iota
	Pending
	Running
	Succeeded
	Failed
	Cancelled
	Preempted
)

var jobStateNames = map[JobState]string{
	Queued:    "QUEUED",
	Pending:   "PENDING",
	Running:   "RUNNING",
	Succeeded: "SUCCEEDED",
	Failed:    "FAILED",
	Cancelled: "CANCELLED",
	Preempted: "PREEMPTED",
}

// AllJobStates lists every canonical state in lifecycle order.
var AllJobStates = []JobState{Queued, Pending, Running, Succeeded, Failed, Cancelled, Preempted}

func (s JobState) String() string {
	if name, ok := jobStateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("JobState(%d)", int(s))
}

// IsTerminal returns true for states from which the job will not move on its own.
func (s JobState) IsTerminal() bool {
	switch s {
	case Succeeded, Failed, Cancelled, Preempted:
		return true
	default:
		return false
	}
}

// ParseJobState is the inverse of JobState.String.
func ParseJobState(name string) (JobState, bool) {
	for state, n := range jobStateNames {
		if n == name {
			return state, true
		}
	}
	return Queued, false
}

// JobAttributes are the optional fields recorded when a job is first added.
type JobAttributes struct {
	Created   time.Time
	Namespace string
	Priority  float64
}

// JobRecord is a single job known to the registry. Identity is JobId, unique within a job set.
type JobRecord struct {
	JobId     string
	Key       JobSetKey
	State     JobState
	Created   time.Time
	Namespace string
	Priority  float64
	// Last error reported by the Jobs service for a failed job.
	Error string
}

// MonitoredJobSet is the persisted description of a job set being monitored.
type MonitoredJobSet struct {
	Queue    string    `json:"queue"`
	JobSetId string    `json:"jobSetId"`
	AddedAt  time.Time `json:"addedAt"`
}

func (m MonitoredJobSet) Key() JobSetKey {
	return NewJobSetKey(m.Queue, m.JobSetId)
}
