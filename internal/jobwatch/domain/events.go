package domain

import "time"

// EventKind is the tag of a job event. Events are decoded from the wire exactly once,
// at the transport boundary, so that everything downstream switches on this tag.
type EventKind int

const (
	// EventUnknown marks a payload that carried none of the known variants.
	EventUnknown EventKind = iota
	EventSubmitted
	EventQueued
	EventLeased
	EventPending
	EventRunning
	EventSucceeded
	EventFailed
	EventCancelled
	EventPreempted
)

var eventKindNames = map[EventKind]string{
	EventUnknown:   "unknown",
	EventSubmitted: "submitted",
	EventQueued:    "queued",
	EventLeased:    "leased",
	EventPending:   "pending",
	EventRunning:   "running",
	EventSucceeded: "succeeded",
	EventFailed:    "failed",
	EventCancelled: "cancelled",
	EventPreempted: "preempted",
}

func (k EventKind) String() string {
	if name, ok := eventKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// JobEvent is one event delivered on a job-set stream.
type JobEvent struct {
	// Id of the envelope on the stream, usable as a from-message id.
	MessageId string
	Kind      EventKind
	JobId     string
	JobSetId  string
	Queue     string
	Created   time.Time
	// Set on leased, pending, running, succeeded and failed events.
	ClusterId string
	// Set on failed events.
	Reason string
}

// PolledState is the state field of a polled job-details record. The Jobs service may
// report it as free text ("RUNNING", "JOB_STATE_RUNNING") or as a small integer.
type PolledState struct {
	Text   string
	Code   int32
	IsCode bool
}

func PolledText(text string) PolledState {
	return PolledState{Text: text}
}

func PolledCode(code int32) PolledState {
	return PolledState{Code: code, IsCode: true}
}

// JobRunDetails describes one run of a job, in the order the runs were created.
type JobRunDetails struct {
	RunId   string
	Cluster string
	Node    string
}

// JobDetails is a polled record from the Jobs query service.
type JobDetails struct {
	JobId     string
	Queue     string
	JobSetId  string
	Namespace string
	State     PolledState
	Runs      []JobRunDetails
}

// LatestCluster returns the cluster of the most recent run that reported one.
func (d *JobDetails) LatestCluster() (string, bool) {
	if d == nil || len(d.Runs) == 0 {
		return "", false
	}
	latest := d.Runs[len(d.Runs)-1]
	if latest.Cluster == "" {
		return "", false
	}
	return latest.Cluster, true
}

// LogLine is a single line returned by Binoculars.
type LogLine struct {
	Timestamp string
	Line      string
}

// LogRequest selects the pod and window of logs to fetch for a job.
type LogRequest struct {
	JobId     string
	PodNumber int32
	Namespace string
	SinceTime string
	// Zero means no tail limit.
	TailLines int64
}
