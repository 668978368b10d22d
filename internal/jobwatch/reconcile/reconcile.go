// Package reconcile translates the two encodings of job state used by Armada into the
// canonical domain.JobState.
//
// Event streams tag each message with the transition that occurred (submitted, leased,
// running ...). The Jobs query service reports the current state as either text, possibly
// prefixed ("JOB_STATE_FAILED"), or as the numeric value of the api.JobState enum. This
// package is the only place that knows about either encoding.
package reconcile

import (
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/armadaproject/jobwatch/internal/jobwatch/domain"
)

var eventStates = map[domain.EventKind]domain.JobState{
	domain.EventSubmitted: domain.Queued,
	domain.EventQueued:    domain.Queued,
	domain.EventLeased:    domain.Pending,
	domain.EventPending:   domain.Pending,
	domain.EventRunning:   domain.Running,
	domain.EventSucceeded: domain.Succeeded,
	domain.EventFailed:    domain.Failed,
	domain.EventCancelled: domain.Cancelled,
	domain.EventPreempted: domain.Preempted,
}

// FromEvent returns the state a job moves to on receipt of the given event.
// ok is false for events that carry none of the known variants; these must be dropped.
func FromEvent(event *domain.JobEvent) (state domain.JobState, ok bool) {
	if event == nil {
		return domain.Queued, false
	}
	state, ok = eventStates[event.Kind]
	if !ok {
		log.WithFields(log.Fields{
			"job_id":     event.JobId,
			"job_set_id": event.JobSetId,
			"queue":      event.Queue,
			"message_id": event.MessageId,
		}).Warn("discarding event with no recognised job state transition")
	}
	return state, ok
}

// Checked in order; the first token found wins.
var textTokens = []struct {
	tokens []string
	state  domain.JobState
}{
	{[]string{"queued", "submitted"}, domain.Queued},
	{[]string{"pending", "leased"}, domain.Pending},
	{[]string{"running"}, domain.Running},
	{[]string{"succeeded"}, domain.Succeeded},
	{[]string{"failed"}, domain.Failed},
	{[]string{"cancelled"}, domain.Cancelled},
	{[]string{"preempted"}, domain.Preempted},
}

// FromPolledText maps a textual job state. Matching is case-insensitive and by substring,
// so "RUNNING", "running" and "JOB_STATE_RUNNING" are equivalent. Unmatched text maps to Queued.
func FromPolledText(text string) domain.JobState {
	lower := strings.ToLower(text)
	for _, candidate := range textTokens {
		for _, token := range candidate.tokens {
			if strings.Contains(lower, token) {
				return candidate.state
			}
		}
	}
	return domain.Queued
}

// Values of api.JobState: QUEUED=0, PENDING=1, RUNNING=2, SUCCEEDED=3, FAILED=4, UNKNOWN=5,
// SUBMITTED=6, LEASED=7, PREEMPTED=8, CANCELLED=9, REJECTED=10.
var codeStates = map[int32]domain.JobState{
	0: domain.Queued,
	6: domain.Queued,
	1: domain.Pending,
	7: domain.Pending,
	2: domain.Running,
	3: domain.Succeeded,
	4: domain.Failed,
	8: domain.Preempted,
	9: domain.Cancelled,
}

// FromPolledCode maps a numeric job state. Codes outside the table map to Queued.
func FromPolledCode(code int32) domain.JobState {
	if state, ok := codeStates[code]; ok {
		return state
	}
	return domain.Queued
}

func FromPolled(state domain.PolledState) domain.JobState {
	if state.IsCode {
		return FromPolledCode(state.Code)
	}
	return FromPolledText(state.Text)
}

// AllowTransition reports whether a job in state current may be moved to next.
// With terminalStatesAreFinal unset every transition is allowed and the last applied
// update wins. When set, a job that has reached a terminal state is never moved back to
// a non-terminal one; this protects against events replayed after a stream restart.
func AllowTransition(current, next domain.JobState, terminalStatesAreFinal bool) bool {
	if !terminalStatesAreFinal {
		return true
	}
	return !(current.IsTerminal() && !next.IsTerminal())
}
