package registry

import (
	"sort"
	"sync"
	"time"

	"golang.org/x/exp/maps"

	"github.com/armadaproject/jobwatch/internal/common/util"
	"github.com/armadaproject/jobwatch/internal/jobwatch/domain"
)

type jobSet struct {
	key     domain.JobSetKey
	addedAt time.Time
	// Jobs in the order they were first added.
	jobs  []*domain.JobRecord
	index map[string]*domain.JobRecord
}

// JobRegistry is the in-memory source of truth for the jobs being watched, grouped by job set.
// Every record reachable from the registry belongs to a job-set bucket present in the top-level map.
type JobRegistry struct {
	jobSets map[domain.JobSetKey]*jobSet
	clock   util.Clock
	mu      sync.RWMutex
	changes chan struct{}
}

func New(clock util.Clock) *JobRegistry {
	if clock == nil {
		clock = &util.DefaultClock{}
	}
	return &JobRegistry{
		jobSets: make(map[domain.JobSetKey]*jobSet),
		clock:   clock,
		changes: make(chan struct{}, 1),
	}
}

// Changes returns a channel that receives a value after registry mutations.
// Notifications coalesce: a reader that falls behind sees a single pending signal.
func (r *JobRegistry) Changes() <-chan struct{} {
	return r.changes
}

func (r *JobRegistry) notify() {
	select {
	case r.changes <- struct{}{}:
	default:
	}
}

func (r *JobRegistry) ensureJobSetLocked(key domain.JobSetKey) (*jobSet, bool) {
	js, ok := r.jobSets[key]
	if ok {
		return js, false
	}
	js = &jobSet{
		key:     key,
		addedAt: r.clock.Now(),
		index:   make(map[string]*domain.JobRecord),
	}
	r.jobSets[key] = js
	return js, true
}

// EnsureJobSet creates an empty bucket for the job set if none exists.
// Returns true if a bucket was created.
func (r *JobRegistry) EnsureJobSet(key domain.JobSetKey) bool {
	r.mu.Lock()
	_, created := r.ensureJobSetLocked(key)
	r.mu.Unlock()

	if created {
		r.notify()
	}
	return created
}

// UpsertJob adds a job to its job set, creating the bucket if needed. If a job with the same id
// already exists in the job set nothing changes; in particular its state is not overwritten.
// Returns true if a new job-set bucket was created.
func (r *JobRegistry) UpsertJob(key domain.JobSetKey, jobId string, initialState domain.JobState, attrs domain.JobAttributes) bool {
	r.mu.Lock()
	js, created := r.ensureJobSetLocked(key)
	_, exists := js.index[jobId]
	if !exists {
		record := &domain.JobRecord{
			JobId:     jobId,
			Key:       key,
			State:     initialState,
			Created:   attrs.Created,
			Namespace: attrs.Namespace,
			Priority:  attrs.Priority,
		}
		js.jobs = append(js.jobs, record)
		js.index[jobId] = record
	}
	r.mu.Unlock()

	if created || !exists {
		r.notify()
	}
	return created
}

func (r *JobRegistry) findLocked(jobId string) *domain.JobRecord {
	for _, js := range r.jobSets {
		if record, ok := js.index[jobId]; ok {
			return record
		}
	}
	return nil
}

// SetState overwrites the state of the job with the given id, wherever it lives.
// Unknown job ids are ignored and false is returned.
func (r *JobRegistry) SetState(jobId string, state domain.JobState) bool {
	return r.UpdateState(jobId, func(domain.JobState) (domain.JobState, bool) { return state, true })
}

// UpdateState applies update to the current state of a job under the registry lock.
// The update may decline the change by returning false.
func (r *JobRegistry) UpdateState(jobId string, update func(current domain.JobState) (domain.JobState, bool)) bool {
	r.mu.Lock()
	record := r.findLocked(jobId)
	if record == nil {
		r.mu.Unlock()
		return false
	}
	next, apply := update(record.State)
	if apply {
		record.State = next
	}
	r.mu.Unlock()

	if apply {
		r.notify()
	}
	return apply
}

// SetError records the failure reason reported for a job. Unknown job ids are ignored.
func (r *JobRegistry) SetError(jobId string, message string) bool {
	r.mu.Lock()
	record := r.findLocked(jobId)
	if record != nil {
		record.Error = message
	}
	r.mu.Unlock()

	if record == nil {
		return false
	}
	r.notify()
	return true
}

// Job returns a copy of the record for jobId.
func (r *JobRegistry) Job(jobId string) (domain.JobRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record := r.findLocked(jobId)
	if record == nil {
		return domain.JobRecord{}, false
	}
	return *record, true
}

// ListJobSetKeys returns the keys of every job set, ordered by queue then job set id.
func (r *JobRegistry) ListJobSetKeys() []domain.JobSetKey {
	r.mu.RLock()
	keys := maps.Keys(r.jobSets)
	r.mu.RUnlock()

	sortKeys(keys)
	return keys
}

// ListJobIds returns the ids of the jobs in a job set in the order they were added.
func (r *JobRegistry) ListJobIds(key domain.JobSetKey) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	js, ok := r.jobSets[key]
	if !ok {
		return nil
	}
	ids := make([]string, 0, len(js.jobs))
	for _, record := range js.jobs {
		ids = append(ids, record.JobId)
	}
	return ids
}

// AllJobIds returns the ids of every job across all job sets.
func (r *JobRegistry) AllJobIds() []string {
	var ids []string
	for _, key := range r.ListJobSetKeys() {
		ids = append(ids, r.ListJobIds(key)...)
	}
	return ids
}

// Jobs returns copies of the records in a job set in the order they were added.
func (r *JobRegistry) Jobs(key domain.JobSetKey) []domain.JobRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()

	js, ok := r.jobSets[key]
	if !ok {
		return nil
	}
	records := make([]domain.JobRecord, 0, len(js.jobs))
	for _, record := range js.jobs {
		records = append(records, *record)
	}
	return records
}

// MonitoredJobSets describes every job set in the form it is persisted.
func (r *JobRegistry) MonitoredJobSets() []domain.MonitoredJobSet {
	r.mu.RLock()
	monitored := make([]domain.MonitoredJobSet, 0, len(r.jobSets))
	for key, js := range r.jobSets {
		monitored = append(monitored, domain.MonitoredJobSet{
			Queue:    key.Queue,
			JobSetId: key.JobSetId,
			AddedAt:  js.addedAt,
		})
	}
	r.mu.RUnlock()

	sort.Slice(monitored, func(i, j int) bool {
		return lessKey(monitored[i].Key(), monitored[j].Key())
	})
	return monitored
}

// Summary counts the jobs in a job set by state.
func (r *JobRegistry) Summary(key domain.JobSetKey) map[domain.JobState]int {
	summary := make(map[domain.JobState]int)
	for _, record := range r.Jobs(key) {
		summary[record.State]++
	}
	return summary
}

// RemoveJobSet drops one job set and its jobs. Returns false if it was not present.
func (r *JobRegistry) RemoveJobSet(key domain.JobSetKey) bool {
	r.mu.Lock()
	_, ok := r.jobSets[key]
	delete(r.jobSets, key)
	r.mu.Unlock()

	if ok {
		r.notify()
	}
	return ok
}

// ClearAll drops every job set.
func (r *JobRegistry) ClearAll() {
	r.mu.Lock()
	r.jobSets = make(map[domain.JobSetKey]*jobSet)
	r.mu.Unlock()

	r.notify()
}

func lessKey(a, b domain.JobSetKey) bool {
	if a.Queue != b.Queue {
		return a.Queue < b.Queue
	}
	return a.JobSetId < b.JobSetId
}

func sortKeys(keys []domain.JobSetKey) {
	sort.Slice(keys, func(i, j int) bool { return lessKey(keys[i], keys[j]) })
}
