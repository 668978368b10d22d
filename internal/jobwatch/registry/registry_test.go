package registry

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/armadaproject/jobwatch/internal/common/util"
	"github.com/armadaproject/jobwatch/internal/jobwatch/domain"
)

var (
	testTime = time.Date(2023, 3, 14, 9, 0, 0, 0, time.UTC)
	keyA     = domain.NewJobSetKey("q1", "js1")
	keyB     = domain.NewJobSetKey("q1", "js2")
	keyC     = domain.NewJobSetKey("q0", "js9")
)

func withRegistry(action func(r *JobRegistry)) {
	action(New(&util.DummyClock{T: testTime}))
}

func drain(r *JobRegistry) {
	select {
	case <-r.Changes():
	default:
	}
}

func TestUpsertJob_CreatesJobSet(t *testing.T) {
	withRegistry(func(r *JobRegistry) {
		created := r.UpsertJob(keyA, "job-A", domain.Queued, domain.JobAttributes{Namespace: "default"})
		assert.True(t, created)

		created = r.UpsertJob(keyA, "job-B", domain.Running, domain.JobAttributes{})
		assert.False(t, created)

		assert.Equal(t, []string{"job-A", "job-B"}, r.ListJobIds(keyA))
		job, ok := r.Job("job-A")
		require.True(t, ok)
		assert.Equal(t, keyA, job.Key)
		assert.Equal(t, "default", job.Namespace)
		assert.Equal(t, domain.Queued, job.State)
	})
}

func TestUpsertJob_IsIdempotent(t *testing.T) {
	withRegistry(func(r *JobRegistry) {
		r.UpsertJob(keyA, "job-A", domain.Queued, domain.JobAttributes{})
		r.SetState("job-A", domain.Running)
		r.UpsertJob(keyA, "job-A", domain.Queued, domain.JobAttributes{Namespace: "other"})

		jobs := r.Jobs(keyA)
		require.Len(t, jobs, 1)
		assert.Equal(t, domain.Running, jobs[0].State)
		assert.Equal(t, "", jobs[0].Namespace)
	})
}

func TestSetState(t *testing.T) {
	withRegistry(func(r *JobRegistry) {
		r.UpsertJob(keyA, "job-A", domain.Queued, domain.JobAttributes{})
		r.UpsertJob(keyB, "job-B", domain.Queued, domain.JobAttributes{})

		assert.True(t, r.SetState("job-B", domain.Failed))
		assert.False(t, r.SetState("job-missing", domain.Failed))

		job, _ := r.Job("job-B")
		assert.Equal(t, domain.Failed, job.State)
		job, _ = r.Job("job-A")
		assert.Equal(t, domain.Queued, job.State)
		_, ok := r.Job("job-missing")
		assert.False(t, ok)
	})
}

func TestUpdateState_CanDecline(t *testing.T) {
	withRegistry(func(r *JobRegistry) {
		r.UpsertJob(keyA, "job-A", domain.Succeeded, domain.JobAttributes{})
		drain(r)

		applied := r.UpdateState("job-A", func(current domain.JobState) (domain.JobState, bool) {
			return domain.Running, !current.IsTerminal()
		})
		assert.False(t, applied)
		job, _ := r.Job("job-A")
		assert.Equal(t, domain.Succeeded, job.State)

		select {
		case <-r.Changes():
			t.Fatal("declined update must not notify")
		default:
		}
	})
}

func TestSetError(t *testing.T) {
	withRegistry(func(r *JobRegistry) {
		r.UpsertJob(keyA, "job-A", domain.Failed, domain.JobAttributes{})
		assert.True(t, r.SetError("job-A", "OOMKilled"))
		assert.False(t, r.SetError("job-missing", "OOMKilled"))

		job, _ := r.Job("job-A")
		assert.Equal(t, "OOMKilled", job.Error)
	})
}

func TestListJobSetKeys_Sorted(t *testing.T) {
	withRegistry(func(r *JobRegistry) {
		r.EnsureJobSet(keyB)
		r.EnsureJobSet(keyA)
		r.EnsureJobSet(keyC)
		assert.False(t, r.EnsureJobSet(keyA))

		assert.Equal(t, []domain.JobSetKey{keyC, keyA, keyB}, r.ListJobSetKeys())
		assert.Empty(t, r.ListJobIds(keyA))
		assert.Nil(t, r.ListJobIds(domain.NewJobSetKey("nope", "nope")))
	})
}

func TestAllJobIds(t *testing.T) {
	withRegistry(func(r *JobRegistry) {
		r.UpsertJob(keyB, "job-2", domain.Queued, domain.JobAttributes{})
		r.UpsertJob(keyA, "job-1", domain.Queued, domain.JobAttributes{})
		r.UpsertJob(keyB, "job-3", domain.Queued, domain.JobAttributes{})

		assert.Equal(t, []string{"job-1", "job-2", "job-3"}, r.AllJobIds())
	})
}

func TestMonitoredJobSets(t *testing.T) {
	withRegistry(func(r *JobRegistry) {
		r.EnsureJobSet(keyA)
		r.UpsertJob(keyC, "job-A", domain.Queued, domain.JobAttributes{})

		expected := []domain.MonitoredJobSet{
			{Queue: "q0", JobSetId: "js9", AddedAt: testTime},
			{Queue: "q1", JobSetId: "js1", AddedAt: testTime},
		}
		assert.Equal(t, expected, r.MonitoredJobSets())
	})
}

func TestMonitoredJobSets_KeepsFirstAddedAt(t *testing.T) {
	clock := &util.DummyClock{T: testTime}
	r := New(clock)
	r.EnsureJobSet(keyA)
	clock.Advance(time.Hour)
	r.EnsureJobSet(keyB)
	r.EnsureJobSet(keyA)

	expected := []domain.MonitoredJobSet{
		{Queue: "q1", JobSetId: "js1", AddedAt: testTime},
		{Queue: "q1", JobSetId: "js2", AddedAt: testTime.Add(time.Hour)},
	}
	assert.Equal(t, expected, r.MonitoredJobSets())
}

func TestSummary(t *testing.T) {
	withRegistry(func(r *JobRegistry) {
		r.UpsertJob(keyA, "job-1", domain.Running, domain.JobAttributes{})
		r.UpsertJob(keyA, "job-2", domain.Running, domain.JobAttributes{})
		r.UpsertJob(keyA, "job-3", domain.Failed, domain.JobAttributes{})

		assert.Equal(t, map[domain.JobState]int{domain.Running: 2, domain.Failed: 1}, r.Summary(keyA))
	})
}

func TestClearAll(t *testing.T) {
	withRegistry(func(r *JobRegistry) {
		r.UpsertJob(keyA, "job-A", domain.Queued, domain.JobAttributes{})
		r.ClearAll()

		assert.Empty(t, r.ListJobSetKeys())
		assert.False(t, r.SetState("job-A", domain.Running))
	})
}

func TestRemoveJobSet(t *testing.T) {
	withRegistry(func(r *JobRegistry) {
		r.UpsertJob(keyA, "job-A", domain.Queued, domain.JobAttributes{})
		r.UpsertJob(keyB, "job-B", domain.Queued, domain.JobAttributes{})

		assert.True(t, r.RemoveJobSet(keyA))
		assert.False(t, r.RemoveJobSet(keyA))

		assert.Equal(t, []domain.JobSetKey{keyB}, r.ListJobSetKeys())
		_, ok := r.Job("job-A")
		assert.False(t, ok)
	})
}

func TestChanges_Coalesce(t *testing.T) {
	withRegistry(func(r *JobRegistry) {
		r.UpsertJob(keyA, "job-A", domain.Queued, domain.JobAttributes{})
		r.SetState("job-A", domain.Running)
		r.SetState("job-A", domain.Succeeded)

		select {
		case <-r.Changes():
		default:
			t.Fatal("expected a change notification")
		}
		select {
		case <-r.Changes():
			t.Fatal("notifications should coalesce")
		default:
		}
	})
}

func TestConcurrentWrites(t *testing.T) {
	withRegistry(func(r *JobRegistry) {
		wg := sync.WaitGroup{}
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				r.UpsertJob(keyA, "job-A", domain.Queued, domain.JobAttributes{})
				r.SetState("job-A", domain.Running)
				r.ListJobSetKeys()
			}()
		}
		wg.Wait()

		assert.Equal(t, []string{"job-A"}, r.ListJobIds(keyA))
	})
}
