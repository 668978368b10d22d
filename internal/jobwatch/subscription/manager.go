package subscription

import (
	"context"
	"io"
	"sort"
	"sync"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/exp/maps"

	"github.com/armadaproject/jobwatch/internal/jobwatch/domain"
	"github.com/armadaproject/jobwatch/internal/jobwatch/reconcile"
	"github.com/armadaproject/jobwatch/internal/jobwatch/registry"
)

// EventStream yields the events of one job set. Recv blocks until an event arrives, the
// stream fails, or the context the stream was opened with is cancelled.
type EventStream interface {
	Recv() (*domain.JobEvent, error)
}

// EventSource opens watch streams for job sets.
type EventSource interface {
	OpenJobSetStream(ctx context.Context, key domain.JobSetKey) (EventStream, error)
}

// Observer receives stream lifecycle notifications; may be nil.
type Observer interface {
	StreamOpened(key domain.JobSetKey)
	StreamFailed(key domain.JobSetKey)
	EventApplied(kind domain.EventKind)
	EventDropped()
}

type Config struct {
	// Refuse event updates that move a job out of a terminal state.
	TerminalStatesAreFinal bool
	// Add jobs seen on a stream that the registry does not know yet.
	DiscoverJobs bool
}

// Manager owns at most one stream per job set and applies every event it receives to the
// registry. A stream that fails stays tracked in the Errored state until RestartAll,
// Cancel or CancelAll; there is no automatic reconnect.
type Manager struct {
	source   EventSource
	registry *registry.JobRegistry
	config   Config
	observer Observer

	handles map[domain.JobSetKey]*Handle
	mutex   sync.Mutex
}

func NewManager(source EventSource, jobRegistry *registry.JobRegistry, config Config, observer Observer) *Manager {
	return &Manager{
		source:   source,
		registry: jobRegistry,
		config:   config,
		observer: observer,
		handles:  make(map[domain.JobSetKey]*Handle),
	}
}

// Monitor starts streaming events for key, replacing any stream already open for it.
// ctx bounds the lifetime of the stream and should outlive the call.
func (m *Manager) Monitor(ctx context.Context, key domain.JobSetKey) *Handle {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	return m.monitorLocked(ctx, key)
}

func (m *Manager) monitorLocked(ctx context.Context, key domain.JobSetKey) *Handle {
	if existing, ok := m.handles[key]; ok {
		log.WithFields(keyFields(key)).Info("cancelling existing stream")
		existing.Cancel()
		delete(m.handles, key)
	}

	streamCtx, cancel := context.WithCancel(ctx)
	handle := newHandle(key, cancel)
	m.handles[key] = handle
	go m.run(streamCtx, handle)
	return handle
}

// RestartAll cancels every stream and opens a new one for each job set that was tracked.
// Returns the number of streams restarted.
func (m *Manager) RestartAll(ctx context.Context) int {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	keys := maps.Keys(m.handles)
	for _, key := range keys {
		m.handles[key].Cancel()
		delete(m.handles, key)
	}
	sortKeys(keys)
	for _, key := range keys {
		log.WithFields(keyFields(key)).Info("restarting stream")
		m.monitorLocked(ctx, key)
	}
	return len(keys)
}

// Cancel stops and forgets the stream for key. Returns false if there was none.
func (m *Manager) Cancel(key domain.JobSetKey) bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	handle, ok := m.handles[key]
	if !ok {
		return false
	}
	handle.Cancel()
	delete(m.handles, key)
	return true
}

// CancelAll stops and forgets every stream.
func (m *Manager) CancelAll() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for key, handle := range m.handles {
		handle.Cancel()
		delete(m.handles, key)
	}
}

func (m *Manager) Keys() []domain.JobSetKey {
	m.mutex.Lock()
	keys := maps.Keys(m.handles)
	m.mutex.Unlock()

	sortKeys(keys)
	return keys
}

func (m *Manager) Handle(key domain.JobSetKey) (*Handle, bool) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	handle, ok := m.handles[key]
	return handle, ok
}

// State returns the lifecycle state for key; Unsubscribed if no stream is tracked.
func (m *Manager) State(key domain.JobSetKey) State {
	handle, ok := m.Handle(key)
	if !ok {
		return Unsubscribed
	}
	return handle.State()
}

func (m *Manager) NumActiveSubscriptions() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	return len(m.handles)
}

func (m *Manager) run(ctx context.Context, handle *Handle) {
	defer close(handle.done)

	fields := keyFields(handle.key)
	log.WithFields(fields).Debug("opening job set event stream")

	stream, err := m.source.OpenJobSetStream(ctx, handle.key)
	if err != nil {
		m.streamFailed(ctx, handle, errors.Wrapf(err, "error opening event stream for %s", handle.key))
		return
	}
	handle.setState(Streaming, nil)
	if m.observer != nil {
		m.observer.StreamOpened(handle.key)
	}
	log.WithFields(fields).Info("streaming job set events")

	for {
		event, err := stream.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = errors.Errorf("event stream for %s closed by server", handle.key)
			}
			m.streamFailed(ctx, handle, err)
			return
		}
		if ctx.Err() != nil {
			m.streamFailed(ctx, handle, ctx.Err())
			return
		}
		handle.recordEvent(event.MessageId)
		m.apply(handle.key, event)
	}
}

// streamFailed moves the handle to Errored. The handle stays tracked so RestartAll can reopen it.
// A stream stopped through Handle.Cancel is not a fault; one whose parent context ended is.
func (m *Manager) streamFailed(ctx context.Context, handle *Handle, err error) {
	if handle.cancelled() {
		return
	}
	if ctx.Err() != nil {
		err = errors.Wrapf(ctx.Err(), "event stream for %s stopped by its context", handle.key)
		log.WithFields(keyFields(handle.key)).WithError(err).Warn("job set event stream stopped")
	} else {
		log.WithFields(keyFields(handle.key)).WithError(err).Error("job set event stream failed")
	}
	handle.setState(Errored, err)
	if m.observer != nil {
		m.observer.StreamFailed(handle.key)
	}
}

func (m *Manager) apply(key domain.JobSetKey, event *domain.JobEvent) {
	state, ok := reconcile.FromEvent(event)
	if !ok || event.JobId == "" {
		if m.observer != nil {
			m.observer.EventDropped()
		}
		return
	}

	if m.config.DiscoverJobs {
		m.registry.UpsertJob(key, event.JobId, state, domain.JobAttributes{Created: event.Created})
	}
	applied := m.registry.UpdateState(event.JobId, func(current domain.JobState) (domain.JobState, bool) {
		return state, reconcile.AllowTransition(current, state, m.config.TerminalStatesAreFinal)
	})

	log.WithFields(keyFields(key)).WithFields(log.Fields{
		"job_id":  event.JobId,
		"event":   event.Kind.String(),
		"state":   state.String(),
		"applied": applied,
	}).Debug("got event")
	if m.observer != nil {
		m.observer.EventApplied(event.Kind)
	}
}

func keyFields(key domain.JobSetKey) log.Fields {
	return log.Fields{
		"queue":      key.Queue,
		"job_set_id": key.JobSetId,
	}
}

func sortKeys(keys []domain.JobSetKey) {
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Queue != keys[j].Queue {
			return keys[i].Queue < keys[j].Queue
		}
		return keys[i].JobSetId < keys[j].JobSetId
	})
}
