package subscription

import (
	"context"
	"sync"

	"github.com/armadaproject/jobwatch/internal/jobwatch/domain"
)

// State is the lifecycle state of the subscription for one job set.
type State int

const (
	Unsubscribed State = iota
	Subscribing
	Streaming
	Errored
	Cancelled
)

func (s State) String() string {
	switch s {
	case Unsubscribed:
		return "unsubscribed"
	case Subscribing:
		return "subscribing"
	case Streaming:
		return "streaming"
	case Errored:
		return "errored"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Handle ties a job set to the goroutine consuming its event stream.
type Handle struct {
	key    domain.JobSetKey
	cancel context.CancelFunc
	done   chan struct{}

	mutex         sync.Mutex
	stopRequested bool
	state         State
	err           error
	lastMessageId string
	received      int
}

func newHandle(key domain.JobSetKey, cancel context.CancelFunc) *Handle {
	return &Handle{
		key:    key,
		cancel: cancel,
		done:   make(chan struct{}),
		state:  Subscribing,
	}
}

func (h *Handle) Key() domain.JobSetKey {
	return h.key
}

// Cancel stops the stream and waits for its goroutine to exit. Once Cancel returns no
// further event from this handle reaches the registry. Safe to call more than once.
func (h *Handle) Cancel() {
	h.mutex.Lock()
	h.stopRequested = true
	h.mutex.Unlock()
	h.cancel()
	<-h.done
	h.setState(Cancelled, nil)
}

// Done is closed when the stream goroutine has exited, whether by cancellation or error.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

func (h *Handle) State() State {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return h.state
}

// Err returns the error that stopped the stream, if any.
func (h *Handle) Err() error {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return h.err
}

// LastMessageId is the id of the last envelope received on the stream.
func (h *Handle) LastMessageId() string {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return h.lastMessageId
}

// Received counts the events received on the stream, including dropped ones.
func (h *Handle) Received() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return h.received
}

// cancelled reports whether Cancel was called, as opposed to the stream's parent context ending.
func (h *Handle) cancelled() bool {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return h.stopRequested
}

func (h *Handle) setState(state State, err error) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	// A cancelled handle stays cancelled.
	if h.state == Cancelled {
		return
	}
	h.state = state
	if err != nil {
		h.err = err
	}
}

func (h *Handle) recordEvent(messageId string) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.received++
	if messageId != "" {
		h.lastMessageId = messageId
	}
}
