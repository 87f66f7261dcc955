package events

import (
	"sync"

	"id5multiplexing/domain"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// Event names what happened to an instance or its follower.
type Event string

const (
	// InstanceJoined carries the domain.Properties of a newly discovered peer.
	InstanceJoined Event = "ID5_INSTANCE_JOINED"
	// InstanceMessageReceived carries the messaging.Envelope of any accepted message.
	InstanceMessageReceived Event = "ID5_MESSAGE_RECEIVED"
	// LeaderElected carries the domain.Properties of the elected leader.
	LeaderElected Event = "ID5_LEADER_ELECTED"
	// UserIDReady carries a UserIDReadyEvent.
	UserIDReady Event = "USER_ID_READY"
	// UserIDFetchCanceled carries a domain.FetchCancel.
	UserIDFetchCanceled Event = "USER_ID_FETCH_CANCELED"
	// CascadeNeeded carries a domain.CascadeData.
	CascadeNeeded Event = "CASCADE_NEEDED"
)

// Handler receives the payload of one event.
type Handler func(payload any)

// Dispatcher calls handlers synchronously, in registration order. A panicking handler is logged and
// does not prevent the other handlers from running.
type Dispatcher struct {
	logger log.Logger

	mu       sync.RWMutex
	handlers map[Event][]Handler
}

// NewDispatcher returns an empty Dispatcher. A nil logger discards logs.
func NewDispatcher(logger log.Logger) *Dispatcher {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Dispatcher{
		logger:   log.With(logger, "component", "events"),
		handlers: make(map[Event][]Handler),
	}
}

// On subscribes h to e.
func (d *Dispatcher) On(e Event, h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[e] = append(d.handlers[e], h)
}

// Emit calls every handler subscribed to e.
func (d *Dispatcher) Emit(e Event, payload any) {
	d.mu.RLock()
	hs := make([]Handler, len(d.handlers[e]))
	copy(hs, d.handlers[e])
	d.mu.RUnlock()

	for _, h := range hs {
		d.call(e, h, payload)
	}
}

func (d *Dispatcher) call(e Event, h Handler, payload any) {
	defer func() {
		if r := recover(); r != nil {
			level.Error(d.logger).Log("msg", "event handler panicked", "event", e, "panic", r)
		}
	}()
	h(payload)
}

// UserIDReadyEvent is the payload of UserIDReady.
type UserIDReadyEvent struct {
	UserID  domain.UserID
	Context domain.NotificationContext
}
