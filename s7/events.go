package s7

import (
	"context"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/plctalk/go-s7/logger"
)

// EventKind identifies a client notification.
type EventKind uint8

// Client notification kinds.
const (
	// EventConnected fires after the session reaches the connected state.
	EventConnected EventKind = iota
	// EventDisconnected fires after the session leaves the connected state.
	// Event.Manual distinguishes a caller-initiated disconnect from one detected
	// by the liveness check.
	EventDisconnected
	// EventConnectError fires when a connection handshake fails.
	EventConnectError
	// EventValueObserved fires for every variable successfully read or written.
	EventValueObserved
)

// String returns the string representation of the event kind.
func (k EventKind) String() string {
	switch k {
	case EventConnected:
		return "connected"
	case EventDisconnected:
		return "disconnected"
	case EventConnectError:
		return "connect-error"
	case EventValueObserved:
		return "value-observed"
	default:
		return "unknown"
	}
}

// Event carries one client notification to subscribers.
type Event struct {
	// Kind identifies the notification.
	Kind EventKind
	// Manual is set on EventDisconnected when the disconnect was requested by
	// the caller rather than detected by the liveness check.
	Manual bool
	// Err carries the failure reason for EventConnectError.
	Err error
	// Variable carries the observed variable for EventValueObserved.
	Variable *Variable
}

// EventHandler is a function type invoked for every published event a
// subscriber receives.
type EventHandler func(Event)

// Hub fans client notifications out to subscribers.
//
// Publishing is fire-and-forget: events are queued on a bounded channel and
// dispatched from a dedicated goroutine, so a slow subscriber can never block
// the supervisor's timer loop. When the queue is full the event is dropped with
// a warning rather than blocking the publisher.
type Hub struct {
	ctx    context.Context
	logger logger.Logger
	nextID atomic.Uint64
	subs   *xsync.MapOf[uint64, EventHandler]
	queue  chan Event
}

// NewHub creates an event hub with the given queue size and starts its dispatch
// goroutine. The goroutine exits when ctx is done.
func NewHub(ctx context.Context, l logger.Logger, queueSize int) *Hub {
	if l == nil {
		l = logger.GetLogger()
	}
	if queueSize <= 0 {
		queueSize = 32
	}

	h := &Hub{
		ctx:    ctx,
		logger: l,
		subs:   xsync.NewMapOf[uint64, EventHandler](),
		queue:  make(chan Event, queueSize),
	}

	go h.dispatchTask()

	return h
}

// Subscribe registers a handler for all events and returns a subscription id
// for Unsubscribe.
func (h *Hub) Subscribe(handler EventHandler) uint64 {
	id := h.nextID.Add(1)
	h.subs.Store(id, handler)

	return id
}

// Unsubscribe removes the subscription with the given id. Unknown ids are
// ignored.
func (h *Hub) Unsubscribe(id uint64) {
	h.subs.Delete(id)
}

// Publish queues an event for dispatch. It never blocks: when the queue is full
// the event is dropped and a warning is logged.
func (h *Hub) Publish(ev Event) {
	select {
	case h.queue <- ev:
	default:
		h.logger.Warn("event queue full, dropping event", "kind", ev.Kind)
	}
}

// dispatchTask drains the queue and invokes every subscriber for each event.
func (h *Hub) dispatchTask() {
	defer h.logger.Debug("event dispatch task terminated")

	for {
		select {
		case <-h.ctx.Done():
			return
		case ev := <-h.queue:
			h.subs.Range(func(_ uint64, handler EventHandler) bool {
				h.callHandler(ev, handler)
				return true
			})
		}
	}
}

// callHandler invokes a subscriber with panic protection so one faulty handler
// cannot kill the dispatch goroutine.
func (h *Hub) callHandler(ev Event, handler EventHandler) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("panic in event handler", "kind", ev.Kind, "panic", r)
		}
	}()

	handler(ev)
}
