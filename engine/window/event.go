package window

import (
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/bismuth/common"
)

// ID identifies a window. Events carry the ID of the window that produced them.
type ID uint64

var nextID atomic.Uint64

// NewID returns a process-unique window ID. The zero ID is never returned.
func NewID() ID {
	return ID(nextID.Add(1))
}

// EventType tags the variant of an Event.
type EventType int

const (
	// EventTypeResized carries the new framebuffer size in Width and Height.
	EventTypeResized EventType = iota

	// EventTypeScaleFactorChanged carries the framebuffer size after a DPI change.
	EventTypeScaleFactorChanged

	// EventTypeCloseRequested is sent when the user asks to close the window.
	EventTypeCloseRequested

	// EventTypeKeyPressed carries the pressed key. Repeats are reported as presses.
	EventTypeKeyPressed

	// EventTypeKeyReleased carries the released key.
	EventTypeKeyReleased

	// EventTypeRedrawRequested asks the owner to draw a frame.
	EventTypeRedrawRequested
)

func (t EventType) String() string {
	switch t {
	case EventTypeResized:
		return "Resized"
	case EventTypeScaleFactorChanged:
		return "ScaleFactorChanged"
	case EventTypeCloseRequested:
		return "CloseRequested"
	case EventTypeKeyPressed:
		return "KeyPressed"
	case EventTypeKeyReleased:
		return "KeyReleased"
	case EventTypeRedrawRequested:
		return "RedrawRequested"
	}
	return "Unknown"
}

// Event is a window event. Only the fields of the variant named by Type are set.
type Event struct {
	Type     EventType
	WindowID ID

	// Width and Height are set for EventTypeResized and EventTypeScaleFactorChanged.
	Width, Height int

	// Key is set for EventTypeKeyPressed and EventTypeKeyReleased.
	Key common.Key
}

// EventQueue buffers events between platform callbacks and the owner's event loop. Redraw
// requests are coalesced so at most one is pending.
type EventQueue struct {
	mu      *sync.Mutex
	id      ID
	events  []Event
	pending bool
}

// NewEventQueue returns an empty queue stamping events with id.
func NewEventQueue(id ID) *EventQueue {
	return &EventQueue{mu: &sync.Mutex{}, id: id}
}

// Push appends e, setting its WindowID to the queue's window unless already set.
func (q *EventQueue) Push(e Event) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if e.WindowID == 0 {
		e.WindowID = q.id
	}
	if e.Type == EventTypeRedrawRequested {
		if q.pending {
			return
		}
		q.pending = true
	}
	q.events = append(q.events, e)
}

// RequestRedraw queues a redraw unless one is already pending.
func (q *EventQueue) RequestRedraw() {
	q.Push(Event{Type: EventTypeRedrawRequested})
}

// Drain returns and clears the queued events in arrival order.
func (q *EventQueue) Drain() []Event {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.events
	q.events = nil
	q.pending = false
	return out
}

// Len returns the number of queued events.
func (q *EventQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}
