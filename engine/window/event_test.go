package window

import (
	"testing"

	"github.com/Carmen-Shannon/bismuth/common"
)

func TestNewIDUnique(t *testing.T) {
	seen := make(map[ID]bool)
	for i := 0; i < 100; i++ {
		id := NewID()
		if id == 0 {
			t.Fatal("NewID returned the zero ID")
		}
		if seen[id] {
			t.Fatalf("NewID returned %d twice", id)
		}
		seen[id] = true
	}
}

func TestEventQueueStampsWindowID(t *testing.T) {
	id := NewID()
	q := NewEventQueue(id)
	q.Push(Event{Type: EventTypeKeyPressed, Key: common.KeyW})
	q.Push(Event{Type: EventTypeResized, WindowID: id + 1, Width: 10, Height: 20})

	events := q.Drain()
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].WindowID != id {
		t.Errorf("expected window id %d, got %d", id, events[0].WindowID)
	}
	if events[1].WindowID != id+1 {
		t.Errorf("explicit window id was overwritten")
	}
	if q.Len() != 0 {
		t.Errorf("Drain did not clear the queue")
	}
}

func TestEventQueueOrder(t *testing.T) {
	q := NewEventQueue(NewID())
	want := []EventType{EventTypeKeyPressed, EventTypeResized, EventTypeKeyReleased, EventTypeCloseRequested}
	for _, typ := range want {
		q.Push(Event{Type: typ})
	}
	got := q.Drain()
	for i := range want {
		if got[i].Type != want[i] {
			t.Errorf("event %d: expected %v, got %v", i, want[i], got[i].Type)
		}
	}
}

func TestEventQueueCoalescesRedraws(t *testing.T) {
	q := NewEventQueue(NewID())
	q.RequestRedraw()
	q.RequestRedraw()
	q.Push(Event{Type: EventTypeRedrawRequested})
	if n := q.Len(); n != 1 {
		t.Fatalf("expected 1 pending redraw, got %d", n)
	}
	q.Drain()
	q.RequestRedraw()
	if n := q.Len(); n != 1 {
		t.Errorf("redraw after drain was dropped")
	}
}

func TestEventTypeString(t *testing.T) {
	tests := map[EventType]string{
		EventTypeResized:            "Resized",
		EventTypeScaleFactorChanged: "ScaleFactorChanged",
		EventTypeRedrawRequested:    "RedrawRequested",
		EventType(99):               "Unknown",
	}
	for typ, want := range tests {
		if got := typ.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", int(typ), got, want)
		}
	}
}
