package engine

import (
	"fmt"
	"sync"
)

// EventKind distinguishes key position transitions.
type EventKind int

const (
	// EventPress is a key position going down.
	EventPress EventKind = iota + 1
	// EventRelease is a key position coming up.
	EventRelease
)

// String returns "press" or "release".
func (k EventKind) String() string {
	switch k {
	case EventPress:
		return "press"
	case EventRelease:
		return "release"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// ParseEventKind is the inverse of EventKind.String.
func ParseEventKind(s string) (EventKind, error) {
	switch s {
	case "press":
		return EventPress, nil
	case "release":
		return EventRelease, nil
	default:
		return 0, fmt.Errorf("unknown event kind %q", s)
	}
}

// Event is a press or release of a key position.
// Timestamp is opaque metadata passed through to behaviors.
type Event struct {
	Kind      EventKind
	Position  int
	Timestamp int64
}

// Press returns a press event for position.
func Press(position int) Event {
	return Event{Kind: EventPress, Position: position}
}

// Release returns a release event for position.
func Release(position int) Event {
	return Event{Kind: EventRelease, Position: position}
}

// eventQueue is a thread-safe FIFO queue for events.
//
// Thread-safety is provided for external enqueuing (the CLI reader
// goroutine) while the Engine's Run loop dequeues.
//
// The queue uses a channel for signaling to enable context-aware waiting
// in the Run loop.
type eventQueue struct {
	mu     sync.Mutex
	events []Event
	closed bool
	signal chan struct{} // Signals event availability (buffered, size 1)
}

// newEventQueue creates an empty event queue.
func newEventQueue() *eventQueue {
	return &eventQueue{
		events: make([]Event, 0, 64),
		signal: make(chan struct{}, 1),
	}
}

// Enqueue adds an event to the back of the queue.
// Returns false if the queue is closed.
func (q *eventQueue) Enqueue(e Event) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}

	q.events = append(q.events, e)

	// Non-blocking: the buffer of 1 coalesces multiple signals.
	select {
	case q.signal <- struct{}{}:
	default:
	}

	return true
}

// TryDequeue attempts to dequeue without blocking.
// Returns (Event{}, false) if queue is empty.
func (q *eventQueue) TryDequeue() (Event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.events) == 0 {
		return Event{}, false
	}

	e := q.events[0]
	if len(q.events) == 1 {
		q.events = q.events[:0]
	} else {
		q.events = q.events[1:]
	}

	return e, true
}

// Wait returns a channel that signals when events may be available.
// The channel is closed once the queue is closed.
func (q *eventQueue) Wait() <-chan struct{} {
	return q.signal
}

// Len returns the current queue length.
func (q *eventQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

// Close signals that no more events will be enqueued.
// Wakes any blocked waiters by closing the signal channel.
func (q *eventQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}

	q.closed = true
	close(q.signal)
}
