// Package events provides the FIFO event queue that orchestrates the trading
// engine. The queue is the only structure shared by the engine components and
// is accessed from a single logical thread of control: components enqueue
// while handling an event, and only the engine's inner loop dequeues.
package events

import "github.com/halcyonlab/halcyon/internal/types"

// Queue is a FIFO queue of engine events. It is not safe for concurrent use;
// the engine runs the whole pipeline on one goroutine per tick.
type Queue struct {
	items []types.Event
}

func NewQueue() *Queue {
	return &Queue{
		items: nil,
	}
}

// Push appends an event to the back of the queue.
func (q *Queue) Push(event types.Event) {
	q.items = append(q.items, event)
}

// Pop removes and returns the event at the front of the queue. The second
// return value is false when the queue is empty; an empty pop is the normal
// inner-loop exit signal, not an error.
func (q *Queue) Pop() (types.Event, bool) {
	if len(q.items) == 0 {
		return nil, false
	}

	event := q.items[0]
	q.items = q.items[1:]

	return event, true
}

// Len returns the number of queued events.
func (q *Queue) Len() int {
	return len(q.items)
}
