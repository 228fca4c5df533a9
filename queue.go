package vx

import (
	"context"
	"sync"
)

// Queue is a bounded, blocking multi-producer/multi-consumer event
// queue backed by a buffered channel — the simplest correct
// implementation of a bounded queue with a blocking Push and a
// blocking-or-context-aware Pop, and idiomatic Go besides
// (a channel already serializes both the buffering and the wakeups;
// no separate mutex is needed on the data path).
//
// As with any Go channel, Close must happen-after every Push/TryPush
// call a producer will ever make — Loop enforces this by closing the
// queue only once every producer goroutine has exited.
type Queue struct {
	ch        chan Event
	closeOnce sync.Once
}

// NewQueue returns a Queue with room for capacity pending events. A
// capacity of 0 or less falls back to config.DefaultQueueCapacity.
func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = 512
	}
	return &Queue{ch: make(chan Event, capacity)}
}

// Push enqueues ev, blocking if the queue is full. It returns
// ctx.Err() if ctx is cancelled first.
func (q *Queue) Push(ctx context.Context, ev Event) error {
	select {
	case q.ch <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TryPush enqueues ev without blocking, reporting ErrQueueOverflow if
// the queue is currently full — the path a reader thread takes when it
// would rather drop (or coalesce, e.g. repeated WinsizeEvents) than
// stall on a slow consumer.
func (q *Queue) TryPush(ev Event) error {
	select {
	case q.ch <- ev:
		return nil
	default:
		return ErrQueueOverflow
	}
}

// Pop blocks for the next event, or returns ctx.Err() if ctx is
// cancelled first, or ErrClosed once the queue is Closed and drained.
func (q *Queue) Pop(ctx context.Context) (Event, error) {
	select {
	case ev, ok := <-q.ch:
		if !ok {
			return nil, ErrClosed
		}
		return ev, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// TryPop returns the next event without blocking, or ok=false if the
// queue is currently empty.
func (q *Queue) TryPop() (ev Event, ok bool) {
	select {
	case ev, ok = <-q.ch:
		return ev, ok
	default:
		return nil, false
	}
}

// Len reports the number of events currently buffered.
func (q *Queue) Len() int { return len(q.ch) }

// Close marks the queue closed; any Pop blocked on an empty, closed
// queue returns ErrClosed instead of blocking forever. Safe to call
// more than once.
func (q *Queue) Close() {
	q.closeOnce.Do(func() { close(q.ch) })
}
