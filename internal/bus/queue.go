package bus

import (
	"context"
	"errors"
	"sync"

	"main/internal/model"
)

var (
	ErrQueueFull   = errors.New("tick queue full")
	ErrQueueClosed = errors.New("tick queue closed")
)

// TickQueue is the bounded, non-blocking hand-off between tick
// ingestion and signal evaluation. The capacity is an explicit
// configuration choice; a full queue drops the trigger rather than
// applying backpressure to the stream reader.
type TickQueue struct {
	ch     chan model.Tick
	mu     sync.RWMutex
	closed bool
}

// NewTickQueue allocates a queue with the given capacity.
func NewTickQueue(capacity int) *TickQueue {
	if capacity <= 0 {
		capacity = 1
	}
	return &TickQueue{ch: make(chan model.Tick, capacity)}
}

// TryPublish enqueues a tick without blocking. Safe to call
// concurrently with Close.
func (q *TickQueue) TryPublish(tick model.Tick) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrQueueClosed
	}
	select {
	case q.ch <- tick:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close stops the queue from accepting new ticks.
func (q *TickQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.ch)
}

// Run consumes ticks until the context is done or the queue is closed.
// There is exactly one consumer, so evaluations for successive ticks
// never overlap.
func (q *TickQueue) Run(ctx context.Context, handler func(model.Tick)) {
	for {
		select {
		case <-ctx.Done():
			return
		case tick, ok := <-q.ch:
			if !ok {
				return
			}
			handler(tick)
		}
	}
}
