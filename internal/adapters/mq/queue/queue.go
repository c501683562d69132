// Package queue defines the contract for enqueuing and consuming
// committed swipe decisions.
//
// The head card is popped before its decision is enqueued, so no two
// decisions can target the same card; several different cards'
// decisions may sit here at once with no ordering guarantee between
// their completions.
package queue

import (
	"context"
	"sync"
	"time"

	"github.com/sportlink/swipedeck/internal/domain/model"
	"github.com/sportlink/swipedeck/pkg/metrics"
)

// Default queue configuration constants.
const (
	defaultQueueCapacity = 256
	defaultBufferSize    = 256
)

// Decision is the payload type flowing through the queue.
type Decision = model.SwipeDecision

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a decision to the queue.
	// Returns false if the queue is full and the decision was not enqueued.
	Enqueue(ctx context.Context, d Decision) bool

	// Dequeue returns a channel that will receive decisions as they
	// become available. The channel is closed when the queue is closed.
	Dequeue(ctx context.Context) <-chan Decision

	// Len returns the current number of queued decisions.
	Len(ctx context.Context) int

	// Close gracefully shuts down the queue. After closing, no new
	// decisions can be enqueued and the dequeue channel is closed.
	Close() error

	// IsClosed returns true if the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	decisions  chan Decision
	capacity   int
	bufferSize int

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity:   defaultQueueCapacity,
		bufferSize: defaultBufferSize,
	}

	for _, opt := range opts {
		opt(q)
	}

	q.decisions = make(chan Decision, q.bufferSize)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	metrics.UpdateQueueUtilization(0.0)

	return q
}

// Enqueue adds a decision to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, d Decision) bool {
	start := time.Now()
	defer func() {
		metrics.RecordQueueProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "closed")
		return false
	}

	if len(q.decisions) >= q.capacity {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "capacity_exceeded")
		return false
	}

	select {
	case q.decisions <- d:
		metrics.RecordQueueEnqueue()
		size := len(q.decisions)
		metrics.UpdateQueueSize(size)
		metrics.UpdateQueueUtilization(float64(size) / float64(q.capacity))
		return true
	case <-ctx.Done():
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "context_cancelled")
		return false
	default:
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "queue_full")
		return false
	}
}

// Dequeue returns a channel that will receive decisions as they become
// available.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Decision {
	out := make(chan Decision)
	go func() {
		defer close(out)
		for d := range q.decisions {
			select {
			case out <- d:
				metrics.RecordQueueDequeue()
				size := len(q.decisions)
				metrics.UpdateQueueSize(size)
				metrics.UpdateQueueUtilization(float64(size) / float64(q.capacity))
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Len returns the current number of queued decisions.
func (q *InMemoryQueue) Len(_ context.Context) int {
	size := len(q.decisions)
	metrics.UpdateQueueSize(size)
	metrics.UpdateQueueUtilization(float64(size) / float64(q.capacity))
	return size
}

// Close gracefully shuts down the queue.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}

	close(q.decisions)
	q.closed = true

	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
