// Package worker defines the submitter workers that drain committed
// decisions and send them to the backend.
//
// Results arrive out of order when several decisions are in flight;
// the Sink must be idempotent per card and must not assume FIFO
// completion.
package worker

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/sportlink/swipedeck/internal/domain/model"
	"github.com/sportlink/swipedeck/pkg/logger"
	"github.com/sportlink/swipedeck/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerCount  = 4
	poolShutdownTimeout = 30 * time.Second
)

// Decision abstracts what workers read off the queue.
type Decision = model.SwipeDecision

// Submitter sends one decision to the backend.
type Submitter interface {
	Swipe(ctx context.Context, cardID string, direction model.Direction) (model.SwipeOutcome, error)
}

// Sink receives the classified result of each submission.
type Sink interface {
	// OnOutcome is called for every backend-accepted submission.
	OnOutcome(ctx context.Context, d Decision, out model.SwipeOutcome)

	// OnFailure is called when a submission fails. The card is already
	// popped and is never restored.
	OnFailure(ctx context.Context, d Decision, err error)
}

// Queue defines how workers receive decisions.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Decision
}

// Worker processes decisions and routes results through the Sink.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown gracefully stops the worker.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker for processing decisions.
type InMemoryWorker struct {
	queue     Queue
	submitter Submitter
	sink      Sink
	name      string

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(queue Queue, submitter Submitter, sink Sink, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:     queue,
		submitter: submitter,
		sink:      sink,
		name:      "worker",
		shutdown:  make(chan struct{}),
		done:      make(chan struct{}),
		logger:    logger.Get().Named("worker"),
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}

	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer func() {
		close(w.done)
	}()

	decisionChan := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case d, ok := <-decisionChan:
			if !ok {
				return
			}

			if err := w.processDecision(ctx, d); err != nil {
				w.logger.Error(ctx, "error processing decision", logger.Error(err))
			}
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	close(w.shutdown)

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// processDecision submits a single decision and routes its result.
func (w *InMemoryWorker) processDecision(ctx context.Context, d Decision) error {
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	metrics.RecordSwipeSubmitted(string(d.Direction))

	submitStart := time.Now()
	out, err := w.submitter.Swipe(ctx, d.CardID, d.Direction)
	metrics.RecordSwipeSubmitLatency(float64(time.Since(submitStart).Milliseconds()))

	if err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "submit_error")
		w.sink.OnFailure(ctx, d, err)
		return fmt.Errorf("submit decision %s: %w", d.DecisionID, err)
	}

	if out.Matched {
		metrics.RecordSwipeOutcome("match")
		metrics.RecordMatch()
	} else {
		metrics.RecordSwipeOutcome("no_match")
	}

	w.sink.OnOutcome(ctx, d, out)

	return nil
}

// Pool manages multiple workers.
type Pool struct {
	workers   []*InMemoryWorker
	queue     Queue
	submitter Submitter
	sink      Sink

	logger logger.Logger
}

// NewPool creates a new worker pool.
func NewPool(workerCount int, queue Queue, submitter Submitter, sink Sink) *Pool {
	if workerCount < 1 {
		workerCount = defaultWorkerCount
	}

	pool := &Pool{
		workers:   make([]*InMemoryWorker, workerCount),
		queue:     queue,
		submitter: submitter,
		sink:      sink,
		logger:    logger.Get().Named("worker-pool"),
	}

	for i := 0; i < workerCount; i++ {
		pool.workers[i] = NewInMemoryWorker(
			queue,
			submitter,
			sink,
			WithName("worker-"+strconv.Itoa(i)),
		)
	}

	metrics.UpdateWorkerCount(workerCount)
	metrics.UpdateWorkerActiveCount(0)
	metrics.UpdateWorkerIdleCount(workerCount)

	return pool
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, worker := range p.workers {
		go worker.Run(ctx)
	}

	metrics.UpdateWorkerActiveCount(len(p.workers))
	metrics.UpdateWorkerIdleCount(0)
}

// Shutdown gracefully shuts down the entire worker pool.
func (p *Pool) Shutdown(ctx context.Context) error {
	// Close the queue first so no new decisions are accepted.
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, worker := range p.workers {
		if err := worker.Shutdown(shutdownCtx); err != nil {
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}

	metrics.UpdateWorkerActiveCount(0)
	metrics.UpdateWorkerIdleCount(0)

	return nil
}
