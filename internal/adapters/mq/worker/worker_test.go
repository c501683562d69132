package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"
	queue "github.com/sportlink/swipedeck/internal/adapters/mq/queue"
	worker "github.com/sportlink/swipedeck/internal/adapters/mq/worker"
	model "github.com/sportlink/swipedeck/internal/domain/model"
	logging "github.com/sportlink/swipedeck/pkg/logger"
)

// Mock implementations for testing.
type mockQueue struct {
	decisionChan chan queue.Decision
	closeError   error
}

func newMockQueue() *mockQueue {
	return &mockQueue{
		decisionChan: make(chan queue.Decision, 10),
	}
}

func (mq *mockQueue) Dequeue(ctx context.Context) <-chan queue.Decision {
	return mq.decisionChan
}

func (mq *mockQueue) Close() error {
	close(mq.decisionChan)
	return mq.closeError
}

func (mq *mockQueue) addDecision(d queue.Decision) {
	mq.decisionChan <- d
}

type mockSubmitter struct {
	outcomes map[string]model.SwipeOutcome
	errors   map[string]error
	mu       sync.RWMutex
}

func newMockSubmitter() *mockSubmitter {
	return &mockSubmitter{
		outcomes: make(map[string]model.SwipeOutcome),
		errors:   make(map[string]error),
	}
}

func (ms *mockSubmitter) Swipe(ctx context.Context, cardID string, direction model.Direction) (model.SwipeOutcome, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	if err, exists := ms.errors[cardID]; exists {
		return model.SwipeOutcome{}, err
	}
	if out, exists := ms.outcomes[cardID]; exists {
		return out, nil
	}
	return model.SwipeOutcome{CardID: cardID}, nil
}

func (ms *mockSubmitter) setOutcome(cardID string, out model.SwipeOutcome) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.outcomes[cardID] = out
}

func (ms *mockSubmitter) setError(cardID string, err error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.errors[cardID] = err
}

type mockSink struct {
	mu       sync.RWMutex
	outcomes map[string]model.SwipeOutcome
	failures map[string]error
}

func newMockSink() *mockSink {
	return &mockSink{
		outcomes: make(map[string]model.SwipeOutcome),
		failures: make(map[string]error),
	}
}

func (s *mockSink) OnOutcome(ctx context.Context, d worker.Decision, out model.SwipeOutcome) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outcomes[d.CardID] = out
}

func (s *mockSink) OnFailure(ctx context.Context, d worker.Decision, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[d.CardID] = err
}

func (s *mockSink) getOutcome(cardID string) (model.SwipeOutcome, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out, exists := s.outcomes[cardID]
	return out, exists
}

func (s *mockSink) getFailure(cardID string) (error, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	err, exists := s.failures[cardID]
	return err, exists
}

func TestInMemoryWorker(t *testing.T) {
	convey.Convey("Given a new InMemoryWorker", t, func() {
		// Initialize logging for tests
		_ = logging.Init()

		q := newMockQueue()
		submitter := newMockSubmitter()
		sink := newMockSink()

		convey.Convey("When creating a worker with default options", func() {
			w := worker.NewInMemoryWorker(q, submitter, sink)

			convey.Convey("Then it should be created successfully", func() {
				convey.So(w, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When creating a worker with custom options", func() {
			w := worker.NewInMemoryWorker(
				q, submitter, sink,
				worker.WithName("test-worker"),
			)

			convey.Convey("Then it should be created successfully", func() {
				convey.So(w, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When running a worker", func() {
			w := worker.NewInMemoryWorker(q, submitter, sink)
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			go w.Run(ctx)

			time.Sleep(10 * time.Millisecond)

			convey.Convey("And when a submission succeeds with a match", func() {
				submitter.setOutcome("card-1", model.SwipeOutcome{
					CardID:  "card-1",
					Matched: true,
					Message: "it's a match",
				})

				q.addDecision(model.SwipeDecision{
					DecisionID: "d-1",
					CardID:     "card-1",
					Direction:  model.DirectionLike,
					CommitTS:   time.Now(),
				})

				time.Sleep(50 * time.Millisecond)

				convey.Convey("Then the sink should receive the outcome", func() {
					out, exists := sink.getOutcome("card-1")
					convey.So(exists, convey.ShouldBeTrue)
					convey.So(out.Matched, convey.ShouldBeTrue)
				})
			})

			convey.Convey("And when the backend rejects the submission", func() {
				submitter.setError("card-2", errors.New("quota exceeded"))

				q.addDecision(model.SwipeDecision{
					DecisionID: "d-2",
					CardID:     "card-2",
					Direction:  model.DirectionLike,
					CommitTS:   time.Now(),
				})

				time.Sleep(50 * time.Millisecond)

				convey.Convey("Then the sink should receive the failure", func() {
					err, exists := sink.getFailure("card-2")
					convey.So(exists, convey.ShouldBeTrue)
					convey.So(err, convey.ShouldNotBeNil)
				})

				convey.Convey("And no outcome should be recorded", func() {
					_, exists := sink.getOutcome("card-2")
					convey.So(exists, convey.ShouldBeFalse)
				})
			})
		})

		convey.Convey("When shutting down a worker", func() {
			w := worker.NewInMemoryWorker(q, submitter, sink)
			ctx := context.Background()

			go w.Run(ctx)
			time.Sleep(10 * time.Millisecond)

			shutdownCtx, cancel := context.WithTimeout(ctx, time.Second)
			defer cancel()

			err := w.Shutdown(shutdownCtx)

			convey.Convey("Then it should stop cleanly", func() {
				convey.So(err, convey.ShouldBeNil)
			})
		})
	})
}

func TestPool(t *testing.T) {
	convey.Convey("Given a worker pool", t, func() {
		// Initialize logging for tests
		_ = logging.Init()

		q := newMockQueue()
		submitter := newMockSubmitter()
		sink := newMockSink()

		convey.Convey("When creating a pool with an explicit worker count", func() {
			pool := worker.NewPool(3, q, submitter, sink)

			convey.Convey("Then it should be created successfully", func() {
				convey.So(pool, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When creating a pool with an invalid worker count", func() {
			pool := worker.NewPool(0, q, submitter, sink)

			convey.Convey("Then it should fall back to the default", func() {
				convey.So(pool, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When the pool processes decisions", func() {
			pool := worker.NewPool(2, q, submitter, sink)
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			pool.Start(ctx)
			time.Sleep(10 * time.Millisecond)

			for _, cardID := range []string{"card-a", "card-b", "card-c"} {
				q.addDecision(model.SwipeDecision{
					DecisionID: "d-" + cardID,
					CardID:     cardID,
					Direction:  model.DirectionDislike,
					CommitTS:   time.Now(),
				})
			}

			time.Sleep(100 * time.Millisecond)

			convey.Convey("Then every decision should reach the sink", func() {
				for _, cardID := range []string{"card-a", "card-b", "card-c"} {
					_, exists := sink.getOutcome(cardID)
					convey.So(exists, convey.ShouldBeTrue)
				}
			})

			convey.Convey("And shutdown should drain cleanly", func() {
				shutdownCtx, shutdownCancel := context.WithTimeout(ctx, time.Second)
				defer shutdownCancel()

				err := pool.Shutdown(shutdownCtx)
				convey.So(err, convey.ShouldBeNil)
			})
		})

		convey.Convey("When shutting down an idle pool", func() {
			pool := worker.NewPool(2, q, submitter, sink)
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			pool.Start(ctx)
			time.Sleep(10 * time.Millisecond)

			convey.Convey("Then shutdown should return promptly with no decisions processed", func() {
				shutdownCtx, shutdownCancel := context.WithTimeout(ctx, time.Second)
				defer shutdownCancel()

				start := time.Now()
				convey.So(pool.Shutdown(shutdownCtx), convey.ShouldBeNil)
				convey.So(time.Since(start), convey.ShouldBeLessThan, time.Second)
			})
		})
	})
}
