// Package sequencer orders the match banner and the celebration modal so
// they never collide with each other or with the card-exit animation.
package sequencer

import (
	"context"
	"sync"
	"time"

	"github.com/sportlink/swipedeck/internal/domain/model"
	"github.com/sportlink/swipedeck/pkg/bus"
	"github.com/sportlink/swipedeck/pkg/logger"
)

// Default presentation timings.
const (
	defaultBannerDuration = 4 * time.Second
	defaultModalDelay     = time.Second
)

// Sequencer serializes match presentations. The banner shows immediately
// and auto-dismisses; the modal is deferred so the card-exit animation can
// finish, then stays open until the user dismisses it. A later match waits
// for the previous modal's dismissal.
type Sequencer struct {
	mu sync.Mutex

	bus        *bus.Bus
	bannerDur  time.Duration
	modalDelay time.Duration

	pending   []model.SwipeOutcome
	active    bool
	modalOpen bool
	stopped   bool

	// Timers of the presentation currently on screen. Replaced when the
	// next presentation starts.
	bannerTimer *time.Timer
	modalTimer  *time.Timer

	logger logger.Logger
}

// Option applies a configuration option to the Sequencer.
type Option func(*Sequencer)

// WithBannerDuration sets how long the banner stays up.
func WithBannerDuration(d time.Duration) Option {
	return func(s *Sequencer) {
		if d > 0 {
			s.bannerDur = d
		}
	}
}

// WithModalDelay sets the deferral between the match outcome and the modal.
func WithModalDelay(d time.Duration) Option {
	return func(s *Sequencer) {
		if d > 0 {
			s.modalDelay = d
		}
	}
}

// WithLogger sets a custom logger for the sequencer.
func WithLogger(l logger.Logger) Option {
	return func(s *Sequencer) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a sequencer publishing on b.
func New(b *bus.Bus, opts ...Option) *Sequencer {
	s := &Sequencer{
		bus:        b,
		bannerDur:  defaultBannerDuration,
		modalDelay: defaultModalDelay,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OnMatch queues a match outcome for presentation. If no presentation is in
// progress it starts immediately; otherwise it waits its turn.
func (s *Sequencer) OnMatch(ctx context.Context, outcome model.SwipeOutcome) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}
	if s.active {
		s.pending = append(s.pending, outcome)
		return
	}
	s.startLocked(ctx, outcome)
}

// DismissModal closes the open modal and, if matches are waiting, starts the
// next presentation. Returns false if no modal was open.
func (s *Sequencer) DismissModal(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.modalOpen {
		return false
	}
	s.modalOpen = false
	s.active = false

	if len(s.pending) > 0 && !s.stopped {
		next := s.pending[0]
		s.pending = s.pending[1:]
		s.startLocked(ctx, next)
	}
	return true
}

// ModalOpen reports whether a celebration modal is currently displayed.
func (s *Sequencer) ModalOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.modalOpen
}

// PendingCount returns the number of matches waiting for presentation.
func (s *Sequencer) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Stop cancels outstanding timers. Queued matches are dropped.
func (s *Sequencer) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopped = true
	s.stopTimersLocked()
	s.pending = nil
}

// startLocked begins one banner/modal presentation. Must be called with
// s.mu held.
func (s *Sequencer) startLocked(ctx context.Context, outcome model.SwipeOutcome) {
	s.active = true
	s.stopTimersLocked()
	s.bus.Publish(ctx, bus.TopicBannerShow, outcome)
	if s.logger != nil {
		s.logger.Debug(ctx, "match banner shown", logger.String("cardID", outcome.CardID))
	}

	s.bannerTimer = time.AfterFunc(s.bannerDur, func() {
		s.bus.Publish(context.Background(), bus.TopicBannerHide, outcome.CardID)
	})
	s.modalTimer = time.AfterFunc(s.modalDelay, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.stopped || !s.active {
			return
		}
		s.modalOpen = true
		s.bus.Publish(context.Background(), bus.TopicModalShow, outcome)
	})
}

// stopTimersLocked cancels the retained timer pair. A pending hide for the
// previous banner is superseded by the next show. Must be called with s.mu
// held.
func (s *Sequencer) stopTimersLocked() {
	if s.bannerTimer != nil {
		s.bannerTimer.Stop()
		s.bannerTimer = nil
	}
	if s.modalTimer != nil {
		s.modalTimer.Stop()
		s.modalTimer = nil
	}
}
