// Package deck holds the ordered collection of candidate cards awaiting a
// decision. The deck never contains duplicate card identities, and a card
// popped here is gone for the session regardless of what the submission
// later returns.
package deck

import (
	"context"
	"sync"

	"github.com/sportlink/swipedeck/internal/domain/model"
	"github.com/sportlink/swipedeck/internal/domain/seen"
)

// Default deck configuration constants.
const (
	defaultLowWater = 3
)

// Deck is the ordered, duplicate-free card queue. The head card (index 0)
// is the only interactive one.
type Deck struct {
	mu       sync.RWMutex
	cards    []model.Card
	present  map[string]struct{}
	recorder seen.Recorder
	lowWater int
}

// Option applies a configuration option to the Deck.
type Option func(*Deck)

// WithLowWater sets the queue length at or below which a refill is wanted.
func WithLowWater(n int) Option {
	return func(d *Deck) {
		if n >= 0 {
			d.lowWater = n
		}
	}
}

// WithSeenRecorder sets the session-wide seen-card recorder consulted on
// every push.
func WithSeenRecorder(r seen.Recorder) Option {
	return func(d *Deck) {
		if r != nil {
			d.recorder = r
		}
	}
}

// New creates an empty deck with configuration options.
func New(opts ...Option) *Deck {
	d := &Deck{
		present:  make(map[string]struct{}),
		lowWater: defaultLowWater,
		recorder: seen.NewInMemoryRecorder(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Push appends fetched cards, skipping any identity already in the deck or
// already offered this session. Returns the number of cards actually added.
func (d *Deck) Push(ctx context.Context, cards ...model.Card) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	added := 0
	for _, c := range cards {
		if c.ID == "" {
			continue
		}
		if _, dup := d.present[c.ID]; dup {
			continue
		}
		if d.recorder.SeenAndRecord(ctx, c.ID) {
			continue
		}
		d.cards = append(d.cards, c)
		d.present[c.ID] = struct{}{}
		added++
	}
	return added
}

// Head returns the interactive top card without removing it.
func (d *Deck) Head(_ context.Context) (model.Card, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if len(d.cards) == 0 {
		return model.Card{}, false
	}
	return d.cards[0], true
}

// Pop removes and returns the head card. The removal is final for the
// session; submission failures do not restore it.
func (d *Deck) Pop(_ context.Context) (model.Card, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.cards) == 0 {
		return model.Card{}, false
	}
	head := d.cards[0]
	d.cards = d.cards[1:]
	delete(d.present, head.ID)
	return head, true
}

// Len returns the number of queued cards.
func (d *Deck) Len(_ context.Context) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.cards)
}

// NeedsRefill reports whether the deck has drained to the low-water mark.
func (d *Deck) NeedsRefill(_ context.Context) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.cards) <= d.lowWater
}

// Cards returns a copy of the queued cards in order, head first, for the
// rendering layer.
func (d *Deck) Cards(_ context.Context) []model.Card {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]model.Card, len(d.cards))
	copy(out, d.cards)
	return out
}

// Clear drops all queued cards. The seen window is kept, so cleared cards
// are not re-offered.
func (d *Deck) Clear(_ context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cards = nil
	d.present = make(map[string]struct{})
}
