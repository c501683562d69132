// Package bus provides the in-process publish/subscribe channel the engine
// and its collaborators use for UI-facing notifications. Subscriptions are
// explicit and carry a cancel func so component unmount can release them.
package bus

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Default number of events buffered per subscriber.
const defaultBufferSize = 16

// Topic names a notification stream.
type Topic string

// Topics published by the engine.
const (
	TopicPaywallShow  Topic = "paywall.show"
	TopicBannerShow   Topic = "match.banner.show"
	TopicBannerHide   Topic = "match.banner.hide"
	TopicModalShow    Topic = "match.modal.show"
	TopicInlineError  Topic = "error.inline"
	TopicDeckEmpty    Topic = "deck.empty"
	TopicPhotoChanged Topic = "profile.photo_changed"
)

// Event is one published notification.
type Event struct {
	ID      string
	Topic   Topic
	TS      time.Time
	Payload any
}

// subscription is one subscriber channel on a topic.
type subscription struct {
	topic Topic
	ch    chan Event
}

// Bus fans published events out to topic subscribers. Publish never blocks:
// a subscriber that stops draining loses events rather than stalling the
// engine loop.
type Bus struct {
	mu     sync.RWMutex
	subs   map[Topic][]*subscription
	buffer int
	closed bool
}

// Option applies a configuration option to the Bus.
type Option func(*Bus)

// WithBufferSize sets the per-subscriber channel buffer.
func WithBufferSize(n int) Option {
	return func(b *Bus) {
		if n > 0 {
			b.buffer = n
		}
	}
}

// New creates a bus with configuration options.
func New(opts ...Option) *Bus {
	b := &Bus{
		subs:   make(map[Topic][]*subscription),
		buffer: defaultBufferSize,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe registers a listener on topic. The returned cancel func removes
// the subscription and closes the channel; callers tie it to their
// lifecycle so abandoned listeners do not leak.
func (b *Bus) Subscribe(topic Topic) (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub := &subscription{topic: topic, ch: make(chan Event, b.buffer)}
	if b.closed {
		close(sub.ch)
		return sub.ch, func() {}
	}
	b.subs[topic] = append(b.subs[topic], sub)

	var once sync.Once
	cancel := func() {
		once.Do(func() { b.unsubscribe(sub) })
	}
	return sub.ch, cancel
}

// Publish delivers payload to every subscriber of topic. Returns the number
// of subscribers that received the event.
func (b *Bus) Publish(_ context.Context, topic Topic, payload any) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return 0
	}
	ev := Event{
		ID:      uuid.NewString(),
		Topic:   topic,
		TS:      time.Now(),
		Payload: payload,
	}
	delivered := 0
	for _, sub := range b.subs[topic] {
		select {
		case sub.ch <- ev:
			delivered++
		default:
			// subscriber is not draining; drop rather than block
		}
	}
	return delivered
}

// Close shuts the bus down and closes all subscriber channels.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for _, subs := range b.subs {
		for _, sub := range subs {
			close(sub.ch)
		}
	}
	b.subs = make(map[Topic][]*subscription)
}

// SubscriberCount returns the number of active subscriptions on topic.
func (b *Bus) SubscriberCount(topic Topic) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[topic])
}

func (b *Bus) unsubscribe(target *subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	subs := b.subs[target.topic]
	for i, sub := range subs {
		if sub == target {
			b.subs[target.topic] = append(subs[:i], subs[i+1:]...)
			close(sub.ch)
			return
		}
	}
}
