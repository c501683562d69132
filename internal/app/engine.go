// Package engine provides the core discovery-and-matching engine that
// implements the dependencies required by the HTTP facade.
package engine

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/sportlink/swipedeck/internal/adapters/backend"
	decisionqueue "github.com/sportlink/swipedeck/internal/adapters/mq/queue"
	workerpool "github.com/sportlink/swipedeck/internal/adapters/mq/worker"
	"github.com/sportlink/swipedeck/internal/domain/deck"
	"github.com/sportlink/swipedeck/internal/domain/feature"
	"github.com/sportlink/swipedeck/internal/domain/gesture"
	"github.com/sportlink/swipedeck/internal/domain/model"
	"github.com/sportlink/swipedeck/internal/domain/quota"
	"github.com/sportlink/swipedeck/internal/domain/seen"
	"github.com/sportlink/swipedeck/internal/domain/sequencer"
	"github.com/sportlink/swipedeck/pkg/bus"
	"github.com/sportlink/swipedeck/pkg/logger"
	"github.com/sportlink/swipedeck/pkg/metrics"
)

// Default engine configuration constants.
const (
	defaultFetchLimit  = 10
	defaultQueueSize   = 256
	defaultWorkerCount = 4
	defaultSeenSize    = 2000

	// FilterAll disables explicit profile-type filtering; the backend
	// still applies its own visibility rules per viewer type.
	FilterAll = "all"
)

// Backend bundles the platform API surface the engine consumes.
type Backend interface {
	Discover(ctx context.Context, limit int, filter string) ([]model.Card, model.ProfileType, error)
	Swipe(ctx context.Context, cardID string, direction model.Direction) (model.SwipeOutcome, error)
	Stats(ctx context.Context) (quota.State, error)
	Contact(ctx context.Context, userID string) (model.ContactInfo, error)
	Matches(ctx context.Context) ([]model.Match, error)
}

// PaywallPrompt is the payload published on bus.TopicPaywallShow.
type PaywallPrompt struct {
	Feature feature.Key  `json:"feature"`
	Copy    feature.Copy `json:"copy"`
}

// InlineError is the payload published on bus.TopicInlineError. It renders
// as a dismissible banner with a retry action.
type InlineError struct {
	Kind            string `json:"kind"`
	Message         string `json:"message"`
	CheckConnection bool   `json:"check_connection"`
}

// DeckState is the render state served to the UI shell.
type DeckState struct {
	Cards      []model.Card        `json:"cards"`
	Gesture    gesture.Snapshot    `json:"gesture"`
	Transforms []gesture.Transform `json:"transforms"`
	Filter     string              `json:"filter"`
	ViewerType model.ProfileType   `json:"viewer_type,omitempty"`
	Empty      bool                `json:"empty"`
	ModalOpen  bool                `json:"modal_open"`
}

// Engine wires the deck, gesture controller, quota tracker, entitlement
// gate, submitter workers and match sequencer into one session engine.
type Engine struct {
	mu sync.RWMutex

	// Core components
	backend   Backend
	deck      *deck.Deck
	seen      seen.Recorder
	gesture   *gesture.Controller
	quota     *quota.Tracker
	gate      feature.Gate
	queue     decisionqueue.Queue
	pool      *workerpool.Pool
	sequencer *sequencer.Sequencer
	bus       *bus.Bus

	// Configuration
	fetchLimit      int
	queueSize       int
	workerCount     int
	seenSize        int
	lowWater        int
	commitThreshold float64
	bannerDuration  time.Duration
	modalDelay      time.Duration

	// State
	filter        string
	viewerType    model.ProfileType
	refillGate    atomic.Bool
	started       bool
	stopObservers func()

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithBackend sets the platform API client. Required.
func WithBackend(b Backend) Option {
	return func(e *Engine) {
		e.backend = b
	}
}

// WithBus sets a shared event bus instead of a private one.
func WithBus(b *bus.Bus) Option {
	return func(e *Engine) {
		if b != nil {
			e.bus = b
		}
	}
}

// WithFeatureGate overrides the entitlement gate.
func WithFeatureGate(g feature.Gate) Option {
	return func(e *Engine) {
		if g != nil {
			e.gate = g
		}
	}
}

// WithFetchLimit sets how many cards each discover call requests.
func WithFetchLimit(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.fetchLimit = n
		}
	}
}

// WithLowWater sets the deck size at or below which a refill fires.
func WithLowWater(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.lowWater = n
		}
	}
}

// WithQueueSize sets the maximum size of the decision queue.
func WithQueueSize(size int) Option {
	return func(e *Engine) {
		if size > 0 {
			e.queueSize = size
		}
	}
}

// WithWorkerCount sets the number of submitter workers.
func WithWorkerCount(count int) Option {
	return func(e *Engine) {
		if count > 0 {
			e.workerCount = count
		}
	}
}

// WithSeenSize sets the size of the seen-card cache.
func WithSeenSize(size int) Option {
	return func(e *Engine) {
		if size > 0 {
			e.seenSize = size
		}
	}
}

// WithCommitThreshold sets the horizontal displacement that commits a swipe.
func WithCommitThreshold(px float64) Option {
	return func(e *Engine) {
		if px > 0 {
			e.commitThreshold = px
		}
	}
}

// WithBannerDuration sets how long a match banner stays up.
func WithBannerDuration(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.bannerDuration = d
		}
	}
}

// WithModalDelay sets the deferral between a match outcome and its modal.
func WithModalDelay(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.modalDelay = d
		}
	}
}

// WithLogger sets a custom logger for the engine.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// New constructs a new Engine with default configuration.
func New(opts ...Option) *Engine {
	e := &Engine{
		fetchLimit:  defaultFetchLimit,
		queueSize:   defaultQueueSize,
		workerCount: defaultWorkerCount,
		seenSize:    defaultSeenSize,
		filter:      FilterAll,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Start initializes and starts the engine components.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.started {
		return nil
	}
	if e.backend == nil {
		return ErrNoBackend
	}

	if e.logger == nil {
		e.logger = logger.Get().Named("engine")
	}

	e.logger.Info(ctx, "starting discovery engine...")

	e.seen = seen.NewInMemoryRecorder(
		seen.WithMaxSize(e.seenSize),
	)

	deckOpts := []deck.Option{deck.WithSeenRecorder(e.seen)}
	if e.lowWater > 0 {
		deckOpts = append(deckOpts, deck.WithLowWater(e.lowWater))
	}
	e.deck = deck.New(deckOpts...)

	var gestureOpts []gesture.Option
	if e.commitThreshold > 0 {
		gestureOpts = append(gestureOpts, gesture.WithCommitThreshold(e.commitThreshold))
	}
	e.gesture = gesture.NewController(gestureOpts...)

	e.quota = quota.NewTracker()

	if e.gate == nil {
		e.gate = feature.NewPolicyGate()
	}
	if e.bus == nil {
		e.bus = bus.New()
	}

	seqOpts := []sequencer.Option{sequencer.WithLogger(e.logger.Named("sequencer"))}
	if e.bannerDuration > 0 {
		seqOpts = append(seqOpts, sequencer.WithBannerDuration(e.bannerDuration))
	}
	if e.modalDelay > 0 {
		seqOpts = append(seqOpts, sequencer.WithModalDelay(e.modalDelay))
	}
	e.sequencer = sequencer.New(e.bus, seqOpts...)

	e.queue = decisionqueue.NewInMemoryQueue(
		decisionqueue.WithCapacity(e.queueSize),
		decisionqueue.WithBufferSize(e.queueSize),
	)

	e.pool = workerpool.NewPool(e.workerCount, e.queue, e.backend, e)
	e.pool.Start(ctx)

	e.stopObservers = e.observePresentation()

	e.started = true
	e.logger.Info(ctx, "discovery engine started",
		logger.Int("workers", e.workerCount),
		logger.Int("queueSize", e.queueSize),
		logger.Int("fetchLimit", e.fetchLimit),
	)

	return nil
}

// Prime fetches the initial quota snapshot and the first page of cards.
// Failures are reported on the bus, not returned: the session starts in
// the empty state and the user can reload.
func (e *Engine) Prime(ctx context.Context) {
	if err := e.RefreshQuota(ctx); err != nil {
		e.logger.Warn(ctx, "initial quota fetch failed", logger.Error(err))
	}
	e.refill(ctx)
}

// Stop gracefully shuts down the engine.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.started {
		return
	}

	ctx := context.Background()
	e.logger.Info(ctx, "stopping discovery engine...")

	if e.stopObservers != nil {
		e.stopObservers()
	}
	e.sequencer.Stop()

	if e.pool != nil {
		_ = e.pool.Shutdown(ctx)
	}

	e.started = false
	e.logger.Info(ctx, "discovery engine stopped")
}

// observePresentation subscribes to banner and modal topics for metrics.
func (e *Engine) observePresentation() func() {
	bannerCh, cancelBanner := e.bus.Subscribe(bus.TopicBannerShow)
	modalCh, cancelModal := e.bus.Subscribe(bus.TopicModalShow)

	go func() {
		for range bannerCh {
			metrics.RecordBannerShown()
		}
	}()
	go func() {
		for range modalCh {
			metrics.RecordModalShown()
		}
	}()

	return func() {
		cancelBanner()
		cancelModal()
	}
}

// PointerDown starts a drag on the head card. Ignored when the deck is
// empty.
func (e *Engine) PointerDown(ctx context.Context, x float64) gesture.Snapshot {
	if _, ok := e.deck.Head(ctx); ok {
		e.gesture.PointerDown(x)
	}
	return e.gesture.Snapshot()
}

// PointerMove updates the drag displacement.
func (e *Engine) PointerMove(_ context.Context, x float64) gesture.Snapshot {
	e.gesture.PointerMove(x)
	return e.gesture.Snapshot()
}

// PointerUp releases the drag. Past the commit threshold this pops the
// head card and enqueues its decision; below it the card snaps back and
// nothing else changes.
func (e *Engine) PointerUp(ctx context.Context) gesture.Snapshot {
	dir, committed := e.gesture.PointerUp()
	if !committed {
		metrics.RecordGestureReturn()
		snap := e.gesture.Snapshot()
		e.gesture.Reset()
		return snap
	}

	snap := e.gesture.Snapshot()
	e.commitHead(ctx, dir)
	return snap
}

// SwipeHead commits a decision on the head card programmatically,
// bypassing drag. Used by the accept/reject buttons.
func (e *Engine) SwipeHead(ctx context.Context, dir model.Direction) bool {
	if dir != model.DirectionLike && dir != model.DirectionDislike {
		return false
	}
	if _, ok := e.deck.Head(ctx); !ok {
		return false
	}
	if !e.gesture.ForceCommit(dir) {
		return false
	}
	e.commitHead(ctx, dir)
	return true
}

// commitHead pops the head card optimistically and enqueues its decision.
// The card is never restored, whatever happens downstream.
func (e *Engine) commitHead(ctx context.Context, dir model.Direction) {
	defer e.gesture.Reset()

	card, ok := e.deck.Pop(ctx)
	if !ok {
		return
	}

	metrics.RecordGestureCommit(string(dir))
	metrics.UpdateDeckSize(e.deck.Len(ctx))

	d := model.SwipeDecision{
		DecisionID: uuid.NewString(),
		CardID:     card.ID,
		Direction:  dir,
		CommitTS:   time.Now(),
	}

	if !e.queue.Enqueue(ctx, d) {
		e.logger.Warn(ctx, "decision queue rejected swipe",
			logger.String("cardID", card.ID),
		)
		e.publishInlineError(ctx, "server_error", "Couldn't submit your swipe. Please try again.", false)
	}

	e.maybeRefill(ctx)

	if e.deck.Len(ctx) == 0 {
		e.bus.Publish(ctx, bus.TopicDeckEmpty, nil)
	}
}

// maybeRefill triggers an asynchronous refill when the deck is at or
// below the low-water mark. A refill already in flight suppresses the
// trigger.
func (e *Engine) maybeRefill(ctx context.Context) {
	if !e.deck.NeedsRefill(ctx) {
		return
	}
	if !e.refillGate.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer e.refillGate.Store(false)
		e.refill(context.WithoutCancel(ctx))
	}()
}

// Refresh clears the deck and reloads it. This is the manual reload
// action offered by the empty state.
func (e *Engine) Refresh(ctx context.Context) {
	e.deck.Clear(ctx)
	e.gesture.Reset()
	e.refill(ctx)
}

// refill fetches a page of cards and pushes them into the deck.
func (e *Engine) refill(ctx context.Context) {
	e.mu.RLock()
	filter := e.filter
	e.mu.RUnlock()

	cards, viewer, err := e.backend.Discover(ctx, e.fetchLimit, filter)
	if err != nil {
		e.handleDiscoverError(ctx, err)
		return
	}

	e.mu.Lock()
	e.viewerType = viewer
	e.mu.Unlock()

	added := e.deck.Push(ctx, cards...)
	if dup := len(cards) - added; dup > 0 {
		for i := 0; i < dup; i++ {
			metrics.RecordCardDuplicate()
		}
	}

	metrics.RecordDeckRefill()
	metrics.UpdateDeckSize(e.deck.Len(ctx))

	e.logger.Debug(ctx, "deck refilled",
		logger.Int("fetched", len(cards)),
		logger.Int("added", added),
		logger.String("filter", filter),
	)

	if e.deck.Len(ctx) == 0 {
		e.bus.Publish(ctx, bus.TopicDeckEmpty, nil)
	}
}

// handleDiscoverError routes a failed discover fetch. A missing result
// set is the neutral empty state; an entitlement denial resets the
// filter and prompts the paywall, then retries unfiltered.
func (e *Engine) handleDiscoverError(ctx context.Context, err error) {
	switch {
	case errors.Is(err, backend.ErrNotFound):
		e.bus.Publish(ctx, bus.TopicDeckEmpty, nil)

	case errors.Is(err, backend.ErrFeatureDenied) && backend.RequiresSubscription(err):
		e.mu.Lock()
		hadFilter := e.filter != FilterAll
		e.filter = FilterAll
		e.mu.Unlock()

		e.publishPaywall(ctx, feature.ProfileFilters)
		if hadFilter {
			e.refill(ctx)
		}

	default:
		metrics.RecordDeckRefillError()
		msg := backend.MessageOf(err)
		if msg == "" {
			msg = "Couldn't load more profiles. Please try again."
		}
		e.publishInlineError(ctx, "network_error", msg, errors.Is(err, backend.ErrNetwork))
		e.logger.Error(ctx, "deck refill failed", logger.Error(err))
	}
}

// SetFilter applies an explicit discovery filter. Filtering is a premium
// capability: a denied request silently resets to FilterAll, prompts the
// paywall and proceeds unfiltered.
func (e *Engine) SetFilter(ctx context.Context, f string) string {
	if !validFilter(f) {
		f = FilterAll
	}

	if f != FilterAll {
		decision := e.gate.Check(ctx, feature.ProfileFilters, e.quota.Premium())
		if !decision.Allowed {
			e.mu.Lock()
			e.filter = FilterAll
			e.mu.Unlock()

			e.publishPaywall(ctx, feature.ProfileFilters)
			e.Refresh(ctx)
			return FilterAll
		}
	}

	e.mu.Lock()
	e.filter = f
	e.mu.Unlock()

	e.Refresh(ctx)
	return f
}

// Filter returns the filter currently applied to discovery.
func (e *Engine) Filter() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.filter
}

func validFilter(f string) bool {
	switch f {
	case FilterAll,
		string(model.ProfileAthlete),
		string(model.ProfileAgent),
		string(model.ProfileTeam):
		return true
	}
	return false
}

// RefreshQuota replaces the local quota state with the backend snapshot.
func (e *Engine) RefreshQuota(ctx context.Context) error {
	st, err := e.backend.Stats(ctx)
	if err != nil {
		return err
	}
	e.quota.Reset(ctx, st)
	metrics.UpdateQuotaRemaining(st.Remaining)
	return nil
}

// Quota returns the current local quota snapshot.
func (e *Engine) Quota(ctx context.Context) quota.State {
	return e.quota.Snapshot(ctx)
}

// RevealContact returns the direct contact details for a matched user.
// The local entitlement check runs first; the backend may still answer
// with its own denial, which routes to the paywall identically.
func (e *Engine) RevealContact(ctx context.Context, userID string) (model.ContactInfo, error) {
	decision := e.gate.Check(ctx, feature.DirectContact, e.quota.Premium())
	if !decision.Allowed {
		e.publishPaywall(ctx, feature.DirectContact)
		return model.ContactInfo{}, &backend.Error{
			Kind:                 backend.ErrFeatureDenied,
			RequiresSubscription: true,
		}
	}

	ci, err := e.backend.Contact(ctx, userID)
	if err != nil {
		if backend.RequiresSubscription(err) {
			e.publishPaywall(ctx, feature.DirectContact)
			return model.ContactInfo{}, err
		}
		msg := backend.MessageOf(err)
		if msg == "" {
			msg = "Couldn't load contact details. Please try again."
		}
		e.publishInlineError(ctx, "server_error", msg, errors.Is(err, backend.ErrNetwork))
		return model.ContactInfo{}, err
	}

	return ci, nil
}

// Matches lists the established matches for the session account.
func (e *Engine) Matches(ctx context.Context) ([]model.Match, error) {
	return e.backend.Matches(ctx)
}

// DismissModal closes the current match modal and releases the next
// queued match presentation, if any.
func (e *Engine) DismissModal(ctx context.Context) bool {
	return e.sequencer.DismissModal(ctx)
}

// DeckState assembles the render state for the UI shell.
func (e *Engine) DeckState(ctx context.Context) DeckState {
	cards := e.deck.Cards(ctx)

	transforms := make([]gesture.Transform, len(cards))
	for i := range cards {
		transforms[i] = gesture.StackTransform(i)
	}

	e.mu.RLock()
	filter := e.filter
	viewer := e.viewerType
	e.mu.RUnlock()

	return DeckState{
		Cards:      cards,
		Gesture:    e.gesture.Snapshot(),
		Transforms: transforms,
		Filter:     filter,
		ViewerType: viewer,
		Empty:      len(cards) == 0,
		ModalOpen:  e.sequencer.ModalOpen(),
	}
}

// Bus exposes the engine's event bus for subscribers.
func (e *Engine) Bus() *bus.Bus {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.bus
}

// GetStats returns engine statistics for monitoring.
func (e *Engine) GetStats() map[string]interface{} {
	e.mu.RLock()
	defer e.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":     e.started,
		"workerCount": e.workerCount,
		"queueSize":   e.queueSize,
		"filter":      e.filter,
	}

	if e.started {
		stats["deckLength"] = e.deck.Len(ctx)
		stats["queueLength"] = e.queue.Len(ctx)
		stats["seenCards"] = e.seen.Size()
		stats["pendingMatches"] = e.sequencer.PendingCount()
		stats["modalOpen"] = e.sequencer.ModalOpen()

		q := e.quota.Snapshot(ctx)
		stats["isPremium"] = q.Premium
		stats["swipesRemaining"] = q.Remaining

		metrics.UpdateDeckSize(e.deck.Len(ctx))
		metrics.UpdateQueueSize(e.queue.Len(ctx))
	}

	return stats
}

// OnOutcome implements worker.Sink for backend-accepted submissions.
// The quota tracker is decremented here and nowhere else.
func (e *Engine) OnOutcome(ctx context.Context, d workerpool.Decision, out model.SwipeOutcome) {
	if !e.quota.Premium() {
		st := e.quota.Consume(ctx)
		metrics.UpdateQuotaRemaining(st.Remaining)
	}

	if out.Matched {
		e.logger.Info(ctx, "match established",
			logger.String("cardID", out.CardID),
		)
		e.sequencer.OnMatch(ctx, out)
	}
}

// OnFailure implements worker.Sink for failed submissions. Entitlement
// denials route to the paywall; everything else renders inline. The
// popped card is not restored in either case.
func (e *Engine) OnFailure(ctx context.Context, d workerpool.Decision, err error) {
	switch {
	case errors.Is(err, backend.ErrQuotaExceeded) && backend.RequiresSubscription(err):
		metrics.RecordQuotaDenial()
		e.publishPaywall(ctx, feature.UnlimitedSwipes)

	case backend.RequiresSubscription(err):
		e.publishPaywall(ctx, feature.UnlimitedSwipes)

	default:
		msg := backend.MessageOf(err)
		if msg == "" {
			msg = "Your swipe didn't go through. Please try again."
		}
		e.publishInlineError(ctx, "swipe_failed", msg, errors.Is(err, backend.ErrNetwork))
	}
}

// publishPaywall emits a paywall prompt for the denied feature.
func (e *Engine) publishPaywall(ctx context.Context, key feature.Key) {
	metrics.RecordPaywallView(string(key))
	e.bus.Publish(ctx, bus.TopicPaywallShow, PaywallPrompt{
		Feature: key,
		Copy:    feature.CopyFor(key),
	})
}

// publishInlineError emits a dismissible inline error banner.
func (e *Engine) publishInlineError(ctx context.Context, kind, message string, network bool) {
	e.bus.Publish(ctx, bus.TopicInlineError, InlineError{
		Kind:            kind,
		Message:         message,
		CheckConnection: network,
	})
}
