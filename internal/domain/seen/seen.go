// Package seen tracks card identities already offered in this session so a
// candidate is never surfaced twice.
package seen

import (
	"context"
	"sync"
)

// Default capacity of the seen-card window.
const defaultMaxSize = 2000

// Recorder records offered card IDs for duplicate suppression.
type Recorder interface {
	// SeenAndRecord atomically checks whether id was offered before and
	// records it if not. Returns true if id was already seen.
	SeenAndRecord(ctx context.Context, id string) bool

	Size() int
}

// Option applies a configuration option to the in-memory recorder.
type Option func(*inMemoryRecorder)

// WithMaxSize bounds the window of remembered IDs. When full, the oldest
// entries are evicted first. A non-positive size means unbounded.
func WithMaxSize(n int) Option {
	return func(r *inMemoryRecorder) {
		r.maxSize = n
	}
}

// inMemoryRecorder keeps a FIFO window of offered IDs: a map for membership
// plus a ring of insertion order for eviction.
type inMemoryRecorder struct {
	mu      sync.Mutex
	members map[string]struct{}
	order   []string
	maxSize int
}

// NewInMemoryRecorder creates a recorder with configuration options.
func NewInMemoryRecorder(opts ...Option) Recorder {
	r := &inMemoryRecorder{
		members: make(map[string]struct{}),
		maxSize: defaultMaxSize,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *inMemoryRecorder) SeenAndRecord(_ context.Context, id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.members[id]; ok {
		return true
	}
	if r.maxSize > 0 && len(r.members) >= r.maxSize {
		r.evictOldest()
	}
	r.members[id] = struct{}{}
	r.order = append(r.order, id)
	return false
}

func (r *inMemoryRecorder) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.members)
}

// evictOldest drops the oldest recorded ID. Must be called with r.mu held.
func (r *inMemoryRecorder) evictOldest() {
	if len(r.order) == 0 {
		return
	}
	delete(r.members, r.order[0])
	r.order = r.order[1:]
}
