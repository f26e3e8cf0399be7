// Package dedupe tracks submission ids so a retried submission is written
// at most once.
package dedupe

import (
	"container/list"
	"context"
	"sync"

	"github.com/google/uuid"
)

// DefaultMaxSize bounds the number of remembered submissions.
const DefaultMaxSize = 4096

// Deduper records submission ids.
type Deduper interface {
	// SeenAndRecord reports whether id was already recorded and records it
	// if not. The check and the record are atomic.
	SeenAndRecord(ctx context.Context, id uuid.UUID) bool

	// Unrecord forgets id so the same submission can be retried after a
	// failed evaluation or write.
	Unrecord(ctx context.Context, id uuid.UUID)

	Size() int64
}

// submissionDeduper keeps ids in insertion order and evicts the oldest once
// maxSize is reached. maxSize <= 0 disables eviction.
type submissionDeduper struct {
	mu      sync.Mutex
	seen    map[uuid.UUID]*list.Element
	order   *list.List
	maxSize int
}

// NewInMemoryDeduper creates a deduper. Without options it remembers the
// most recent DefaultMaxSize submissions.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &submissionDeduper{
		maxSize: DefaultMaxSize,
		seen:    make(map[uuid.UUID]*list.Element),
		order:   list.New(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *submissionDeduper) SeenAndRecord(_ context.Context, id uuid.UUID) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[id]; ok {
		return true
	}
	if d.maxSize > 0 && d.order.Len() >= d.maxSize {
		d.evictOldest()
	}
	d.seen[id] = d.order.PushBack(id)
	return false
}

func (d *submissionDeduper) Unrecord(_ context.Context, id uuid.UUID) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if el, ok := d.seen[id]; ok {
		d.order.Remove(el)
		delete(d.seen, id)
	}
}

// evictOldest must be called with d.mu held.
func (d *submissionDeduper) evictOldest() {
	front := d.order.Front()
	if front == nil {
		return
	}
	delete(d.seen, d.order.Remove(front).(uuid.UUID))
}

func (d *submissionDeduper) Size() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return int64(d.order.Len())
}
