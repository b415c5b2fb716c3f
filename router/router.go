// Package router fans decoded PITCH records out to one lock-free queue per
// symbol, establishing the partition domain dispatchers and the publisher
// ring preserve ordering within.
package router

import (
	"errors"
	"sync"
	"sync/atomic"

	"code.hybscloud.com/lfq"

	"github.com/equixmd/pitch-ingest/pitch"
)

// ErrQueueFull is reported (via the logged drop count, not a return path
// the caller must handle) when a symbol's queue cannot accept a record.
var ErrQueueFull = errors.New("router: symbol queue full, record dropped")

// DefaultQueueCapacity is the per-symbol queue capacity used when none is
// given to New. The underlying queue rounds this up to a power of two.
const DefaultQueueCapacity = 65536

// entry pairs a symbol with its queue, kept in first-seen order so
// dispatchers can index the known symbol set stably.
type entry struct {
	symbol string
	queue  lfq.Queue[pitch.Record]
}

// Router is a concurrent map from symbol to a bounded lock-free MPSC queue
// of records. At most one queue exists per symbol for the router's
// lifetime; queue creation on first push is atomic across producers.
type Router struct {
	capacity int

	mu      sync.Mutex
	byName  map[string]int // symbol -> index into ordered
	ordered []*entry

	// snapshot is an atomically published copy of ordered, so QueueAt and
	// QueueCount never take the mutex on the read path.
	snapshot atomic.Pointer[[]*entry]

	// bySymbol is an atomically published copy of byName/ordered keyed by
	// symbol, so lookup can resolve an already-installed queue with a single
	// atomic load and map read, never taking the mutex.
	bySymbol atomic.Pointer[map[string]*entry]

	dropped atomic.Uint64
}

// New creates a Router whose per-symbol queues have the given capacity. A
// capacity of 0 uses DefaultQueueCapacity.
func New(capacity int) *Router {
	if capacity <= 0 {
		capacity = DefaultQueueCapacity
	}
	r := &Router{capacity: capacity, byName: make(map[string]int)}
	empty := make([]*entry, 0)
	r.snapshot.Store(&empty)
	emptyBySymbol := make(map[string]*entry)
	r.bySymbol.Store(&emptyBySymbol)
	return r
}

// Push enqueues rec onto the queue for rec.Symbol, creating that queue on
// first use. It returns false if the symbol's queue is full, in which case
// the record is dropped and a drop counter is incremented.
func (r *Router) Push(rec pitch.Record) bool {
	q := r.queueFor(rec.Symbol)
	if err := q.Enqueue(&rec); err != nil {
		r.dropped.Add(1)
		return false
	}
	return true
}

// queueFor returns the queue for symbol, creating and installing one under
// the router's mutex on first observation. Double-checked against the
// lock-free snapshot first so the common case (queue already exists) never
// takes the mutex.
func (r *Router) queueFor(symbol string) lfq.Queue[pitch.Record] {
	if e := r.lookup(symbol); e != nil {
		return e.queue
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if idx, ok := r.byName[symbol]; ok {
		return r.ordered[idx].queue
	}

	e := &entry{symbol: symbol, queue: lfq.NewMPSC[pitch.Record](r.capacity)}
	r.byName[symbol] = len(r.ordered)
	r.ordered = append(r.ordered, e)

	next := make([]*entry, len(r.ordered))
	copy(next, r.ordered)
	r.snapshot.Store(&next)

	nextBySymbol := make(map[string]*entry, len(r.ordered))
	for _, e := range r.ordered {
		nextBySymbol[e.symbol] = e
	}
	r.bySymbol.Store(&nextBySymbol)

	return e.queue
}

// lookup resolves an already-installed symbol with a single atomic load and
// map read, taking no lock. A miss (symbol never installed) returns nil and
// is handled by queueFor falling back to the mutex-guarded install path.
func (r *Router) lookup(symbol string) *entry {
	m := *r.bySymbol.Load()
	return m[symbol]
}

// QueueCount returns the number of distinct symbols observed so far. It may
// grow between calls as new symbols arrive.
func (r *Router) QueueCount() int {
	return len(*r.snapshot.Load())
}

// QueueAt returns the queue at the given insertion-order index and whether
// that index is currently populated. A handle returned here remains valid
// for the life of the Router.
func (r *Router) QueueAt(index int) (lfq.Queue[pitch.Record], bool) {
	snap := *r.snapshot.Load()
	if index < 0 || index >= len(snap) {
		return nil, false
	}
	return snap[index].queue, true
}

// Dropped returns the number of records dropped due to a full per-symbol
// queue since the Router was created.
func (r *Router) Dropped() uint64 {
	return r.dropped.Load()
}
