// Package dispatch drains per-symbol queues across a pool of dispatcher
// goroutines into a bounded ring, consumed by a single publisher goroutine.
package dispatch

import (
	"sync/atomic"

	"code.hybscloud.com/iox"
	"code.hybscloud.com/lfq"

	"github.com/equixmd/pitch-ingest/pitch"
)

// DefaultRingCapacity is the ring size used when NewRing is given 0. It must be
// a power of two; lfq rounds up if it is not.
const DefaultRingCapacity = 4096

// Ring is the disruptor-style hand-off between the dispatcher pool (many
// producers, one per goroutine) and the single publisher goroutine. It is
// backed by a bounded lock-free MPSC queue: every dispatcher claims a slot
// by enqueuing, and the publisher is the queue's sole consumer, which is
// exactly the access pattern an MPSC queue is built for.
type Ring struct {
	q       lfq.Queue[pitch.Record]
	drained atomic.Bool
}

// NewRing creates a Ring with the given capacity (rounded up to a power of
// two by the underlying queue). A capacity of 0 uses DefaultRingCapacity.
func NewRing(capacity int) *Ring {
	if capacity <= 0 {
		capacity = DefaultRingCapacity
	}
	return &Ring{q: lfq.NewMPSC[pitch.Record](capacity)}
}

// Claim publishes rec onto the ring, busy-spinning until a slot frees up.
// Called by dispatcher goroutines; safe for concurrent use.
func (r *Ring) Claim(rec pitch.Record) {
	backoff := iox.Backoff{}
	for {
		if err := r.q.Enqueue(&rec); err == nil {
			return
		}
		backoff.Wait()
	}
}

// Next busy-spins for the next published record. Called only by the single
// consumer goroutine. ok is false once Drain has been called and the ring
// has nothing left in it.
func (r *Ring) Next() (rec pitch.Record, ok bool) {
	backoff := iox.Backoff{}
	for {
		v, err := r.q.Dequeue()
		if err == nil {
			return *v, true
		}
		if r.drained.Load() {
			return pitch.Record{}, false
		}
		backoff.Wait()
	}
}

// Drain signals that no further Claim calls will occur, letting the single
// consumer fully drain the ring without the queue's livelock-prevention
// threshold blocking it forever. It is a hint, not a barrier: the caller
// must ensure producers have already stopped before the consumer observes
// Next returning ok=false.
func (r *Ring) Drain() {
	if d, ok := r.q.(lfq.Drainer); ok {
		d.Drain()
	}
	r.drained.Store(true)
}
