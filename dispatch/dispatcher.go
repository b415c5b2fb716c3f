package dispatch

import (
	"runtime"
	"sync"
	"sync/atomic"

	"code.hybscloud.com/lfq"

	"github.com/equixmd/pitch-ingest/pitch"
	"github.com/equixmd/pitch-ingest/router"
)

// queueSource is the subset of router.Router the dispatcher pool depends
// on, so tests can substitute a fake without a real lock-free router.
type queueSource interface {
	QueueCount() int
	QueueAt(index int) (lfq.Queue[pitch.Record], bool)
}

// Pool runs N dispatcher goroutines over a router's symbol queues.
// Dispatcher i owns queue index k whenever k mod N == i, so no two
// dispatchers ever drain the same queue and producers for a given symbol
// never contend with more than one consumer.
type Pool struct {
	n      int
	router queueSource
	ring   *Ring

	stopping atomic.Bool
	wg       sync.WaitGroup
}

// NewPool creates a dispatcher pool of n goroutines draining r into ring.
// An n below 1 is treated as 1.
func NewPool(n int, r *router.Router, ring *Ring) *Pool {
	if n < 1 {
		n = 1
	}
	return &Pool{n: n, router: r, ring: ring}
}

// Start launches the dispatcher goroutines.
func (p *Pool) Start() {
	p.wg.Add(p.n)
	for i := 0; i < p.n; i++ {
		go p.run(i)
	}
}

// Stop requests every dispatcher goroutine to exit after its current drain
// pass and waits for them to do so. Any records still sitting in per-symbol
// queues at that point are dropped, per the pool's cooperative-shutdown
// contract.
func (p *Pool) Stop() {
	p.stopping.Store(true)
	p.wg.Wait()
}

func (p *Pool) run(id int) {
	defer p.wg.Done()
	for !p.stopping.Load() {
		p.drainPass(id)
		runtime.Gosched()
	}
	// One final pass catches anything enqueued between the last check and
	// the stop flag being observed.
	p.drainPass(id)
}

func (p *Pool) drainPass(id int) {
	count := p.router.QueueCount()
	for k := id; k < count; k += p.n {
		q, ok := p.router.QueueAt(k)
		if !ok {
			continue
		}
		for {
			rec, err := q.Dequeue()
			if err != nil {
				break
			}
			p.ring.Claim(*rec)
		}
	}
}
