package dispatch

import (
	"github.com/cespare/xxhash/v2"

	"github.com/equixmd/pitch-ingest/bus"
	"github.com/equixmd/pitch-ingest/metrics"
	"github.com/equixmd/pitch-ingest/pitch"
)

// Publisher is the ring's single consumer. It routes every record to the
// bus by (topic=symbol, partition=hash(type) mod partitions).
type Publisher struct {
	ring       *Ring
	b          bus.Bus
	partitions int

	// partitionByType is precomputed once per construction since there are
	// only 256 possible type tags; this keeps the hot path allocation-free.
	partitionByType [256]int

	// Counters is optional; when set, every published record is counted.
	Counters *metrics.Counters
}

// NewPublisher creates a Publisher draining ring into b, partitioning each
// topic into the given number of partitions (minimum 1).
func NewPublisher(ring *Ring, b bus.Bus, partitions int) *Publisher {
	if partitions < 1 {
		partitions = 1
	}
	p := &Publisher{ring: ring, b: b, partitions: partitions}
	var key [1]byte
	for t := 0; t < 256; t++ {
		key[0] = byte(t)
		p.partitionByType[t] = int(xxhash.Sum64(key[:]) % uint64(partitions))
	}
	return p
}

// Run consumes the ring until Next reports it is drained and empty. It is
// meant to be run on its own goroutine; Run returns once the ring has been
// drained by a call to Ring.Drain and emptied.
func (p *Publisher) Run() {
	for {
		rec, ok := p.ring.Next()
		if !ok {
			return
		}
		p.publish(rec)
	}
}

// publish routes rec to the bus. Allocation-free beyond what the bus
// implementation itself requires for the write.
func (p *Publisher) publish(rec pitch.Record) {
	p.b.Publish(rec.Symbol, p.partitionByType[rec.Type], rec.Payload)
	if p.Counters != nil {
		p.Counters.RecordsPublished.Inc()
	}
}
