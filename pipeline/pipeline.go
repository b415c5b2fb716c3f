// Package pipeline wires the decoder, symbol table, router, dispatcher
// pool, ring, publisher, and UDP receivers into a single runnable unit
// behind one facade.
package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/equixmd/pitch-ingest/bus"
	"github.com/equixmd/pitch-ingest/config"
	"github.com/equixmd/pitch-ingest/dispatch"
	"github.com/equixmd/pitch-ingest/ingest"
	"github.com/equixmd/pitch-ingest/metrics"
	"github.com/equixmd/pitch-ingest/pitch"
	"github.com/equixmd/pitch-ingest/router"
)

// Pipeline owns every stage of the ingestion path and presents Start/Stop
// as its only lifecycle surface: a single entry point over a
// multi-component subsystem.
type Pipeline struct {
	cfg config.Config
	log *logrus.Logger
	bus bus.Bus

	receivers []*ingest.Receiver
	decoders  []*pitch.Decoder
	router    *router.Router
	ring      *dispatch.Ring
	pool      *dispatch.Pool
	publisher *dispatch.Publisher

	registry *prometheus.Registry
	counters *metrics.Counters

	cancel context.CancelFunc
	pubWG  sync.WaitGroup
}

// New constructs a Pipeline from cfg, publishing to b. log may be nil.
func New(cfg config.Config, b bus.Bus, log *logrus.Logger) *Pipeline {
	if log == nil {
		log = logrus.StandardLogger()
	}

	r := router.New(cfg.RouterQueueCapacity)
	ring := dispatch.NewRing(cfg.RingCapacity)
	registry := prometheus.NewRegistry()
	counters := metrics.New(registry)

	pub := dispatch.NewPublisher(ring, b, cfg.PartitionsPerTopic)
	pub.Counters = counters

	p := &Pipeline{
		cfg:       cfg,
		log:       log,
		bus:       b,
		router:    r,
		ring:      ring,
		pool:      dispatch.NewPool(cfg.DispatcherCount, r, ring),
		publisher: pub,
		registry:  registry,
		counters:  counters,
	}

	for _, rc := range cfg.UDPReceivers {
		p.receivers = append(p.receivers, ingest.New(ingest.Config{
			BindIP:           rc.BindIP,
			BindPort:         rc.BindPort,
			CPUAffinityCore:  rc.CPUAffinityCore,
			RealtimePriority: rc.RealtimePriority,
		}, log))
		// Each receiver gets its own Decoder/SymbolTable pair: the symbol
		// table is confined to a single goroutine, and each receiver's
		// read loop is exactly one goroutine.
		p.decoders = append(p.decoders, pitch.NewDecoder(pitch.NewSymbolTable(cfg.SymbolTableReserve), nil, log, counters))
	}

	return p
}

// Registry returns the Prometheus registry the pipeline's counters are
// registered against, for the caller to expose over HTTP.
func (p *Pipeline) Registry() *prometheus.Registry {
	return p.registry
}

// Start begins consuming from every configured UDP receiver and runs the
// dispatcher pool and publisher until Stop is called.
func (p *Pipeline) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	p.pool.Start()

	p.pubWG.Add(1)
	go func() {
		defer p.pubWG.Done()
		p.publisher.Run()
	}()

	for i, recv := range p.receivers {
		decoder := p.decoders[i]
		if err := recv.Start(ctx, p.handleDatagram(decoder)); err != nil {
			return err
		}
	}
	return nil
}

// handleDatagram returns the per-receiver callback that decodes a datagram
// and pushes every resulting record into the router. A datagram that fails
// to decode is discarded whole, including any records decoded before the
// error.
func (p *Pipeline) handleDatagram(decoder *pitch.Decoder) ingest.PacketCallback {
	return func(data []byte) {
		records, err := decoder.Decode(data)
		if err != nil {
			p.log.WithFields(logrus.Fields{"component": "pipeline", "err": err}).Error("datagram rejected")
			return
		}
		for _, rec := range records {
			if !p.router.Push(rec) {
				p.log.WithFields(logrus.Fields{"component": "pipeline", "symbol": rec.Symbol, "err": router.ErrQueueFull}).Warn("router queue full, record dropped")
				p.counters.QueueDrops.Inc()
			}
		}
	}
}

// Stop stops every receiver, lets the dispatcher pool drain, signals the
// ring to drain, waits for the publisher to exit, and flushes the bus.
func (p *Pipeline) Stop(flushTimeout time.Duration) error {
	if p.cancel != nil {
		p.cancel()
	}
	for _, recv := range p.receivers {
		recv.Stop()
	}

	p.pool.Stop()
	p.ring.Drain()
	p.pubWG.Wait()

	return p.bus.Flush(flushTimeout)
}
