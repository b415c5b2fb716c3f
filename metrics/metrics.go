// Package metrics exposes the pipeline's Prometheus counters and an
// optional HTTP endpoint for scraping them, the health/metrics surface the
// ambient stack requires alongside structured logging.
package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Counters groups every counter the pipeline increments on its hot paths.
// All of them are monotonic; rates are a scrape-time concern, not this
// package's.
type Counters struct {
	DatagramsRejected *prometheus.CounterVec
	RecordsDecoded    prometheus.Counter
	SymbolTableMisses prometheus.Counter
	QueueDrops        prometheus.Counter
	RecordsPublished  prometheus.Counter
}

// New registers and returns the pipeline's counters against reg. Passing
// prometheus.NewRegistry() keeps metrics isolated per test; passing
// prometheus.DefaultRegisterer wires them into the process-wide endpoint.
func New(reg prometheus.Registerer) *Counters {
	factory := promauto.With(reg)
	return &Counters{
		DatagramsRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pitch_ingest_datagrams_rejected_total",
			Help: "Datagrams rejected at the frame level, by error reason.",
		}, []string{"reason"}),
		RecordsDecoded: factory.NewCounter(prometheus.CounterOpts{
			Name: "pitch_ingest_records_decoded_total",
			Help: "Messages successfully decoded into records.",
		}),
		SymbolTableMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "pitch_ingest_symbol_table_misses_total",
			Help: "Order-id lookups against the symbol table that found nothing resident.",
		}),
		QueueDrops: factory.NewCounter(prometheus.CounterOpts{
			Name: "pitch_ingest_queue_drops_total",
			Help: "Records dropped because a per-symbol router queue was full.",
		}),
		RecordsPublished: factory.NewCounter(prometheus.CounterOpts{
			Name: "pitch_ingest_records_published_total",
			Help: "Records handed off to the bus by the publisher.",
		}),
	}
}

// Server serves /metrics and /healthz on addr until Shutdown is called. An
// empty addr disables the server entirely.
type Server struct {
	httpServer *http.Server
}

// Serve starts listening on addr in the background. It returns immediately;
// call Shutdown to stop it. An empty addr is a no-op, returning a Server
// whose Shutdown is also a no-op.
func Serve(addr string, reg *prometheus.Registry) *Server {
	if addr == "" {
		return &Server{}
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		_ = srv.ListenAndServe()
	}()
	return &Server{httpServer: srv}
}

// Shutdown stops the server, if one is running.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
