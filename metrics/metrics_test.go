package metrics

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func TestNew_RegistersAllCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	counters := New(reg)

	counters.RecordsDecoded.Inc()
	counters.SymbolTableMisses.Inc()
	counters.QueueDrops.Inc()
	counters.RecordsPublished.Inc()
	counters.DatagramsRejected.WithLabelValues("frame_short").Inc()
	counters.DatagramsRejected.WithLabelValues("frame_short").Inc()

	assert.Equal(t, 1.0, counterValue(t, counters.RecordsDecoded))
	assert.Equal(t, 1.0, counterValue(t, counters.SymbolTableMisses))
	assert.Equal(t, 1.0, counterValue(t, counters.QueueDrops))
	assert.Equal(t, 1.0, counterValue(t, counters.RecordsPublished))
	assert.Equal(t, 2.0, counterValue(t, counters.DatagramsRejected.WithLabelValues("frame_short")))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(families), 5)
}

func TestServe_EmptyAddrIsNoop(t *testing.T) {
	srv := Serve("", prometheus.NewRegistry())
	assert.NoError(t, srv.Shutdown(context.Background()))
}
