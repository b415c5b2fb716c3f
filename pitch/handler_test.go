package pitch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsHandler_CountsEveryMessageType(t *testing.T) {
	stats := &StatsHandler{}
	table := NewSymbolTable(16)
	d := NewDecoder(table, stats, nil, nil)

	datagram := buildFrame(1, 1,
		buildAddOrder(1, 'B', 10, "AAPL", 1500000000),
		buildOrderExecuted(1, 5, 1),
		buildModifyOrder(1, 5, 1500000000, 'B'),
		buildDeleteOrder(1),
	)

	_, err := d.Decode(datagram)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Stats.AddOrders)
	assert.Equal(t, 1, stats.Stats.OrderExecuted)
	assert.Equal(t, 1, stats.Stats.ModifyOrder)
	assert.Equal(t, 1, stats.Stats.DeleteOrder)
	assert.Equal(t, 4, stats.Stats.TotalMessages)
}

func TestDefaultHandler_IsANoOp(t *testing.T) {
	h := &DefaultHandler{}
	assert.NoError(t, h.OnAddOrder(AddOrderMessage{}))
	assert.NoError(t, h.OnUnknownMessage(0xFF, nil))
}
