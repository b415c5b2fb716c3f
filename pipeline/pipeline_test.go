package pipeline

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/equixmd/pitch-ingest/bus"
	"github.com/equixmd/pitch-ingest/config"
)

func putUint16LE(b []byte, v uint16) { b[0] = byte(v); b[1] = byte(v >> 8) }
func putUint32LE(b []byte, v uint32) {
	b[0], b[1], b[2], b[3] = byte(v), byte(v>>8), byte(v>>16), byte(v>>24)
}
func putUint64LE(b []byte, v uint64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
}
func putSymbol(b []byte, sym string) {
	n := copy(b, sym)
	for ; n < len(b); n++ {
		b[n] = ' '
	}
}

func addOrderMsg(orderID uint64, side byte, qty uint32, symbol string, price uint64) []byte {
	data := make([]byte, 42)
	data[0], data[1] = 42, 0x37
	putUint64LE(data[6:14], orderID)
	data[14] = side
	putUint32LE(data[15:19], qty)
	putSymbol(data[19:25], symbol)
	putUint64LE(data[25:33], price)
	return data
}

func frame(unit byte, seq uint32, messages ...[]byte) []byte {
	total := 8
	for _, m := range messages {
		total += len(m)
	}
	data := make([]byte, total)
	putUint16LE(data[0:2], uint16(total))
	data[2] = byte(len(messages))
	data[3] = unit
	putUint32LE(data[4:8], seq)
	offset := 8
	for _, m := range messages {
		copy(data[offset:], m)
		offset += len(m)
	}
	return data
}

// S6: two receivers, each fed a different symbol's AddOrder, both end up
// published to their own bus topic through the shared router/ring/publisher.
func TestPipeline_TwoReceiversTwoSymbols(t *testing.T) {
	cfg := config.Default()
	cfg.UDPReceivers = []config.Receiver{
		{BindIP: "127.0.0.1", BindPort: 0, CPUAffinityCore: -1},
		{BindIP: "127.0.0.1", BindPort: 0, CPUAffinityCore: -1},
	}
	cfg.DispatcherCount = 2
	cfg.RingCapacity = 64
	cfg.RouterQueueCapacity = 64

	memBus := bus.NewMemoryBus()
	p := New(cfg, memBus, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, p.Start(ctx))
	defer p.Stop(time.Second)

	require.Len(t, p.receivers, 2)

	send := func(recv int, datagram []byte) {
		addr := p.receivers[recv].LocalAddr().(*net.UDPAddr)
		conn, err := net.DialUDP("udp", nil, addr)
		require.NoError(t, err)
		defer conn.Close()
		_, err = conn.Write(datagram)
		require.NoError(t, err)
	}

	send(0, frame(1, 1, addOrderMsg(1, 'B', 100, "AAPL", 1500000000)))
	send(1, frame(1, 1, addOrderMsg(2, 'S', 50, "GOOGL", 28005000000)))

	require.Eventually(t, func() bool {
		return len(memBus.Records("AAPL")) == 1 && len(memBus.Records("GOOGL")) == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestPipeline_DropsUnknownMessageButKeepsRunning(t *testing.T) {
	cfg := config.Default()
	cfg.UDPReceivers = []config.Receiver{{BindIP: "127.0.0.1", BindPort: 0, CPUAffinityCore: -1}}
	cfg.DispatcherCount = 1

	memBus := bus.NewMemoryBus()
	p := New(cfg, memBus, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, p.Start(ctx))
	defer p.Stop(time.Second)

	addr := p.receivers[0].LocalAddr().(*net.UDPAddr)
	conn, err := net.DialUDP("udp", nil, addr)
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write(frame(1, 1, []byte{4, 0xFF, 0, 0}))
	require.NoError(t, err)
	_, err = conn.Write(frame(1, 2, addOrderMsg(9, 'B', 1, "MSFT", 1000000)))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return len(memBus.Records("MSFT")) == 1
	}, 2*time.Second, 10*time.Millisecond)

	assert.Empty(t, memBus.Records("UNKNOWN"))
}
