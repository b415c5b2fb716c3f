package pitch

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func leUint16(b []byte, v uint16) { b[0] = byte(v); b[1] = byte(v >> 8) }
func leUint32(b []byte, v uint32) {
	b[0], b[1], b[2], b[3] = byte(v), byte(v>>8), byte(v>>16), byte(v>>24)
}
func leUint64(b []byte, v uint64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
}

func buildAddOrder(orderID uint64, side byte, qty uint32, symbol string, price uint64) []byte {
	data := make([]byte, fixedSize[TypeAddOrder])
	data[0], data[1] = byte(len(data)), TypeAddOrder
	leUint64(data[6:14], orderID)
	data[14] = side
	leUint32(data[15:19], qty)
	putSymbol(data[19:25], symbol)
	leUint64(data[25:33], price)
	return data
}

func buildOrderExecuted(orderID uint64, qty uint32, execID uint64) []byte {
	data := make([]byte, fixedSize[TypeOrderExecuted])
	data[0], data[1] = byte(len(data)), TypeOrderExecuted
	leUint64(data[6:14], orderID)
	leUint32(data[14:18], qty)
	leUint64(data[18:26], execID)
	return data
}

func buildOrderExecutedAtPrice(orderID uint64, qty uint32, execID uint64, execPrice uint64) []byte {
	data := make([]byte, fixedSize[TypeOrderExecutedAtPrice])
	data[0], data[1] = byte(len(data)), TypeOrderExecutedAtPrice
	leUint64(data[6:14], orderID)
	leUint32(data[14:18], qty)
	leUint64(data[18:26], execID)
	leUint64(data[34:42], execPrice)
	return data
}

func buildModifyOrder(orderID uint64, qty uint32, price uint64, side byte) []byte {
	data := make([]byte, fixedSize[TypeModifyOrder])
	data[0], data[1] = byte(len(data)), TypeModifyOrder
	leUint64(data[6:14], orderID)
	leUint32(data[14:18], qty)
	leUint64(data[18:26], price)
	data[26] = side
	return data
}

func buildDeleteOrder(orderID uint64) []byte {
	data := make([]byte, fixedSize[TypeDeleteOrder])
	data[0], data[1] = byte(len(data)), TypeDeleteOrder
	leUint64(data[6:14], orderID)
	return data
}

func buildFrame(unit byte, seq uint32, messages ...[]byte) []byte {
	total := headerSize
	for _, m := range messages {
		total += len(m)
	}
	data := make([]byte, total)
	leUint16(data[0:2], uint16(total))
	data[2] = byte(len(messages))
	data[3] = unit
	leUint32(data[4:8], seq)
	offset := headerSize
	for _, m := range messages {
		copy(data[offset:], m)
		offset += len(m)
	}
	return data
}

func newTestDecoder() *Decoder {
	return NewDecoder(NewSymbolTable(16), nil, nil, nil)
}

// S1: a header claiming more bytes than the datagram actually holds.
func TestDecode_FrameLengthMismatch(t *testing.T) {
	data := []byte{0x10, 0x00, 0x01, 0x01, 0x00, 0x00, 0x00, 0x00}
	_, err := newTestDecoder().Decode(data)
	assert.ErrorIs(t, err, ErrFrameLengthMismatch)
}

func TestDecode_FrameShort(t *testing.T) {
	_, err := newTestDecoder().Decode([]byte{1, 2, 3})
	assert.ErrorIs(t, err, ErrFrameShort)
}

// S2: a single AddOrder resolves symbol+price in the symbol table.
func TestDecode_AddOrder(t *testing.T) {
	d := newTestDecoder()
	datagram := buildFrame(1, 1, buildAddOrder(0x12, 'B', 100, "AAPL", 1500000000))

	records, err := d.Decode(datagram)
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, byte(TypeAddOrder), rec.Type)
	assert.Equal(t, "AAPL", rec.Symbol)
	assert.Equal(t, uint64(0x12), rec.OrderID)
	assert.Len(t, rec.Payload, fixedSize[TypeAddOrder])

	symbol, price, ok := d.table.LookupSymbolPrice(0x12)
	require.True(t, ok)
	assert.Equal(t, "AAPL", symbol)
	assert.InDelta(t, 150.0, price, 1e-9)
}

// S3: add then execute carries the context suffix forward.
func TestDecode_AddThenExecute_CarriesContext(t *testing.T) {
	d := newTestDecoder()
	datagram := buildFrame(1, 1,
		buildAddOrder(0x12, 'B', 100, "AAPL", 1500000000),
		buildOrderExecuted(0x12, 30, 9),
	)

	records, err := d.Decode(datagram)
	require.NoError(t, err)
	require.Len(t, records, 2)

	exec := records[1]
	assert.Equal(t, "AAPL", exec.Symbol)
	require.Len(t, exec.Payload, fixedSize[TypeOrderExecuted]+ContextSize)

	symbol, price := decodeContext(exec.Payload[fixedSize[TypeOrderExecuted]:])
	assert.Equal(t, "AAPL", symbol)
	assert.InDelta(t, 150.0, price, 1e-9)
}

// S4: modify updates the resident price before a later execute-at-price.
func TestDecode_ModifyThenExecutedAtPrice(t *testing.T) {
	d := newTestDecoder()
	datagram := buildFrame(1, 1,
		buildAddOrder(0x20, 'B', 100, "AAPL", 1500000000),
		buildModifyOrder(0x20, 80, 1515000000, 'B'),
		buildOrderExecutedAtPrice(0x20, 80, 7, 1515000000),
	)

	records, err := d.Decode(datagram)
	require.NoError(t, err)
	require.Len(t, records, 3)

	_, price, ok := d.table.LookupSymbolPrice(0x20)
	require.True(t, ok)
	assert.InDelta(t, 151.5, price, 1e-9)

	execAtPrice := records[2]
	wantLen := fixedSize[TypeOrderExecutedAtPrice] + ContextSize + 8
	require.Len(t, execAtPrice.Payload, wantLen)

	symbol, ctxPrice := decodeContext(execAtPrice.Payload[fixedSize[TypeOrderExecutedAtPrice]:])
	assert.Equal(t, "AAPL", symbol)
	assert.InDelta(t, 151.5, ctxPrice, 1e-9)

	execPrice := math.Float64frombits(readUint64LE(execAtPrice.Payload[fixedSize[TypeOrderExecutedAtPrice]+ContextSize:]))
	assert.InDelta(t, 151.5, execPrice, 1e-9)
}

// S5: once an order is deleted, a later execute against it has no symbol.
func TestDecode_DeleteThenExecute_Unknown(t *testing.T) {
	d := newTestDecoder()
	datagram := buildFrame(1, 1,
		buildAddOrder(0x30, 'B', 100, "AAPL", 1500000000),
		buildDeleteOrder(0x30),
		buildOrderExecuted(0x30, 10, 3),
	)

	records, err := d.Decode(datagram)
	require.NoError(t, err)
	require.Len(t, records, 3)

	del := records[1]
	assert.Equal(t, "AAPL", del.Symbol, "delete record should still carry the symbol it belonged to")

	exec := records[2]
	assert.Equal(t, unknownSymbol, exec.Symbol)
	assert.Len(t, exec.Payload, fixedSize[TypeOrderExecuted], "no context suffix once non-resident")

	_, _, ok := d.table.LookupSymbolPrice(0x30)
	assert.False(t, ok)
}

func TestDecode_UnknownType(t *testing.T) {
	data := buildFrame(1, 1, []byte{4, 0xFF, 0, 0})
	_, err := newTestDecoder().Decode(data)
	assert.ErrorIs(t, err, ErrUnknownType)
}

func TestDecode_MessageShort(t *testing.T) {
	msg := buildAddOrder(1, 'B', 1, "AAPL", 100)
	// Declare a header length matching only part of the AddOrder message, so
	// the frame-length check passes but the per-message size check fails.
	short := msg[:len(msg)-5]
	data := make([]byte, headerSize+len(short))
	leUint16(data[0:2], uint16(len(data)))
	data[2] = 1
	data[3] = 1
	copy(data[headerSize:], short)

	_, err := newTestDecoder().Decode(data)
	assert.ErrorIs(t, err, ErrMessageShort)
}
