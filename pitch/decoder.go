package pitch

import (
	"math"

	"github.com/sirupsen/logrus"

	"github.com/equixmd/pitch-ingest/metrics"
)

// Decoder walks Sequenced Unit Header frames and produces decoded Records,
// threading order-id → symbol/price context through its SymbolTable. A
// Decoder is confined to a single goroutine: nothing about it is safe for
// concurrent use, matching the confinement the symbol table requires.
type Decoder struct {
	table    *SymbolTable
	handler  Handler
	log      *logrus.Logger
	counters *metrics.Counters
}

// NewDecoder creates a Decoder over table, optionally notifying handler of
// every decoded message by concrete type. handler, log, and counters may
// all be nil; counters simply goes unrecorded when nil.
func NewDecoder(table *SymbolTable, handler Handler, log *logrus.Logger, counters *metrics.Counters) *Decoder {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Decoder{table: table, handler: handler, log: log, counters: counters}
}

// Decode splits a single datagram into its Sequenced Unit Header and
// contained messages, returning one Record per successfully decoded
// message. Decoding stops at the first error, frame-level or per-message:
// the records decoded before it are returned together with that error, and
// the remaining messages of the datagram are not decoded.
func (d *Decoder) Decode(data []byte) ([]Record, error) {
	header, err := parseHeader(data)
	if err != nil {
		d.log.WithFields(logrus.Fields{"component": "pitch.decoder", "err": err, "datagram_bytes": len(data)}).Error("frame rejected")
		d.reject(err)
		return nil, err
	}

	records := make([]Record, 0, header.Count)
	offset := headerSize
	remaining := int(header.Length) - headerSize

	for i := 0; i < int(header.Count); i++ {
		if remaining <= 0 {
			break
		}
		if remaining < 2 {
			d.log.WithFields(logrus.Fields{"component": "pitch.decoder", "err": ErrMessageShort}).Error("message header truncated")
			d.reject(ErrMessageShort)
			return records, ErrMessageShort
		}
		wireLen := int(data[offset])
		msgType := data[offset+1]

		size, known := fixedSize[msgType]
		if !known {
			d.log.WithFields(logrus.Fields{"component": "pitch.decoder", "type": msgType}).Error("unknown message type")
			if d.handler != nil {
				_ = d.handler.OnUnknownMessage(msgType, data[offset:])
			}
			d.reject(ErrUnknownType)
			return records, ErrUnknownType
		}
		if size > remaining || wireLen != size {
			d.log.WithFields(logrus.Fields{"component": "pitch.decoder", "type": msgType, "declared": wireLen, "remaining": remaining}).Error("message shorter than declared size")
			d.reject(ErrMessageShort)
			return records, ErrMessageShort
		}

		msg := data[offset : offset+size]
		rec, decErr := d.decodeMessage(msgType, msg)
		if decErr != nil {
			d.reject(decErr)
			return records, decErr
		}
		records = append(records, rec)
		if d.counters != nil {
			d.counters.RecordsDecoded.Inc()
		}

		offset += size
		remaining -= size
	}

	if offset != int(header.Length) {
		d.log.WithFields(logrus.Fields{"component": "pitch.decoder", "offset": offset, "declared_length": header.Length}).Error("frame length mismatch")
		d.reject(ErrFrameLengthMismatch)
		return records, ErrFrameLengthMismatch
	}
	return records, nil
}

// reject increments the rejected-datagrams counter, labeled by err's
// message, when counters are wired in.
func (d *Decoder) reject(err error) {
	if d.counters == nil {
		return
	}
	d.counters.DatagramsRejected.WithLabelValues(err.Error()).Inc()
}

func (d *Decoder) decodeMessage(msgType byte, data []byte) (Record, error) {
	switch msgType {
	case TypeAddOrder:
		return d.decodeAddOrder(data)
	case TypeOrderExecuted:
		return d.decodeOrderExecuted(data)
	case TypeOrderExecutedAtPrice:
		return d.decodeOrderExecutedAtPrice(data)
	case TypeReduceSize:
		return d.decodeReduceSize(data)
	case TypeModifyOrder:
		return d.decodeModifyOrder(data)
	case TypeDeleteOrder:
		return d.decodeDeleteOrder(data)
	case TypeTrade:
		return d.decodeTrade(data)
	case TypeTradeBreak:
		return d.decodeTradeBreak(data)
	case TypeTradingStatus:
		return d.decodeTradingStatus(data)
	case TypeUnitClear:
		return d.decodeUnitClear(data)
	case TypeEndOfSession:
		return d.decodeEndOfSession(data)
	case TypeAuctionUpdate:
		return d.decodeAuctionUpdate(data)
	case TypeAuctionSummary:
		return d.decodeAuctionSummary(data)
	case TypeCalculatedValue:
		return d.decodeCalculatedValue(data)
	default:
		return Record{}, ErrUnknownType
	}
}

// symbolMiss logs a symbol-table miss and notes it is non-fatal: the
// resulting record carries unknownSymbol and no context suffix.
func (d *Decoder) symbolMiss(orderID uint64, msgType byte) {
	d.log.WithFields(logrus.Fields{
		"component": "pitch.decoder",
		"order_id":  orderID,
		"type":      msgType,
		"err":       ErrSymbolTableMiss,
	}).Warn("symbol table miss")
	if d.counters != nil {
		d.counters.SymbolTableMisses.Inc()
	}
}

func (d *Decoder) decodeAddOrder(data []byte) (Record, error) {
	const off = 2 // past length + type bytes
	msg := AddOrderMessage{
		Timestamp: readUint32LE(data[off : off+4]),
		OrderID:   readUint64LE(data[off+4 : off+12]),
		Side:      data[off+12],
		Quantity:  readUint32LE(data[off+13 : off+17]),
		Price:     readUint64LE(data[off+23 : off+31]),
	}
	copy(msg.Symbol[:], data[off+17:off+23])
	copy(msg.Participant[:], data[off+31:off+35])

	symbol := symbolFromBytes(msg.Symbol[:])
	price := decodePrice(msg.Price)
	if !d.table.Insert(msg.OrderID, symbol, price) {
		d.log.WithFields(logrus.Fields{"component": "pitch.decoder", "order_id": msg.OrderID}).Warn("duplicate add-order")
	}

	if d.handler != nil {
		if err := d.handler.OnAddOrder(msg); err != nil {
			return Record{}, err
		}
	}
	return Record{Type: TypeAddOrder, OrderID: msg.OrderID, Symbol: symbol, Payload: append([]byte(nil), data...)}, nil
}

func (d *Decoder) decodeOrderExecuted(data []byte) (Record, error) {
	const off = 2
	msg := OrderExecutedMessage{
		Timestamp:       readUint32LE(data[off : off+4]),
		OrderID:         readUint64LE(data[off+4 : off+12]),
		ExecutedQty:     readUint32LE(data[off+12 : off+16]),
		ExecutionID:     readUint64LE(data[off+16 : off+24]),
		ContraOrderID:   readUint64LE(data[off+24 : off+32]),
		ContraPartition: data[off+32],
	}

	if d.handler != nil {
		if err := d.handler.OnOrderExecuted(msg); err != nil {
			return Record{}, err
		}
	}
	return d.recordWithContext(TypeOrderExecuted, msg.OrderID, data)
}

func (d *Decoder) decodeOrderExecutedAtPrice(data []byte) (Record, error) {
	const off = 2
	msg := OrderExecutedAtPriceMessage{
		Timestamp:      readUint32LE(data[off : off+4]),
		OrderID:        readUint64LE(data[off+4 : off+12]),
		ExecutedQty:    readUint32LE(data[off+12 : off+16]),
		ExecutionID:    readUint64LE(data[off+16 : off+24]),
		ContraOrderID:  readUint64LE(data[off+24 : off+32]),
		ExecutionPrice: readUint64LE(data[off+32 : off+40]),
	}

	if d.handler != nil {
		if err := d.handler.OnOrderExecutedAtPrice(msg); err != nil {
			return Record{}, err
		}
	}

	ctx, ok := d.table.Lookup(msg.OrderID)
	if !ok {
		d.symbolMiss(msg.OrderID, TypeOrderExecutedAtPrice)
		return Record{Type: TypeOrderExecutedAtPrice, OrderID: msg.OrderID, Symbol: unknownSymbol, Payload: append([]byte(nil), data...)}, nil
	}
	symbol, _ := decodeContext(ctx[:])
	payload := make([]byte, len(data)+ContextSize+8)
	copy(payload, data)
	copy(payload[len(data):], ctx[:])
	writeUint64LE(payload[len(data)+ContextSize:], math.Float64bits(decodePrice(msg.ExecutionPrice)))
	return Record{Type: TypeOrderExecutedAtPrice, OrderID: msg.OrderID, Symbol: symbol, Payload: payload}, nil
}

func (d *Decoder) decodeReduceSize(data []byte) (Record, error) {
	const off = 2
	msg := ReduceSizeMessage{
		Timestamp:   readUint32LE(data[off : off+4]),
		OrderID:     readUint64LE(data[off+4 : off+12]),
		CanceledQty: readUint32LE(data[off+12 : off+16]),
	}

	if d.handler != nil {
		if err := d.handler.OnReduceSize(msg); err != nil {
			return Record{}, err
		}
	}
	return d.recordWithContext(TypeReduceSize, msg.OrderID, data)
}

func (d *Decoder) decodeModifyOrder(data []byte) (Record, error) {
	const off = 2
	msg := ModifyOrderMessage{
		Timestamp: readUint32LE(data[off : off+4]),
		OrderID:   readUint64LE(data[off+4 : off+12]),
		Quantity:  readUint32LE(data[off+12 : off+16]),
		Price:     readUint64LE(data[off+16 : off+24]),
		Side:      data[off+24],
	}

	if !d.table.UpdatePrice(msg.OrderID, decodePrice(msg.Price)) {
		d.symbolMiss(msg.OrderID, TypeModifyOrder)
	}

	if d.handler != nil {
		if err := d.handler.OnModifyOrder(msg); err != nil {
			return Record{}, err
		}
	}
	return d.recordWithContext(TypeModifyOrder, msg.OrderID, data)
}

func (d *Decoder) decodeDeleteOrder(data []byte) (Record, error) {
	const off = 2
	msg := DeleteOrderMessage{
		Timestamp: readUint32LE(data[off : off+4]),
		OrderID:   readUint64LE(data[off+4 : off+12]),
	}

	// Resolve context before erasing: the delete record itself should still
	// carry the symbol the order belonged to.
	rec, err := d.recordWithContext(TypeDeleteOrder, msg.OrderID, data)
	if err != nil {
		return Record{}, err
	}

	if !d.table.Erase(msg.OrderID) {
		d.symbolMiss(msg.OrderID, TypeDeleteOrder)
	}

	if d.handler != nil {
		if err := d.handler.OnDeleteOrder(msg); err != nil {
			return Record{}, err
		}
	}
	return rec, nil
}

func (d *Decoder) decodeTrade(data []byte) (Record, error) {
	const off = 2
	msg := TradeMessage{
		Timestamp: readUint32LE(data[off : off+4]),
		OrderID:   readUint64LE(data[off+4 : off+12]),
		Side:      data[off+12],
		Quantity:  readUint32LE(data[off+13 : off+17]),
		Price:     readUint64LE(data[off+23 : off+31]),
	}
	copy(msg.Symbol[:], data[off+17:off+23])
	msg.ExecutionID = readUint64LE(data[off+31 : off+39])

	if d.handler != nil {
		if err := d.handler.OnTrade(msg); err != nil {
			return Record{}, err
		}
	}
	symbol := symbolFromBytes(msg.Symbol[:])
	return Record{Type: TypeTrade, OrderID: msg.OrderID, Symbol: symbol, Payload: append([]byte(nil), data...)}, nil
}

func (d *Decoder) decodeTradeBreak(data []byte) (Record, error) {
	const off = 2
	msg := TradeBreakMessage{
		Timestamp:   readUint32LE(data[off : off+4]),
		ExecutionID: readUint64LE(data[off+4 : off+12]),
	}

	if d.handler != nil {
		if err := d.handler.OnTradeBreak(msg); err != nil {
			return Record{}, err
		}
	}
	return Record{Type: TypeTradeBreak, Symbol: unknownSymbol, Payload: append([]byte(nil), data...)}, nil
}

func (d *Decoder) decodeTradingStatus(data []byte) (Record, error) {
	const off = 2
	msg := TradingStatusMessage{
		Timestamp: readUint32LE(data[off : off+4]),
		Status:    data[off+10],
	}
	copy(msg.Symbol[:], data[off+4:off+10])

	if d.handler != nil {
		if err := d.handler.OnTradingStatus(msg); err != nil {
			return Record{}, err
		}
	}
	symbol := symbolFromBytes(msg.Symbol[:])
	return Record{Type: TypeTradingStatus, Symbol: symbol, Payload: append([]byte(nil), data...)}, nil
}

func (d *Decoder) decodeUnitClear(data []byte) (Record, error) {
	msg := UnitClearMessage{Timestamp: readUint32LE(data[2:6])}
	if d.handler != nil {
		if err := d.handler.OnUnitClear(msg); err != nil {
			return Record{}, err
		}
	}
	return Record{Type: TypeUnitClear, Symbol: unknownSymbol, Payload: append([]byte(nil), data...)}, nil
}

func (d *Decoder) decodeEndOfSession(data []byte) (Record, error) {
	msg := EndOfSessionMessage{Timestamp: readUint32LE(data[2:6])}
	if d.handler != nil {
		if err := d.handler.OnEndOfSession(msg); err != nil {
			return Record{}, err
		}
	}
	return Record{Type: TypeEndOfSession, Symbol: unknownSymbol, Payload: append([]byte(nil), data...)}, nil
}

func (d *Decoder) decodeAuctionUpdate(data []byte) (Record, error) {
	const off = 2
	msg := AuctionUpdateMessage{
		Timestamp:      readUint32LE(data[off : off+4]),
		AuctionType:    data[off+10],
		ReferencePrice: readUint64LE(data[off+11 : off+19]),
		IndicativeQty:  readUint32LE(data[off+19 : off+23]),
		AuctionOnly:    readUint32LE(data[off+23 : off+27]),
	}
	copy(msg.Symbol[:], data[off+4:off+10])

	if d.handler != nil {
		if err := d.handler.OnAuctionUpdate(msg); err != nil {
			return Record{}, err
		}
	}
	symbol := symbolFromBytes(msg.Symbol[:])
	return Record{Type: TypeAuctionUpdate, Symbol: symbol, Payload: append([]byte(nil), data...)}, nil
}

func (d *Decoder) decodeAuctionSummary(data []byte) (Record, error) {
	const off = 2
	msg := AuctionSummaryMessage{
		Timestamp:   readUint32LE(data[off : off+4]),
		AuctionType: data[off+10],
		Price:       readUint64LE(data[off+11 : off+19]),
		Quantity:    readUint32LE(data[off+19 : off+23]),
	}
	copy(msg.Symbol[:], data[off+4:off+10])

	if d.handler != nil {
		if err := d.handler.OnAuctionSummary(msg); err != nil {
			return Record{}, err
		}
	}
	symbol := symbolFromBytes(msg.Symbol[:])
	return Record{Type: TypeAuctionSummary, Symbol: symbol, Payload: append([]byte(nil), data...)}, nil
}

func (d *Decoder) decodeCalculatedValue(data []byte) (Record, error) {
	const off = 2
	msg := CalculatedValueMessage{
		Timestamp: readUint32LE(data[off : off+4]),
		ValueType: data[off+10],
		Value:     readUint64LE(data[off+11 : off+19]),
	}
	copy(msg.Symbol[:], data[off+4:off+10])

	if d.handler != nil {
		if err := d.handler.OnCalculatedValue(msg); err != nil {
			return Record{}, err
		}
	}
	symbol := symbolFromBytes(msg.Symbol[:])
	return Record{Type: TypeCalculatedValue, Symbol: symbol, Payload: append([]byte(nil), data...)}, nil
}

// recordWithContext builds a Record for a message type that references an
// order-id but carries no symbol of its own, appending the 14-byte context
// suffix when the order is resident and falling back to unknownSymbol
// (with no suffix) otherwise.
func (d *Decoder) recordWithContext(msgType byte, orderID uint64, data []byte) (Record, error) {
	ctx, ok := d.table.Lookup(orderID)
	if !ok {
		d.symbolMiss(orderID, msgType)
		return Record{Type: msgType, OrderID: orderID, Symbol: unknownSymbol, Payload: append([]byte(nil), data...)}, nil
	}
	symbol, _ := decodeContext(ctx[:])
	payload := make([]byte, len(data)+ContextSize)
	copy(payload, data)
	copy(payload[len(data):], ctx[:])
	return Record{Type: msgType, OrderID: orderID, Symbol: symbol, Payload: payload}, nil
}
