package pitch

// Each message struct mirrors the fixed on-wire layout for its tag. The
// leading length and type bytes are not repeated as struct fields; they are
// available from the frame splitter as the message's declared size and tag.
// Reserved fields exist purely to pad a struct to its declared wire size and
// carry no meaning.

// AddOrderMessage adds a new resting order, carrying its symbol and price.
type AddOrderMessage struct {
	Timestamp   uint32
	OrderID     uint64
	Side        byte
	Quantity    uint32
	Symbol      [SymbolSize]byte
	Price       uint64
	Participant [4]byte
	Reserved    [5]byte
}

// OrderExecutedMessage reports a full or partial fill against a resting order.
type OrderExecutedMessage struct {
	Timestamp       uint32
	OrderID         uint64
	ExecutedQty     uint32
	ExecutionID     uint64
	ContraOrderID   uint64
	ContraPartition byte
	Reserved        [8]byte
}

// OrderExecutedAtPriceMessage reports a fill at a price other than the
// resting order's displayed price (e.g. an auction execution).
type OrderExecutedAtPriceMessage struct {
	Timestamp      uint32
	OrderID        uint64
	ExecutedQty    uint32
	ExecutionID    uint64
	ContraOrderID  uint64
	ExecutionPrice uint64
	Reserved       [10]byte
}

// ReduceSizeMessage reduces the remaining quantity of a resting order.
type ReduceSizeMessage struct {
	Timestamp   uint32
	OrderID     uint64
	CanceledQty uint32
	Reserved    [4]byte
}

// ModifyOrderMessage replaces the quantity and/or price of a resting order.
type ModifyOrderMessage struct {
	Timestamp uint32
	OrderID   uint64
	Quantity  uint32
	Price     uint64
	Side      byte
	Reserved  [4]byte
}

// DeleteOrderMessage removes a resting order from the book.
type DeleteOrderMessage struct {
	Timestamp uint32
	OrderID   uint64
	Reserved  [4]byte
}

// TradeMessage reports an execution that carries the symbol directly,
// rather than through a previously added resting order.
type TradeMessage struct {
	Timestamp   uint32
	OrderID     uint64
	Side        byte
	Quantity    uint32
	Symbol      [SymbolSize]byte
	Price       uint64
	ExecutionID uint64
	Reserved    [31]byte
}

// TradeBreakMessage invalidates a previously reported execution.
type TradeBreakMessage struct {
	Timestamp   uint32
	ExecutionID uint64
	Reserved    [4]byte
}

// TradingStatusMessage announces a change in trading state for a symbol.
type TradingStatusMessage struct {
	Timestamp uint32
	Symbol    [SymbolSize]byte
	Status    byte
	Reserved  [9]byte
}

// UnitClearMessage signals the unit should discard all working state.
type UnitClearMessage struct {
	Timestamp uint32
}

// EndOfSessionMessage marks the end of the trading session for a unit.
type EndOfSessionMessage struct {
	Timestamp uint32
}

// AuctionUpdateMessage reports the current state of an ongoing auction.
type AuctionUpdateMessage struct {
	Timestamp      uint32
	Symbol         [SymbolSize]byte
	AuctionType    byte
	ReferencePrice uint64
	IndicativeQty  uint32
	AuctionOnly    uint32
	Reserved       [5]byte
}

// AuctionSummaryMessage reports the result of a completed auction.
type AuctionSummaryMessage struct {
	Timestamp   uint32
	Symbol      [SymbolSize]byte
	AuctionType byte
	Price       uint64
	Quantity    uint32
	Reserved    [5]byte
}

// CalculatedValueMessage reports a computed reference value for a symbol
// (e.g. an index or NAV calculation).
type CalculatedValueMessage struct {
	Timestamp uint32
	Symbol    [SymbolSize]byte
	ValueType byte
	Value     uint64
	Reserved  [12]byte
}
