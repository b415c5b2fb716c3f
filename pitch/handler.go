package pitch

// Handler receives each decoded message by concrete type, for callers that
// want to observe the stream (statistics, auditing) without taking on the
// router/dispatch/publish pipeline. A Decoder invokes it alongside its own
// output; a non-nil error from a Handler method makes the Decoder drop that
// message's record and stop decoding the datagram with that error.
type Handler interface {
	OnAddOrder(msg AddOrderMessage) error
	OnOrderExecuted(msg OrderExecutedMessage) error
	OnOrderExecutedAtPrice(msg OrderExecutedAtPriceMessage) error
	OnReduceSize(msg ReduceSizeMessage) error
	OnModifyOrder(msg ModifyOrderMessage) error
	OnDeleteOrder(msg DeleteOrderMessage) error
	OnTrade(msg TradeMessage) error
	OnTradeBreak(msg TradeBreakMessage) error
	OnTradingStatus(msg TradingStatusMessage) error
	OnUnitClear(msg UnitClearMessage) error
	OnEndOfSession(msg EndOfSessionMessage) error
	OnAuctionUpdate(msg AuctionUpdateMessage) error
	OnAuctionSummary(msg AuctionSummaryMessage) error
	OnCalculatedValue(msg CalculatedValueMessage) error
	OnUnknownMessage(msgType byte, data []byte) error
}

// DefaultHandler is a no-op implementation of Handler, embedded by callers
// that only care about a subset of message types.
type DefaultHandler struct{}

func (h *DefaultHandler) OnAddOrder(msg AddOrderMessage) error                         { return nil }
func (h *DefaultHandler) OnOrderExecuted(msg OrderExecutedMessage) error               { return nil }
func (h *DefaultHandler) OnOrderExecutedAtPrice(msg OrderExecutedAtPriceMessage) error { return nil }
func (h *DefaultHandler) OnReduceSize(msg ReduceSizeMessage) error                     { return nil }
func (h *DefaultHandler) OnModifyOrder(msg ModifyOrderMessage) error                   { return nil }
func (h *DefaultHandler) OnDeleteOrder(msg DeleteOrderMessage) error                   { return nil }
func (h *DefaultHandler) OnTrade(msg TradeMessage) error                               { return nil }
func (h *DefaultHandler) OnTradeBreak(msg TradeBreakMessage) error                     { return nil }
func (h *DefaultHandler) OnTradingStatus(msg TradingStatusMessage) error               { return nil }
func (h *DefaultHandler) OnUnitClear(msg UnitClearMessage) error                       { return nil }
func (h *DefaultHandler) OnEndOfSession(msg EndOfSessionMessage) error                 { return nil }
func (h *DefaultHandler) OnAuctionUpdate(msg AuctionUpdateMessage) error               { return nil }
func (h *DefaultHandler) OnAuctionSummary(msg AuctionSummaryMessage) error             { return nil }
func (h *DefaultHandler) OnCalculatedValue(msg CalculatedValueMessage) error           { return nil }
func (h *DefaultHandler) OnUnknownMessage(msgType byte, data []byte) error             { return nil }

// MessageStats tracks per-type counts of decoded messages.
type MessageStats struct {
	TotalMessages    int
	AddOrders        int
	OrderExecuted    int
	ExecutedAtPrice  int
	ReduceSize       int
	ModifyOrder      int
	DeleteOrder      int
	Trades           int
	TradeBreaks      int
	TradingStatus    int
	UnitClears       int
	EndOfSessions    int
	AuctionUpdates   int
	AuctionSummaries int
	CalculatedValues int
	UnknownMessages  int
}

// StatsHandler is a Handler that accumulates MessageStats, used by tests
// that want to assert on per-type message counts.
type StatsHandler struct {
	DefaultHandler
	Stats MessageStats
}

func (h *StatsHandler) OnAddOrder(msg AddOrderMessage) error {
	h.Stats.AddOrders++
	h.Stats.TotalMessages++
	return nil
}

func (h *StatsHandler) OnOrderExecuted(msg OrderExecutedMessage) error {
	h.Stats.OrderExecuted++
	h.Stats.TotalMessages++
	return nil
}

func (h *StatsHandler) OnOrderExecutedAtPrice(msg OrderExecutedAtPriceMessage) error {
	h.Stats.ExecutedAtPrice++
	h.Stats.TotalMessages++
	return nil
}

func (h *StatsHandler) OnReduceSize(msg ReduceSizeMessage) error {
	h.Stats.ReduceSize++
	h.Stats.TotalMessages++
	return nil
}

func (h *StatsHandler) OnModifyOrder(msg ModifyOrderMessage) error {
	h.Stats.ModifyOrder++
	h.Stats.TotalMessages++
	return nil
}

func (h *StatsHandler) OnDeleteOrder(msg DeleteOrderMessage) error {
	h.Stats.DeleteOrder++
	h.Stats.TotalMessages++
	return nil
}

func (h *StatsHandler) OnTrade(msg TradeMessage) error {
	h.Stats.Trades++
	h.Stats.TotalMessages++
	return nil
}

func (h *StatsHandler) OnTradeBreak(msg TradeBreakMessage) error {
	h.Stats.TradeBreaks++
	h.Stats.TotalMessages++
	return nil
}

func (h *StatsHandler) OnTradingStatus(msg TradingStatusMessage) error {
	h.Stats.TradingStatus++
	h.Stats.TotalMessages++
	return nil
}

func (h *StatsHandler) OnUnitClear(msg UnitClearMessage) error {
	h.Stats.UnitClears++
	h.Stats.TotalMessages++
	return nil
}

func (h *StatsHandler) OnEndOfSession(msg EndOfSessionMessage) error {
	h.Stats.EndOfSessions++
	h.Stats.TotalMessages++
	return nil
}

func (h *StatsHandler) OnAuctionUpdate(msg AuctionUpdateMessage) error {
	h.Stats.AuctionUpdates++
	h.Stats.TotalMessages++
	return nil
}

func (h *StatsHandler) OnAuctionSummary(msg AuctionSummaryMessage) error {
	h.Stats.AuctionSummaries++
	h.Stats.TotalMessages++
	return nil
}

func (h *StatsHandler) OnCalculatedValue(msg CalculatedValueMessage) error {
	h.Stats.CalculatedValues++
	h.Stats.TotalMessages++
	return nil
}

func (h *StatsHandler) OnUnknownMessage(msgType byte, data []byte) error {
	h.Stats.UnknownMessages++
	h.Stats.TotalMessages++
	return nil
}
