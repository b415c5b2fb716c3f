package pitch

// Message type tags.
const (
	TypeAddOrder             = 0x37
	TypeOrderExecuted        = 0x38
	TypeOrderExecutedAtPrice = 0x58
	TypeReduceSize           = 0x39
	TypeModifyOrder          = 0x3A
	TypeDeleteOrder          = 0x3C
	TypeTrade                = 0x3D
	TypeTradeBreak           = 0x3E
	TypeTradingStatus        = 0x3B
	TypeUnitClear            = 0x97
	TypeEndOfSession         = 0x2D
	TypeAuctionUpdate        = 0x59
	TypeAuctionSummary       = 0x5A
	TypeCalculatedValue      = 0xE3
)

// fixedSize gives the on-wire byte size (including the length and type bytes)
// for every message tag the decoder recognizes.
var fixedSize = map[byte]int{
	TypeUnitClear:            6,
	TypeEndOfSession:         6,
	TypeTradingStatus:        22,
	TypeAddOrder:             42,
	TypeOrderExecuted:        43,
	TypeOrderExecutedAtPrice: 52,
	TypeReduceSize:           22,
	TypeModifyOrder:          31,
	TypeDeleteOrder:          18,
	TypeTrade:                72,
	TypeTradeBreak:           18,
	TypeCalculatedValue:      33,
	TypeAuctionUpdate:        34,
	TypeAuctionSummary:       30,
}

func readUint16LE(b []byte) uint16 {
	return uint16(b[0]) | uint16(b[1])<<8
}

func readUint32LE(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

func readUint64LE(b []byte) uint64 {
	return uint64(b[0]) | uint64(b[1])<<8 | uint64(b[2])<<16 | uint64(b[3])<<24 |
		uint64(b[4])<<32 | uint64(b[5])<<40 | uint64(b[6])<<48 | uint64(b[7])<<56
}

func writeUint16LE(b []byte, v uint16) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
}

func writeUint32LE(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}

func writeUint64LE(b []byte, v uint64) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
	b[4] = byte(v >> 32)
	b[5] = byte(v >> 40)
	b[6] = byte(v >> 48)
	b[7] = byte(v >> 56)
}

// priceScale is the fixed-point divisor applied to on-wire price integers.
const priceScale = 1e7

func decodePrice(raw uint64) float64 {
	return float64(raw) / priceScale
}

func encodePrice(v float64) uint64 {
	return uint64(v*priceScale + 0.5)
}
