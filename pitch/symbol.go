package pitch

import "math"

// Symbol field and context-entry sizes, per the wire format.
const (
	SymbolSize  = 6
	PriceSize   = 8
	ContextSize = SymbolSize + PriceSize
)

// putSymbol writes sym into dst, space-padded or truncated to SymbolSize bytes.
func putSymbol(dst []byte, sym string) {
	n := copy(dst, sym)
	for ; n < SymbolSize; n++ {
		dst[n] = ' '
	}
}

// symbolFromBytes trims trailing ASCII spaces from a fixed-width symbol field.
func symbolFromBytes(b []byte) string {
	end := len(b)
	for end > 0 && b[end-1] == ' ' {
		end--
	}
	return string(b[:end])
}

// encodeContext encodes a 14-byte symbol-context entry: 6-byte space-padded symbol
// followed by an 8-byte little-endian IEEE-754 price.
func encodeContext(dst []byte, symbol string, price float64) {
	putSymbol(dst[:SymbolSize], symbol)
	writeUint64LE(dst[SymbolSize:ContextSize], math.Float64bits(price))
}

func decodeContext(b []byte) (symbol string, price float64) {
	symbol = symbolFromBytes(b[:SymbolSize])
	price = math.Float64frombits(readUint64LE(b[SymbolSize:ContextSize]))
	return symbol, price
}
