package pitch

// headerSize is the fixed length of a Sequenced Unit Header: 2-byte length,
// 1-byte count, 1-byte unit, 4-byte sequence, all little-endian.
const headerSize = 8

// SeqUnitHeader is the prologue preceding a batch of packed PITCH messages.
type SeqUnitHeader struct {
	Length   uint16
	Count    uint8
	Unit     uint8
	Sequence uint32
}

// parseHeader reads the Sequenced Unit Header from the front of data.
func parseHeader(data []byte) (SeqUnitHeader, error) {
	if len(data) < headerSize {
		return SeqUnitHeader{}, ErrFrameShort
	}
	h := SeqUnitHeader{
		Length:   readUint16LE(data[0:2]),
		Count:    data[2],
		Unit:     data[3],
		Sequence: readUint32LE(data[4:8]),
	}
	if int(h.Length) > len(data) {
		return SeqUnitHeader{}, ErrFrameLengthMismatch
	}
	return h, nil
}
