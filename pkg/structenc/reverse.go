package structenc

import (
	"encoding/binary"
	"math/bits"
)

// reverseStride reverses the byte order of every width-sized element of b.
// len(b) must be a multiple of width.
func reverseStride(b []byte, width int) {
	switch width {
	case 1:
	case 2:
		reverse2(b)
	case 4:
		reverse4(b)
	case 8:
		reverse8(b)
	default:
		for i := 0; i+width <= len(b); i += width {
			reverseBytes(b[i : i+width])
		}
	}
}

func reverse2(b []byte) {
	for i := 0; i+2 <= len(b); i += 2 {
		b[i], b[i+1] = b[i+1], b[i]
	}
}

func reverse4(b []byte) {
	for i := 0; i+4 <= len(b); i += 4 {
		v := binary.LittleEndian.Uint32(b[i:])
		binary.LittleEndian.PutUint32(b[i:], bits.ReverseBytes32(v))
	}
}

func reverse8(b []byte) {
	for i := 0; i+8 <= len(b); i += 8 {
		v := binary.LittleEndian.Uint64(b[i:])
		binary.LittleEndian.PutUint64(b[i:], bits.ReverseBytes64(v))
	}
}

func reverseBytes(b []byte) {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
}

// needsReverse reports whether values in order must be byte-reversed to
// match the host.
func needsReverse(order binary.ByteOrder) bool {
	pair := []byte{1, 0}
	return order.Uint16(pair) != binary.NativeEndian.Uint16(pair)
}
