package structenc

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"unsafe"

	"golang.org/x/text/encoding/unicode"
)

// ErrNegativeCount indicates a read of fewer than zero elements.
var ErrNegativeCount = errors.New("structenc: negative count")

// Encoding selects the character width of string reads.
type Encoding uint8

const (
	// EncodingUTF8 reads one byte per character unit.
	EncodingUTF8 Encoding = iota
	// EncodingUTF16 reads two bytes per character unit, in the reader's
	// byte order.
	EncodingUTF16
)

// unit returns the size of one character unit.
func (e Encoding) unit() int {
	if e == EncodingUTF16 {
		return 2
	}
	return 1
}

// Reader decodes registered records from a byte stream.
type Reader struct {
	r       io.Reader
	order   binary.ByteOrder
	reverse bool
	scratch []byte
}

// NewReader returns a Reader decoding values stored in order.
func NewReader(r io.Reader, order binary.ByteOrder) *Reader {
	return &Reader{r: r, order: order, reverse: needsReverse(order)}
}

// Order returns the byte order of the stream.
func (r *Reader) Order() binary.ByteOrder {
	return r.order
}

// fill reads n bytes into the scratch buffer, growing it as needed.
func (r *Reader) fill(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: %d bytes", ErrNegativeCount, n)
	}
	if cap(r.scratch) < n {
		r.scratch = make([]byte, n)
	}
	buf := r.scratch[:n]
	if _, err := io.ReadFull(r.r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// ReadByte reads one byte.
func (r *Reader) ReadByte() (byte, error) {
	b, err := r.fill(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadBytes reads n bytes into a new slice.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	b, err := r.fill(n)
	if err != nil {
		return nil, err
	}
	return bytes.Clone(b), nil
}

// ReadInt8 reads one signed byte.
func (r *Reader) ReadInt8() (int8, error) {
	b, err := r.ReadByte()
	return int8(b), err
}

// ReadUint16 reads one 16-bit value.
func (r *Reader) ReadUint16() (uint16, error) {
	b, err := r.fill(2)
	if err != nil {
		return 0, err
	}
	return r.order.Uint16(b), nil
}

// ReadUint32 reads one 32-bit value.
func (r *Reader) ReadUint32() (uint32, error) {
	b, err := r.fill(4)
	if err != nil {
		return 0, err
	}
	return r.order.Uint32(b), nil
}

// ReadUint64 reads one 64-bit value.
func (r *Reader) ReadUint64() (uint64, error) {
	b, err := r.fill(8)
	if err != nil {
		return 0, err
	}
	return r.order.Uint64(b), nil
}

// ReadInt16 reads one signed 16-bit value.
func (r *Reader) ReadInt16() (int16, error) {
	v, err := r.ReadUint16()
	return int16(v), err
}

// ReadInt32 reads one signed 32-bit value.
func (r *Reader) ReadInt32() (int32, error) {
	v, err := r.ReadUint32()
	return int32(v), err
}

// ReadInt64 reads one signed 64-bit value.
func (r *Reader) ReadInt64() (int64, error) {
	v, err := r.ReadUint64()
	return int64(v), err
}

// ReadFloat32 reads one IEEE 754 single.
func (r *Reader) ReadFloat32() (float32, error) {
	v, err := r.ReadUint32()
	return math.Float32frombits(v), err
}

// ReadFloat64 reads one IEEE 754 double.
func (r *Reader) ReadFloat64() (float64, error) {
	v, err := r.ReadUint64()
	return math.Float64frombits(v), err
}

// readSlice reads n values of width bytes in one fill of the scratch
// buffer.
func readSlice[T any](r *Reader, n, width int, get func([]byte) T) ([]T, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: %d elements", ErrNegativeCount, n)
	}
	b, err := r.fill(n * width)
	if err != nil {
		return nil, err
	}
	out := make([]T, n)
	for i := range out {
		out[i] = get(b[i*width:])
	}
	return out, nil
}

// ReadUint16s reads n 16-bit values.
func (r *Reader) ReadUint16s(n int) ([]uint16, error) {
	return readSlice(r, n, 2, r.order.Uint16)
}

// ReadUint32s reads n 32-bit values.
func (r *Reader) ReadUint32s(n int) ([]uint32, error) {
	return readSlice(r, n, 4, r.order.Uint32)
}

// ReadUint64s reads n 64-bit values.
func (r *Reader) ReadUint64s(n int) ([]uint64, error) {
	return readSlice(r, n, 8, r.order.Uint64)
}

// ReadInt16s reads n signed 16-bit values.
func (r *Reader) ReadInt16s(n int) ([]int16, error) {
	return readSlice(r, n, 2, func(b []byte) int16 { return int16(r.order.Uint16(b)) })
}

// ReadInt32s reads n signed 32-bit values.
func (r *Reader) ReadInt32s(n int) ([]int32, error) {
	return readSlice(r, n, 4, func(b []byte) int32 { return int32(r.order.Uint32(b)) })
}

// ReadInt64s reads n signed 64-bit values.
func (r *Reader) ReadInt64s(n int) ([]int64, error) {
	return readSlice(r, n, 8, func(b []byte) int64 { return int64(r.order.Uint64(b)) })
}

// ReadFloat32s reads n singles.
func (r *Reader) ReadFloat32s(n int) ([]float32, error) {
	return readSlice(r, n, 4, func(b []byte) float32 { return math.Float32frombits(r.order.Uint32(b)) })
}

// ReadFloat64s reads n doubles.
func (r *Reader) ReadFloat64s(n int) ([]float64, error) {
	return readSlice(r, n, 8, func(b []byte) float64 { return math.Float64frombits(r.order.Uint64(b)) })
}

// ReadString reads n character units of enc. Embedded NULs are kept.
func (r *Reader) ReadString(enc Encoding, n int) (string, error) {
	if n < 0 {
		return "", fmt.Errorf("%w: %d characters", ErrNegativeCount, n)
	}
	b, err := r.fill(n * enc.unit())
	if err != nil {
		return "", err
	}
	return r.decodeString(enc, b)
}

// ReadStringNT reads character units of enc up to and including a NUL
// unit. The NUL is not part of the result.
func (r *Reader) ReadStringNT(enc Encoding) (string, error) {
	w := enc.unit()
	var text []byte
	for {
		b, err := r.fill(w)
		if err != nil {
			return "", err
		}
		if isZero(b) {
			break
		}
		text = append(text, b...)
	}
	return r.decodeString(enc, text)
}

func (r *Reader) decodeString(enc Encoding, b []byte) (string, error) {
	if enc != EncodingUTF16 {
		return string(b), nil
	}
	endian := unicode.BigEndian
	if r.order.Uint16([]byte{0x00, 0x01}) != 1 {
		endian = unicode.LittleEndian
	}
	out, err := unicode.UTF16(endian, unicode.IgnoreBOM).NewDecoder().Bytes(b)
	if err != nil {
		return "", fmt.Errorf("structenc: decode utf-16: %w", err)
	}
	return string(out), nil
}

func isZero(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}

// Decode reads one T from r.
func Decode[T any](r *Reader) (T, error) {
	var v T
	p, err := PlanOf[T](r.reverse)
	if err != nil {
		return v, err
	}
	if err := decodeInto(r, p, &v); err != nil {
		return v, err
	}
	return v, nil
}

// DecodeSlice reads n consecutive T values from r. The scratch buffer is
// shared by all elements.
func DecodeSlice[T any](r *Reader, n int) ([]T, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: %d records", ErrNegativeCount, n)
	}
	p, err := PlanOf[T](r.reverse)
	if err != nil {
		return nil, err
	}
	out := make([]T, n)
	for i := range out {
		if err := decodeInto(r, p, &out[i]); err != nil {
			return out[:i], err
		}
	}
	return out, nil
}

// Unmarshal decodes a T from the start of data.
func Unmarshal[T any](data []byte, order binary.ByteOrder) (T, error) {
	return Decode[T](NewReader(bytes.NewReader(data), order))
}

func decodeInto[T any](r *Reader, p *Plan, v *T) error {
	buf, err := r.fill(p.Size)
	if err != nil {
		return err
	}
	p.decode(buf)
	copy(unsafe.Slice((*byte)(unsafe.Pointer(v)), p.Size), buf)
	return nil
}
