package structenc

import (
	"bytes"
	"encoding/binary"
	"io"
	"unsafe"
)

// Writer encodes registered records to a byte stream.
type Writer struct {
	w       io.Writer
	order   binary.ByteOrder
	reverse bool
	scratch []byte
}

// NewWriter returns a Writer encoding values in order.
func NewWriter(w io.Writer, order binary.ByteOrder) *Writer {
	return &Writer{w: w, order: order, reverse: needsReverse(order)}
}

// WriteUint32 writes one 32-bit value.
func (w *Writer) WriteUint32(v uint32) error {
	var b [4]byte
	w.order.PutUint32(b[:], v)
	_, err := w.w.Write(b[:])
	return err
}

// Encode writes v. In a foreign byte order, padding is written as zeros;
// in host order the record is copied verbatim.
func Encode[T any](w *Writer, v T) error {
	p, err := PlanOf[T](w.reverse)
	if err != nil {
		return err
	}
	if cap(w.scratch) < p.Size {
		w.scratch = make([]byte, p.Size)
	}
	buf := w.scratch[:p.Size]
	copy(buf, unsafe.Slice((*byte)(unsafe.Pointer(&v)), p.Size))
	p.encode(buf)
	_, err = w.w.Write(buf)
	return err
}

// Marshal encodes v into a new byte slice.
func Marshal[T any](v T, order binary.ByteOrder) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(NewWriter(&buf, order), v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
