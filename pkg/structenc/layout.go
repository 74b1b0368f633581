package structenc

import (
	"errors"
	"fmt"
)

// Layout errors.
var (
	// ErrMissingCount indicates an array, byte run or nested field with a
	// zero element count.
	ErrMissingCount = errors.New("structenc: field has no element count")

	// ErrFieldOrder indicates a field that starts before the end of the
	// previous one.
	ErrFieldOrder = errors.New("structenc: fields overlap or are out of order")

	// ErrLayoutSize indicates fields extending past the layout size, or a
	// layout size that differs from the registered type.
	ErrLayoutSize = errors.New("structenc: layout size mismatch")

	// ErrInvalidField indicates a field with a non-positive width, a
	// missing nested layout, or one that disagrees with the registered
	// type's field offsets and widths.
	ErrInvalidField = errors.New("structenc: invalid field")
)

// FieldKind classifies a layout field.
type FieldKind uint8

const (
	// FieldScalar is one or more numbers of a fixed width.
	FieldScalar FieldKind = iota
	// FieldBytes is a run of bytes copied verbatim.
	FieldBytes
	// FieldNested is one or more embedded records.
	FieldNested
)

// String returns the kind name.
func (k FieldKind) String() string {
	switch k {
	case FieldScalar:
		return "SCALAR"
	case FieldBytes:
		return "BYTES"
	case FieldNested:
		return "NESTED"
	default:
		return "UNKNOWN"
	}
}

// Field describes one field of a Layout.
type Field struct {
	Name   string
	Kind   FieldKind
	Offset int

	// Width is the scalar width in bytes. Unused for FieldBytes and
	// FieldNested.
	Width int

	// Count is the number of elements. Scalars declared with Scalar have a
	// count of one; arrays must declare theirs.
	Count int

	// Layout is the embedded record for FieldNested.
	Layout *Layout
}

// Scalar declares a single number of the given width at off.
func Scalar(name string, off, width int) Field {
	return Field{Name: name, Kind: FieldScalar, Offset: off, Width: width, Count: 1}
}

// Array declares count numbers of the given width starting at off.
func Array(name string, off, width, count int) Field {
	return Field{Name: name, Kind: FieldScalar, Offset: off, Width: width, Count: count}
}

// Bytes declares n bytes at off that are never reordered.
func Bytes(name string, off, n int) Field {
	return Field{Name: name, Kind: FieldBytes, Offset: off, Width: 1, Count: n}
}

// Nested declares count consecutive records of layout l starting at off.
func Nested(name string, off int, l *Layout, count int) Field {
	return Field{Name: name, Kind: FieldNested, Offset: off, Count: count, Layout: l}
}

// size returns the number of bytes the field occupies.
func (f Field) size() int {
	if f.Kind == FieldNested {
		if f.Layout == nil {
			return 0
		}
		return f.Layout.Size * f.Count
	}
	return f.Width * f.Count
}

// Layout is the byte layout of a fixed-size record. Fields must be listed
// in offset order; gaps between them and after the last field are skipped.
type Layout struct {
	Name   string
	Size   int
	Fields []Field
}

// check validates the field list without building a plan.
func (l *Layout) check() error {
	end := 0
	for _, f := range l.Fields {
		if err := f.check(); err != nil {
			return fmt.Errorf("%s.%s: %w", l.Name, f.Name, err)
		}
		if f.Offset < end {
			return fmt.Errorf("%w: %s.%s at 0x%X, previous field ends at 0x%X", ErrFieldOrder, l.Name, f.Name, f.Offset, end)
		}
		end = f.Offset + f.size()
	}
	if end > l.Size {
		return fmt.Errorf("%w: %s fields end at 0x%X, size 0x%X", ErrLayoutSize, l.Name, end, l.Size)
	}
	return nil
}

func (f Field) check() error {
	if f.Count <= 0 {
		return ErrMissingCount
	}
	switch f.Kind {
	case FieldScalar, FieldBytes:
		if f.Width <= 0 {
			return fmt.Errorf("%w: width %d", ErrInvalidField, f.Width)
		}
	case FieldNested:
		if f.Layout == nil {
			return fmt.Errorf("%w: nested layout is nil", ErrInvalidField)
		}
		return f.Layout.check()
	default:
		return fmt.Errorf("%w: kind %d", ErrInvalidField, f.Kind)
	}
	return nil
}
