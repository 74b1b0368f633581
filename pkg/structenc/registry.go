package structenc

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/modern-go/reflect2"
)

// Registry errors.
var (
	// ErrNotRegistered indicates a type with no registered layout.
	ErrNotRegistered = errors.New("structenc: type not registered")

	// ErrAlreadyRegistered indicates a second, different layout for a type.
	ErrAlreadyRegistered = errors.New("structenc: type already registered")

	// ErrUnsupportedType indicates a type that contains pointers.
	ErrUnsupportedType = errors.New("structenc: unsupported type")
)

var (
	// layouts maps a type's runtime type handle to its *Layout.
	layouts sync.Map

	// plans maps a planKey to its compiled *Plan. Entries are never evicted.
	plans sync.Map
)

type planKey struct {
	rtype   uintptr
	reverse bool
}

// typeOf returns the reflect2 handle of T.
func typeOf[T any]() reflect2.Type {
	return reflect2.Type2(reflect.TypeFor[T]())
}

// Register binds T to l. The layout is checked and must be exactly as large
// as T. Registering the same layout again is a no-op.
func Register[T any](l *Layout) error {
	typ := typeOf[T]()
	t := typ.Type1()

	if err := pointerFree(t); err != nil {
		return err
	}
	if int(t.Size()) != l.Size {
		return fmt.Errorf("%w: %s is %d bytes, layout %s is %d", ErrLayoutSize, t, t.Size(), l.Name, l.Size)
	}
	if err := l.check(); err != nil {
		return err
	}
	if err := matchType(typ, l); err != nil {
		return err
	}

	if prev, loaded := layouts.LoadOrStore(typ.RType(), l); loaded && prev.(*Layout) != l {
		return fmt.Errorf("%w: %s", ErrAlreadyRegistered, t)
	}
	return nil
}

// MustRegister is like Register but panics on error. It is meant for
// package-level registration.
func MustRegister[T any](l *Layout) {
	if err := Register[T](l); err != nil {
		panic(err)
	}
}

// LayoutOf returns the layout registered for T.
func LayoutOf[T any]() (*Layout, bool) {
	v, ok := layouts.Load(typeOf[T]().RType())
	if !ok {
		return nil, false
	}
	return v.(*Layout), true
}

// PlanOf returns the cached plan for T, compiling it on first use.
func PlanOf[T any](reverse bool) (*Plan, error) {
	typ := typeOf[T]()
	key := planKey{rtype: typ.RType(), reverse: reverse}
	if p, ok := plans.Load(key); ok {
		return p.(*Plan), nil
	}

	v, ok := layouts.Load(key.rtype)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotRegistered, typ.Type1())
	}
	p, err := v.(*Layout).Compile(reverse)
	if err != nil {
		return nil, err
	}
	actual, _ := plans.LoadOrStore(key, p)
	return actual.(*Plan), nil
}

// pointerFree rejects types whose in-memory form holds pointers.
func pointerFree(t reflect.Type) error {
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128,
		reflect.Int, reflect.Uint, reflect.Uintptr:
		return nil
	case reflect.Array:
		return pointerFree(t.Elem())
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if err := pointerFree(t.Field(i).Type); err != nil {
				return err
			}
		}
		return nil
	}
	return fmt.Errorf("%w: %s holds %s", ErrUnsupportedType, t, t.Kind())
}

// leaf is one scalar of a record: a Go field or a layout element.
type leaf struct {
	name  string
	off   int
	width int
	raw   bool
}

// typeLeaves appends the scalars of typ at base. Blank fields are padding.
// Complex values are a pair of floats.
func typeLeaves(dst []leaf, typ reflect2.Type, name string, base int) []leaf {
	t := typ.Type1()
	switch t.Kind() {
	case reflect.Array:
		elem := reflect2.Type2(t.Elem())
		n := int(t.Elem().Size())
		for i := 0; i < t.Len(); i++ {
			dst = typeLeaves(dst, elem, fmt.Sprintf("%s[%d]", name, i), base+i*n)
		}
	case reflect.Struct:
		st := typ.(reflect2.StructType)
		for i := 0; i < st.NumField(); i++ {
			f := st.Field(i)
			if f.Name() == "_" {
				continue
			}
			fname := f.Name()
			if name != "" {
				fname = name + "." + fname
			}
			dst = typeLeaves(dst, f.Type(), fname, base+int(f.Offset()))
		}
	case reflect.Complex64, reflect.Complex128:
		h := int(t.Size()) / 2
		dst = append(dst, leaf{name: name, off: base, width: h}, leaf{name: name, off: base + h, width: h})
	default:
		dst = append(dst, leaf{name: name, off: base, width: int(t.Size())})
	}
	return dst
}

// leaves appends the elements of l at base.
func (l *Layout) leaves(dst []leaf, base int) []leaf {
	for _, f := range l.Fields {
		off := base + f.Offset
		name := l.Name + "." + f.Name
		for i := 0; i < f.Count; i++ {
			switch f.Kind {
			case FieldNested:
				dst = f.Layout.leaves(dst, off+i*f.Layout.Size)
			case FieldBytes:
				dst = append(dst, leaf{name: name, off: off + i, width: 1, raw: true})
			default:
				dst = append(dst, leaf{name: name, off: off + i*f.Width, width: f.Width})
			}
		}
	}
	return dst
}

// matchType checks l against the memory layout of typ. Every layout scalar
// must sit exactly on a Go scalar of the same width, and every Go scalar
// wider than a byte must be described by a scalar or lie inside a byte run.
func matchType(typ reflect2.Type, l *Layout) error {
	fields := typeLeaves(nil, typ, "", 0)
	byOffset := make(map[int]leaf, len(fields))
	for _, f := range fields {
		byOffset[f.off] = f
	}

	raw := make(map[int]bool)
	described := make(map[int]bool)
	for _, e := range l.leaves(nil, 0) {
		if e.raw {
			raw[e.off] = true
			continue
		}
		f, ok := byOffset[e.off]
		if !ok {
			return fmt.Errorf("%w: %s at 0x%X does not start a field of %s", ErrInvalidField, e.name, e.off, typ.Type1())
		}
		if f.width != e.width {
			return fmt.Errorf("%w: %s at 0x%X is %d bytes, %s.%s is %d", ErrInvalidField, e.name, e.off, e.width, typ.Type1(), f.name, f.width)
		}
		described[e.off] = true
	}

	for _, f := range fields {
		if described[f.off] || f.width == 1 {
			continue
		}
		for i := 0; i < f.width; i++ {
			if !raw[f.off+i] {
				return fmt.Errorf("%w: %s.%s at 0x%X (%d bytes) is not described by %s", ErrInvalidField, typ.Type1(), f.name, f.off, f.width, l.Name)
			}
		}
	}
	return nil
}
