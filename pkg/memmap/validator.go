package memmap

import (
	"context"
	"fmt"
)

// Validator checks addresses against the active table.
// The zero value is not usable; create one with NewValidator.
type Validator struct {
	table Table

	// Debug bypasses all checks. Used for deliberate out-of-table access.
	Debug bool
}

// NewValidator returns a Validator over t, or over DefaultTable when t is
// nil. The table is copied.
func NewValidator(t Table) *Validator {
	if t == nil {
		t = DefaultTable()
	}
	return &Validator{table: t.Clone()}
}

// Table returns a copy of the active table.
func (v *Validator) Table() Table {
	return v.table.Clone()
}

// SetTable replaces the active table wholesale.
func (v *Validator) SetTable(t Table) error {
	if err := t.Validate(); err != nil {
		return err
	}
	v.table = t.Clone()
	return nil
}

// Range returns entry i of the active table.
func (v *Validator) Range(i int) Range {
	return v.table[i]
}

// RangeCheckID returns the index of the range containing addr.
func (v *Validator) RangeCheckID(addr uint32) (int, bool) {
	return v.table.Lookup(addr)
}

// RangeCheck returns the kind of the range containing addr, or KindUnknown.
func (v *Validator) RangeCheck(addr uint32) Kind {
	i, ok := v.table.Lookup(addr)
	if !ok {
		return KindUnknown
	}
	return v.table[i].Kind
}

// ValidAddress reports whether addr lies in any range.
func (v *Validator) ValidAddress(addr uint32) bool {
	if v.Debug {
		return true
	}
	_, ok := v.table.Lookup(addr)
	return ok
}

// ValidRange reports whether [low, high) lies inside a single range.
func (v *Validator) ValidRange(low, high uint32) bool {
	if v.Debug {
		return true
	}
	if high <= low {
		return false
	}
	lo, ok := v.table.Lookup(low)
	if !ok {
		return false
	}
	hi, ok := v.table.Lookup(high - 1)
	return ok && lo == hi
}

// Clamp fits [start, end) to the range containing start. An end that lies
// in another range, or below start, is replaced by that range's High; an
// empty interval is left empty. ok is false when start is not valid, in
// which case the request should be dropped. In debug mode the interval is
// returned unchanged.
func (v *Validator) Clamp(start, end uint32) (uint32, bool) {
	if v.Debug {
		return end, true
	}
	i, ok := v.table.Lookup(start)
	if !ok {
		return end, false
	}
	switch {
	case end == start:
	case end < start:
		end = v.table[i].High
	default:
		if j, ok := v.table.Lookup(end - 1); !ok || j != i {
			end = v.table[i].High
		}
	}
	return end, true
}

// KernelPeeker reads privileged memory and the target OS version.
// Implemented by gecko.Client.
type KernelPeeker interface {
	OSVersionRequest(ctx context.Context) (uint32, error)
	PeekKern(ctx context.Context, addr uint32) (uint32, error)
}

// Kernel addresses of the loader's module list, per OS version.
const (
	kernelModuleList4xx uint32 = 0xffe8619c
)

// SetDataUpper replaces the first three table entries with the live
// process's init, code and data segment bounds. Only OS versions 400 and
// 410 are supported; for any other version the table is left unchanged and
// updated is false.
func (v *Validator) SetDataUpper(ctx context.Context, k KernelPeeker) (updated bool, err error) {
	ver, err := k.OSVersionRequest(ctx)
	if err != nil {
		return false, fmt.Errorf("os version: %w", err)
	}

	var root uint32
	switch ver {
	case 400, 410:
		root = kernelModuleList4xx
	default:
		// TODO: 5.x keeps the list at 0xffe8591c but reading it crashes the
		// server; re-enable once the handler supports it.
		return false, nil
	}

	peek := func(addr uint32) uint32 {
		if err != nil {
			return 0
		}
		var val uint32
		val, err = k.PeekKern(ctx, addr)
		return val
	}

	mem := peek(root)
	tbl := peek(mem + 4)
	lst := peek(tbl + 20)

	initStart, initLen := peek(lst+0x00), peek(lst+0x04)
	codeStart, codeLen := peek(lst+0x10), peek(lst+0x14)
	dataStart, dataLen := peek(lst+0x20), peek(lst+0x24)
	if err != nil {
		return false, fmt.Errorf("read segment table: %w", err)
	}

	t := v.table.Clone()
	for len(t) < 3 {
		t = append(t, Range{})
	}
	t[0] = NewRange(KindExecutable, initStart, initStart+initLen)
	t[1] = NewRange(KindExecutable, codeStart, codeStart+codeLen)
	t[2] = NewRange(KindReadWrite, dataStart, dataStart+dataLen)
	v.table = t
	return true, nil
}
