package memmap

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Kind is the access class of an address range.
type Kind uint8

const (
	KindReadWrite Kind = iota
	KindReadOnly
	KindExecutable
	KindHardware
	KindUnknown
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindReadWrite:
		return "RW"
	case KindReadOnly:
		return "RO"
	case KindExecutable:
		return "EX"
	case KindHardware:
		return "HW"
	default:
		return "UNKNOWN"
	}
}

// ParseKind parses a kind name as printed by String. Matching is case
// insensitive.
func ParseKind(s string) (Kind, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "RW":
		return KindReadWrite, nil
	case "RO":
		return KindReadOnly, nil
	case "EX":
		return KindExecutable, nil
	case "HW":
		return KindHardware, nil
	case "UNKNOWN":
		return KindUnknown, nil
	}
	return KindUnknown, fmt.Errorf("%w: %q", ErrInvalidKind, s)
}

// UnmarshalYAML decodes a kind name.
func (k *Kind) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseKind(s)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*k = parsed
	return nil
}

// MarshalYAML encodes the kind name.
func (k Kind) MarshalYAML() (any, error) {
	return k.String(), nil
}

// Range is a half-open address interval [Low, High).
type Range struct {
	Kind Kind
	ID   uint8
	Low  uint32
	High uint32
}

// NewRange returns a range whose ID is the top byte of low.
func NewRange(kind Kind, low, high uint32) Range {
	return Range{Kind: kind, ID: uint8(low >> 24), Low: low, High: high}
}

// Contains reports whether addr lies in [Low, High).
func (r Range) Contains(addr uint32) bool {
	return addr >= r.Low && addr < r.High
}

// Size returns High - Low.
func (r Range) Size() uint32 {
	return r.High - r.Low
}

// String formats the range for display.
func (r Range) String() string {
	return fmt.Sprintf("%-7s %02X %08X-%08X", r.Kind, r.ID, r.Low, r.High)
}
