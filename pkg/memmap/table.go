package memmap

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Table errors.
var (
	// ErrInvalidKind indicates an unknown range kind name.
	ErrInvalidKind = errors.New("invalid range kind")

	// ErrInvalidRange indicates a range whose High is not above Low.
	ErrInvalidRange = errors.New("invalid range")

	// ErrOverlap indicates two ranges in a table overlap.
	ErrOverlap = errors.New("overlapping ranges")

	// ErrEmptyTable indicates a table with no ranges.
	ErrEmptyTable = errors.New("empty table")
)

// Table is an ordered list of address ranges. Lookups return the index of
// the first range that contains an address.
type Table []Range

// DefaultTable returns the static address layout. The first three entries
// (init code, main code, data) are the ones SetDataUpper replaces.
func DefaultTable() Table {
	return Table{
		NewRange(KindExecutable, 0x01000000, 0x01800000),
		NewRange(KindExecutable, 0x0e300000, 0x10000000),
		NewRange(KindReadWrite, 0x10000000, 0x50000000),
		NewRange(KindReadOnly, 0xe0000000, 0xe4000000),
		NewRange(KindReadOnly, 0xe8000000, 0xea000000),
		NewRange(KindReadOnly, 0xf4000000, 0xf6000000),
		NewRange(KindReadOnly, 0xf6000000, 0xf6800000),
		NewRange(KindReadOnly, 0xf8000000, 0xfb000000),
		NewRange(KindReadOnly, 0xfb000000, 0xfb800000),
		NewRange(KindReadWrite, 0xfffe0000, 0xffffffff),
	}
}

// Lookup returns the index of the first range containing addr.
func (t Table) Lookup(addr uint32) (int, bool) {
	for i, r := range t {
		if r.Contains(addr) {
			return i, true
		}
	}
	return -1, false
}

// Validate checks that every range is non-empty and that no two ranges
// overlap.
func (t Table) Validate() error {
	if len(t) == 0 {
		return ErrEmptyTable
	}
	for i, r := range t {
		if r.High <= r.Low {
			return fmt.Errorf("%w: entry %d %08X-%08X", ErrInvalidRange, i, r.Low, r.High)
		}
		for j := 0; j < i; j++ {
			o := t[j]
			if r.Low < o.High && o.Low < r.High {
				return fmt.Errorf("%w: entries %d and %d", ErrOverlap, j, i)
			}
		}
	}
	return nil
}

// Clone returns a copy of t.
func (t Table) Clone() Table {
	return append(Table(nil), t...)
}

// yamlRange is the on-disk form of a Range. ID defaults to the top byte
// of Low.
type yamlRange struct {
	Kind Kind   `yaml:"kind"`
	ID   *uint8 `yaml:"id,omitempty"`
	Low  uint32 `yaml:"low"`
	High uint32 `yaml:"high"`
}

// ParseTable decodes a YAML list of ranges and validates it.
//
//	- kind: ex
//	  low: 0x01000000
//	  high: 0x01800000
func ParseTable(data []byte) (Table, error) {
	var raw []yamlRange
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse address table: %w", err)
	}
	return fromYAML(raw)
}

// LoadTable reads and parses a YAML address table file.
func LoadTable(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseTable(data)
}

// UnmarshalYAML decodes a table and validates it.
func (t *Table) UnmarshalYAML(node *yaml.Node) error {
	var raw []yamlRange
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := fromYAML(raw)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func fromYAML(raw []yamlRange) (Table, error) {
	t := make(Table, 0, len(raw))
	for _, r := range raw {
		rng := NewRange(r.Kind, r.Low, r.High)
		if r.ID != nil {
			rng.ID = *r.ID
		}
		t = append(t, rng)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}
