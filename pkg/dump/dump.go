// Package dump holds a contiguous window of target memory.
package dump

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrOverflow indicates a write past the end of the window.
var ErrOverflow = errors.New("dump: write past end of window")

// Dump is a buffer for the target memory in [Start, End). Bytes are filled
// in order by Write; Cursor marks the first address not yet filled.
type Dump struct {
	start  uint32
	end    uint32
	mem    []byte
	cursor uint32
}

// New allocates a dump for [start, end). end must not be below start.
func New(start, end uint32) *Dump {
	if end < start {
		end = start
	}
	return &Dump{
		start:  start,
		end:    end,
		mem:    make([]byte, end-start),
		cursor: start,
	}
}

// Start returns the first address of the window.
func (d *Dump) Start() uint32 { return d.start }

// End returns the address just past the window.
func (d *Dump) End() uint32 { return d.end }

// Len returns the window size in bytes.
func (d *Dump) Len() int { return len(d.mem) }

// Cursor returns the first address not yet filled.
func (d *Dump) Cursor() uint32 { return d.cursor }

// Complete reports whether the whole window has been filled.
func (d *Dump) Complete() bool { return d.cursor == d.end }

// Bytes returns the underlying buffer. It aliases the dump.
func (d *Dump) Bytes() []byte { return d.mem }

// Reset rewinds the cursor to Start without clearing the buffer.
func (d *Dump) Reset() { d.cursor = d.start }

// Write copies p at the cursor and advances it.
func (d *Dump) Write(p []byte) (int, error) {
	off := d.cursor - d.start
	room := uint32(len(d.mem)) - off
	if uint32(len(p)) > room {
		n := copy(d.mem[off:], p)
		d.cursor = d.end
		return n, ErrOverflow
	}
	n := copy(d.mem[off:], p)
	d.cursor += uint32(n)
	return n, nil
}

// Contains reports whether [addr, addr+n) lies inside the window.
func (d *Dump) Contains(addr uint32, n int) bool {
	if n < 0 || addr < d.start {
		return false
	}
	return uint64(addr)+uint64(n) <= uint64(d.end)
}

// ReadAddress32 returns the big-endian word at addr, or 0 when it does not
// lie inside the window.
func (d *Dump) ReadAddress32(addr uint32) uint32 {
	return d.ReadAddress(addr, 4)
}

// ReadAddress returns the big-endian value of width n (1, 2 or 4) at addr,
// or 0 when it does not lie inside the window. Other widths read one byte.
func (d *Dump) ReadAddress(addr uint32, n int) uint32 {
	if n != 2 && n != 4 {
		n = 1
	}
	if !d.Contains(addr, n) {
		return 0
	}
	b := d.mem[addr-d.start:]
	switch n {
	case 4:
		return binary.BigEndian.Uint32(b)
	case 2:
		return uint32(binary.BigEndian.Uint16(b))
	default:
		return uint32(b[0])
	}
}

// Slice returns the n bytes at addr. It aliases the dump.
func (d *Dump) Slice(addr uint32, n int) ([]byte, error) {
	if !d.Contains(addr, n) {
		return nil, fmt.Errorf("dump: %d bytes at %08X outside %08X-%08X", n, addr, d.start, d.end)
	}
	off := addr - d.start
	return d.mem[off : off+uint32(n)], nil
}

// WriteTo writes the whole window to w.
func (d *Dump) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(d.mem)
	return int64(n), err
}

// Save writes the whole window to a file at path, replacing it.
func (d *Dump) Save(path string) error {
	return os.WriteFile(path, d.mem, 0o644)
}
