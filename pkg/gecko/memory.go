package gecko

import (
	"context"
	"encoding/binary"
	"math"

	"github.com/tcpgecko/gecko-go/pkg/dump"
	"github.com/tcpgecko/gecko-go/pkg/memmap"
	"github.com/tcpgecko/gecko-go/pkg/wire"
)

// Compile-time interface satisfaction check.
var _ memmap.KernelPeeker = (*Client)(nil)

// Poke writes a 32-bit value. The address is aligned down to 4 bytes.
// No read-back is performed.
func (c *Client) Poke(ctx context.Context, addr, value uint32) error {
	return c.poke(ctx, wire.CmdPokeMem, wire.AlignDown(addr, 4), value)
}

// Poke32 is Poke.
func (c *Client) Poke32(ctx context.Context, addr, value uint32) error {
	return c.Poke(ctx, addr, value)
}

// Poke16 writes a 16-bit value. The address is aligned down to 2 bytes.
func (c *Client) Poke16(ctx context.Context, addr uint32, value uint16) error {
	return c.poke(ctx, wire.CmdPoke16, wire.AlignDown(addr, 2), uint32(value))
}

// Poke08 writes an 8-bit value.
func (c *Client) Poke08(ctx context.Context, addr uint32, value uint8) error {
	return c.poke(ctx, wire.CmdPoke08, addr, uint32(value))
}

func (c *Client) poke(ctx context.Context, op wire.Command, addr, value uint32) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	pair := wire.PutPair(addr, value)
	return c.send(op, pair[:], &addr)
}

// Peek reads the 32-bit value at addr, aligned down to 4 bytes. It returns
// 0 without any I/O when addr is not a valid address. The read is clamped
// to the range holding addr; bytes past the range read as zero. Progress
// callbacks are not invoked.
func (c *Client) Peek(ctx context.Context, addr uint32) (uint32, error) {
	if !c.validator.ValidAddress(addr) {
		return 0, nil
	}
	addr = wire.AlignDown(addr, 4)
	end, ok := c.validator.Clamp(addr, addr+4)
	if !ok {
		return 0, nil
	}
	if end < addr {
		end = math.MaxUint32
	}
	d := dump.New(addr, end)
	if err := c.dump(ctx, addr, end, d, false); err != nil {
		return 0, err
	}
	var word [4]byte
	copy(word[:], d.Bytes())
	return binary.BigEndian.Uint32(word[:]), nil
}

// PokeKern writes a 32-bit value to privileged memory. The address is not
// validated.
func (c *Client) PokeKern(ctx context.Context, addr, value uint32) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	pair := wire.PutPair(addr, value)
	return c.send(wire.CmdWriteKern, pair[:], &addr)
}

// PeekKern reads a 32-bit value from privileged memory. The address is not
// validated.
func (c *Client) PeekKern(ctx context.Context, addr uint32) (uint32, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	b := wire.PutUint32(addr)
	if err := c.send(wire.CmdReadKern, b[:], &addr); err != nil {
		return 0, err
	}
	return c.readUint32(wire.CmdReadKern)
}

// OSVersionRequest returns the target OS version, e.g. 410.
func (c *Client) OSVersionRequest(ctx context.Context) (uint32, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := c.send(wire.CmdOSVersion, nil, nil); err != nil {
		return 0, err
	}
	return c.readUint32(wire.CmdOSVersion)
}

// readUint32 reads a 4-byte big-endian reply to op.
func (c *Client) readUint32(op wire.Command) (uint32, error) {
	var b [4]byte
	if res, err := c.read(b[:]); res != resultOK {
		return 0, c.fail(newError(KindCommandSend, err, "%s reply", op), "command")
	}
	return binary.BigEndian.Uint32(b[:]), nil
}
