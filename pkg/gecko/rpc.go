package gecko

import (
	"context"
	"encoding/binary"

	"github.com/tcpgecko/gecko-go/pkg/wire"
)

// RPC64 calls the function at addr with up to eight arguments and returns
// its 64-bit result.
func (c *Client) RPC64(ctx context.Context, addr uint32, args ...uint32) (uint64, error) {
	if len(args) > wire.RPCArgs {
		return 0, newError(KindArgument, nil, "rpc takes at most %d arguments, got %d", wire.RPCArgs, len(args))
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	frame := wire.EncodeRPC(addr, args)
	if err := c.send(wire.CmdRPC, frame[:], &addr); err != nil {
		return 0, err
	}

	var b [8]byte
	if res, err := c.read(b[:]); res != resultOK {
		return 0, c.fail(newError(KindCommandSend, err, "rpc reply"), "rpc")
	}
	return binary.BigEndian.Uint64(b[:]), nil
}

// RPC is RPC64 truncated to the upper 32 bits of the result.
func (c *Client) RPC(ctx context.Context, addr uint32, args ...uint32) (uint32, error) {
	v, err := c.RPC64(ctx, addr, args...)
	return uint32(v >> 32), err
}
