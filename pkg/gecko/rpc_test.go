package gecko

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/tcpgecko/gecko-go/pkg/wire"
)

func TestRPC64(t *testing.T) {
	dev := newFakeDevice(t, reply(0x00, 0x00, 0x00, 0x07, 0x00, 0x00, 0x00, 0x09))
	c := connectedClient(t, dev)

	v, err := c.RPC64(context.Background(), 0x02001000, 1, 2, 3)
	if err != nil {
		t.Fatalf("RPC64 failed: %v", err)
	}
	if v != 0x0000000700000009 {
		t.Errorf("RPC64() = 0x%016X, want 0x0000000700000009", v)
	}

	w := dev.written.Bytes()
	if len(w) != 1+wire.RPCFrameSize {
		t.Fatalf("wrote %d bytes, want %d", len(w), 1+wire.RPCFrameSize)
	}
	if w[0] != 0x70 {
		t.Errorf("opcode = 0x%02X, want 0x70", w[0])
	}
	if got := binary.BigEndian.Uint32(w[1:]); got != 0x02001000 {
		t.Errorf("address = 0x%08X, want 0x02001000", got)
	}
	if got := binary.BigEndian.Uint32(w[1+12:]); got != 3 {
		t.Errorf("third argument = %d, want 3", got)
	}
	if !bytes.Equal(w[1+16:1+20], []byte{0xBA, 0xD0, 0xCA, 0xFE}) {
		t.Errorf("unused slot = % X, want BA D0 CA FE", w[1+16:1+20])
	}
}

func TestRPCUpperHalf(t *testing.T) {
	dev := newFakeDevice(t, reply(0xCA, 0xFE, 0xBA, 0xBE, 0x00, 0x00, 0x00, 0x01))
	c := connectedClient(t, dev)

	v, err := c.RPC(context.Background(), 0x02001000)
	if err != nil {
		t.Fatalf("RPC failed: %v", err)
	}
	if v != 0xCAFEBABE {
		t.Errorf("RPC() = 0x%08X, want 0xCAFEBABE", v)
	}
}

func TestRPCTooManyArguments(t *testing.T) {
	dev := newFakeDevice(t)
	c := connectedClient(t, dev)

	_, err := c.RPC64(context.Background(), 0x02001000, 1, 2, 3, 4, 5, 6, 7, 8, 9)
	if !errors.Is(err, ErrArgument) {
		t.Errorf("RPC64() error = %v, want ARGUMENT", err)
	}
	if dev.written.Len() != 0 {
		t.Errorf("wrote %d bytes for a rejected call", dev.written.Len())
	}
}
