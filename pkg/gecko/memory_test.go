package gecko

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tcpgecko/gecko-go/pkg/memmap"
	"github.com/tcpgecko/gecko-go/pkg/transport"
	"github.com/tcpgecko/gecko-go/pkg/wire"
)

func TestPoke(t *testing.T) {
	tests := []struct {
		name string
		poke func(c *Client) error
		want []byte
	}{
		{
			name: "Poke",
			poke: func(c *Client) error { return c.Poke(context.Background(), 0x10000010, 0xCAFEBABE) },
			want: []byte{0x03, 0x10, 0x00, 0x00, 0x10, 0xCA, 0xFE, 0xBA, 0xBE},
		},
		{
			name: "PokeAligns",
			poke: func(c *Client) error { return c.Poke32(context.Background(), 0x10000013, 1) },
			want: []byte{0x03, 0x10, 0x00, 0x00, 0x10, 0x00, 0x00, 0x00, 0x01},
		},
		{
			name: "Poke16",
			poke: func(c *Client) error { return c.Poke16(context.Background(), 0x10000013, 0xBEEF) },
			want: []byte{0x02, 0x10, 0x00, 0x00, 0x12, 0x00, 0x00, 0xBE, 0xEF},
		},
		{
			name: "Poke08",
			poke: func(c *Client) error { return c.Poke08(context.Background(), 0x10000013, 0x7F) },
			want: []byte{0x01, 0x10, 0x00, 0x00, 0x13, 0x00, 0x00, 0x00, 0x7F},
		},
		{
			name: "PokeKern",
			poke: func(c *Client) error { return c.PokeKern(context.Background(), 0xFFE86000, 0x12345678) },
			want: []byte{0x0B, 0xFF, 0xE8, 0x60, 0x00, 0x12, 0x34, 0x56, 0x78},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := newFakeDevice(t)
			c := connectedClient(t, dev)
			if err := tt.poke(c); err != nil {
				t.Fatalf("%s failed: %v", tt.name, err)
			}
			expectWritten(t, dev, tt.want...)
		})
	}
}

func TestPeek(t *testing.T) {
	dev := newFakeDevice(t, reply(byte(wire.ChunkNonZero)), reply(0x00, 0x00, 0x00, 0x2A))
	c := connectedClient(t, dev)
	progress := recordProgress(c)

	v, err := c.Peek(context.Background(), 0x10000102)
	if err != nil {
		t.Fatalf("Peek failed: %v", err)
	}
	if v != 42 {
		t.Errorf("Peek() = %d, want 42", v)
	}
	if len(*progress) != 0 {
		t.Errorf("Peek reported %d progress notifications", len(*progress))
	}
	expectWritten(t, dev, 0x04, 0x10, 0x00, 0x01, 0x00, 0x10, 0x00, 0x01, 0x04)
}

func TestPeekLastWordOfAddressSpace(t *testing.T) {
	dev := newFakeDevice(t, reply(byte(wire.ChunkNonZero)), reply(0x12, 0x34, 0x56))
	c := connectedClient(t, dev)

	v, err := c.Peek(context.Background(), 0xFFFFFFFC)
	if err != nil {
		t.Fatalf("Peek failed: %v", err)
	}
	if v != 0x12345600 {
		t.Errorf("Peek() = 0x%08X, want 0x12345600", v)
	}
	expectWritten(t, dev, 0x04, 0xFF, 0xFF, 0xFF, 0xFC, 0xFF, 0xFF, 0xFF, 0xFF)
}

func TestPeekLastWordDebug(t *testing.T) {
	dev := newFakeDevice(t, reply(byte(wire.ChunkNonZero)), reply(0xAA, 0xBB, 0xCC))
	v := memmap.NewValidator(nil)
	v.Debug = true
	c := NewClient(Config{Host: "10.0.0.1", Validator: v, Dial: func(transport.Config) transport.Conn { return dev }})
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	got, err := c.Peek(context.Background(), 0xFFFFFFFF)
	if err != nil {
		t.Fatalf("Peek failed: %v", err)
	}
	if got != 0xAABBCC00 {
		t.Errorf("Peek() = 0x%08X, want 0xAABBCC00", got)
	}
}

func TestPeekInvalidAddress(t *testing.T) {
	dev := newFakeDevice(t)
	c := connectedClient(t, dev)

	v, err := c.Peek(context.Background(), 0x00000010)
	if err != nil {
		t.Fatalf("Peek failed: %v", err)
	}
	if v != 0 {
		t.Errorf("Peek() = %d, want 0", v)
	}
	expectWritten(t, dev)
}

func TestPeekKern(t *testing.T) {
	dev := newFakeDevice(t, reply(0xDE, 0xAD, 0xBE, 0xEF))
	c := connectedClient(t, dev)

	v, err := c.PeekKern(context.Background(), 0xFFE8619C)
	if err != nil {
		t.Fatalf("PeekKern failed: %v", err)
	}
	if v != 0xDEADBEEF {
		t.Errorf("PeekKern() = 0x%08X, want 0xDEADBEEF", v)
	}
	expectWritten(t, dev, 0x0C, 0xFF, 0xE8, 0x61, 0x9C)
}

func TestPeekKernShortReply(t *testing.T) {
	dev := newFakeDevice(t, short(2))
	c := connectedClient(t, dev)

	if _, err := c.PeekKern(context.Background(), 0xFFE8619C); !errors.Is(err, ErrCommandSend) {
		t.Errorf("PeekKern() error = %v, want COMMAND_SEND", err)
	}
}

func TestOSVersionRequest(t *testing.T) {
	dev := newFakeDevice(t, reply(0x00, 0x00, 0x01, 0x9A))
	c := connectedClient(t, dev)

	v, err := c.OSVersionRequest(context.Background())
	if err != nil {
		t.Fatalf("OSVersionRequest failed: %v", err)
	}
	if v != 410 {
		t.Errorf("OSVersionRequest() = %d, want 410", v)
	}
	expectWritten(t, dev, 0x9A)
}

func TestSetDataUpperThroughClient(t *testing.T) {
	dev := newFakeDevice(t, reply(0x00, 0x00, 0x01, 0xF4))
	c := connectedClient(t, dev)

	updated, err := c.Validator().SetDataUpper(context.Background(), c)
	if err != nil {
		t.Fatalf("SetDataUpper failed: %v", err)
	}
	if updated {
		t.Error("SetDataUpper updated the table for OS 500")
	}
	if diff := cmp.Diff(memmap.DefaultTable(), c.Validator().Table()); diff != "" {
		t.Errorf("table changed (-want +got):\n%s", diff)
	}
}
