package gecko

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tcpgecko/gecko-go/pkg/wire"
)

// contextBytes builds a big-endian exception context block.
func contextBytes() []byte {
	b := make([]byte, contextSize)
	for i := 0; i < 32; i++ {
		binary.BigEndian.PutUint32(b[i*4:], uint32(i+1))
	}
	binary.BigEndian.PutUint32(b[0x80:], 0x22000000) // cr
	binary.BigEndian.PutUint32(b[0x84:], 0x02001234) // lr
	binary.BigEndian.PutUint32(b[0x88:], 5)          // ctr
	binary.BigEndian.PutUint32(b[0x8C:], 0x20000000) // xer
	binary.BigEndian.PutUint32(b[0x90:], 0x02004000) // srr0
	binary.BigEndian.PutUint32(b[0x94:], 0x0000B032) // srr1
	for i := 0; i < 32; i++ {
		binary.BigEndian.PutUint64(b[0xB0+i*8:], math.Float64bits(float64(i)+0.5))
	}
	return b
}

func TestGetRegisters(t *testing.T) {
	raw := contextBytes()
	dev := newFakeDevice(t, reply(byte(wire.ChunkNonZero)), reply(raw...))
	c := connectedClient(t, dev)

	regs, err := c.GetRegisters(context.Background(), 0x10000000)
	if err != nil {
		t.Fatalf("GetRegisters failed: %v", err)
	}
	expectWritten(t, dev, 0x04, 0x10, 0x00, 0x00, 0x08, 0x10, 0x00, 0x01, 0xB8)

	want := Registers{
		CR:   0x22000000,
		XER:  0x20000000,
		CTR:  5,
		SRR0: 0x02004000,
		SRR1: 0x0000B032,
		LR:   0x02001234,
	}
	for i := range want.GPR {
		want.GPR[i] = uint32(i + 1)
	}
	for i := range want.FPR {
		want.FPR[i] = float64(i) + 0.5
	}
	if diff := cmp.Diff(want, regs); diff != "" {
		t.Errorf("registers mismatch (-want +got):\n%s", diff)
	}
}

func TestGetRegistersInvalidContext(t *testing.T) {
	dev := newFakeDevice(t)
	c := connectedClient(t, dev)

	if _, err := c.GetRegisters(context.Background(), 0x00000100); !errors.Is(err, ErrArgument) {
		t.Errorf("GetRegisters() error = %v, want ARGUMENT", err)
	}
	expectWritten(t, dev)
}

func TestRegistersStreamLayout(t *testing.T) {
	raw := contextBytes()
	dev := newFakeDevice(t, reply(byte(wire.ChunkNonZero)), reply(raw...))
	c := connectedClient(t, dev)
	regs, err := c.GetRegisters(context.Background(), 0x10000000)
	if err != nil {
		t.Fatalf("GetRegisters failed: %v", err)
	}

	got, err := regs.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary failed: %v", err)
	}

	var want []byte
	want = append(want, raw[0x80:0x84]...)
	want = append(want, raw[0x8C:0x90]...)
	want = append(want, raw[0x88:0x8C]...)
	want = append(want, make([]byte, 8)...)
	want = append(want, raw[0x90:0x98]...)
	want = append(want, raw[0x00:0x80]...)
	want = append(want, raw[0x84:0x88]...)
	want = append(want, raw[0xB0:0x1B0]...)
	if len(got) != registersSize {
		t.Fatalf("stream is %d bytes, want %d", len(got), registersSize)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("register stream = % X, want % X", got, want)
	}

	var back Registers
	if err := back.UnmarshalBinary(got); err != nil {
		t.Fatalf("UnmarshalBinary failed: %v", err)
	}
	if diff := cmp.Diff(regs, back); diff != "" {
		t.Errorf("register stream mismatch (-want +got):\n%s", diff)
	}
}

func TestRegistersUnmarshalPrefix(t *testing.T) {
	stream := make([]byte, registersPrefix)
	binary.BigEndian.PutUint32(stream[0x00:], 0x44000000) // cr
	binary.BigEndian.PutUint32(stream[0x08:], 9)          // ctr
	binary.BigEndian.PutUint32(stream[0x1C:], 0xAABBCCDD) // gpr0
	binary.BigEndian.PutUint32(stream[0x9C:], 0x02000000) // lr

	var r Registers
	if err := r.UnmarshalBinary(stream); err != nil {
		t.Fatalf("UnmarshalBinary failed: %v", err)
	}
	want := Registers{CR: 0x44000000, CTR: 9, LR: 0x02000000}
	want.GPR[0] = 0xAABBCCDD
	if diff := cmp.Diff(want, r); diff != "" {
		t.Errorf("registers mismatch (-want +got):\n%s", diff)
	}

	if err := r.UnmarshalBinary(stream[:registersPrefix-1]); !errors.Is(err, ErrRegisterStreamSize) {
		t.Errorf("UnmarshalBinary() error = %v, want REGISTER_STREAM_SIZE", err)
	}
}

func TestSendRegisters(t *testing.T) {
	dev := newFakeDevice(t, reply(byte(wire.ReplyACK)))
	c := connectedClient(t, dev)

	var r Registers
	for i := range r.GPR {
		r.GPR[i] = uint32(0x100 + i)
	}
	r.CR, r.LR, r.CTR, r.XER, r.SRR0, r.SRR1 = 1, 2, 3, 4, 5, 6
	r.DSISR, r.DAR = 0xFFFFFFFF, 0xFFFFFFFF
	r.FPR[0] = 2.5

	if err := c.SendRegisters(context.Background(), 0x10000000, r); err != nil {
		t.Fatalf("SendRegisters failed: %v", err)
	}

	w := dev.written.Bytes()
	if header := []byte{0x41, 0x10, 0x00, 0x00, 0x08, 0x10, 0x00, 0x00, 0xA0}; !bytes.Equal(w[:9], header) {
		t.Errorf("upload header = % X, want % X", w[:9], header)
	}
	body := w[9:]
	if len(body) != registerUpload {
		t.Fatalf("uploaded %d bytes, want %d", len(body), registerUpload)
	}
	for i := 0; i < 32; i++ {
		if got := binary.BigEndian.Uint32(body[i*4:]); got != uint32(0x100+i) {
			t.Errorf("gpr%d = 0x%X, want 0x%X", i, got, 0x100+i)
		}
	}
	for i, want := range []uint32{1, 2, 3, 4, 5, 6} {
		if got := binary.BigEndian.Uint32(body[0x80+i*4:]); got != want {
			t.Errorf("special register %d = %d, want %d", i, got, want)
		}
	}
}
