package gecko

import (
	"bytes"
	"context"
	"encoding/binary"

	"github.com/tcpgecko/gecko-go/pkg/dump"
	"github.com/tcpgecko/gecko-go/pkg/structenc"
)

// Exception context geometry. The register block starts 8 bytes into the
// context.
const (
	contextOffset   = 8
	contextSize     = 0x1B0
	registerUpload  = 0x98
	registersSize   = 0x1A0
	registersPrefix = 0xA0
)

// exceptionContext is the register block of the target's exception context.
type exceptionContext struct {
	GPR  [32]uint32
	CR   uint32
	LR   uint32
	CTR  uint32
	XER  uint32
	SRR0 uint32
	SRR1 uint32
	_    [0x18]byte
	FPR  [32]float64
}

var contextLayout = &structenc.Layout{
	Name: "exception_context",
	Size: contextSize,
	Fields: []structenc.Field{
		structenc.Array("gpr", 0x00, 4, 32),
		structenc.Scalar("cr", 0x80, 4),
		structenc.Scalar("lr", 0x84, 4),
		structenc.Scalar("ctr", 0x88, 4),
		structenc.Scalar("xer", 0x8C, 4),
		structenc.Scalar("srr0", 0x90, 4),
		structenc.Scalar("srr1", 0x94, 4),
		structenc.Array("fpr", 0xB0, 8, 32),
	},
}

// contextUpdate is the part of the exception context written back by
// SendRegisters.
type contextUpdate struct {
	GPR  [32]uint32
	CR   uint32
	LR   uint32
	CTR  uint32
	XER  uint32
	SRR0 uint32
	SRR1 uint32
}

var updateLayout = &structenc.Layout{
	Name: "context_update",
	Size: registerUpload,
	Fields: []structenc.Field{
		structenc.Array("gpr", 0x00, 4, 32),
		structenc.Array("special", 0x80, 4, 6),
	},
}

// Registers is the register stream exchanged with callers: CR, XER, CTR,
// DSISR, DAR, SRR0, SRR1, GPR0-31, LR, FPR0-31, all big-endian.
type Registers struct {
	CR    uint32
	XER   uint32
	CTR   uint32
	DSISR uint32
	DAR   uint32
	SRR0  uint32
	SRR1  uint32
	GPR   [32]uint32
	LR    uint32
	FPR   [32]float64
}

var registersLayout = &structenc.Layout{
	Name: "registers",
	Size: registersSize,
	Fields: []structenc.Field{
		structenc.Array("special", 0x00, 4, 7),
		structenc.Array("gpr", 0x1C, 4, 32),
		structenc.Scalar("lr", 0x9C, 4),
		structenc.Array("fpr", 0xA0, 8, 32),
	},
}

func init() {
	structenc.MustRegister[exceptionContext](contextLayout)
	structenc.MustRegister[contextUpdate](updateLayout)
	structenc.MustRegister[Registers](registersLayout)
}

// MarshalBinary returns the 0x1A0-byte register stream.
func (r Registers) MarshalBinary() ([]byte, error) {
	return structenc.Marshal(r, binary.BigEndian)
}

// UnmarshalBinary decodes a register stream. Streams of at least 0xA0
// bytes are accepted; floating-point registers missing from a short stream
// are zeroed.
func (r *Registers) UnmarshalBinary(data []byte) error {
	if len(data) < registersPrefix {
		return newError(KindRegisterStreamSize, nil, "register stream is %d bytes, need at least %d", len(data), registersPrefix)
	}
	buf := make([]byte, registersSize)
	copy(buf, data)
	v, err := structenc.Unmarshal[Registers](buf, binary.BigEndian)
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// GetRegisters reads the registers saved in the exception context at
// contextAddr.
func (c *Client) GetRegisters(ctx context.Context, contextAddr uint32) (Registers, error) {
	start := contextAddr + contextOffset
	if !c.validator.ValidAddress(start) {
		return Registers{}, newError(KindArgument, nil, "context address 0x%08X is not valid", contextAddr)
	}

	d := dump.New(start, start+contextSize)
	if err := c.dump(ctx, start, start+contextSize, d, true); err != nil {
		return Registers{}, err
	}
	ec, err := structenc.Unmarshal[exceptionContext](d.Bytes(), binary.BigEndian)
	if err != nil {
		return Registers{}, err
	}

	return Registers{
		CR:   ec.CR,
		XER:  ec.XER,
		CTR:  ec.CTR,
		SRR0: ec.SRR0,
		SRR1: ec.SRR1,
		GPR:  ec.GPR,
		LR:   ec.LR,
		FPR:  ec.FPR,
	}, nil
}

// SendRegisters writes the integer registers of r into the exception
// context at contextAddr. DSISR, DAR and the floating-point registers are
// not sent.
func (c *Client) SendRegisters(ctx context.Context, contextAddr uint32, r Registers) error {
	b, err := structenc.Marshal(contextUpdate{
		GPR:  r.GPR,
		CR:   r.CR,
		LR:   r.LR,
		CTR:  r.CTR,
		XER:  r.XER,
		SRR0: r.SRR0,
		SRR1: r.SRR1,
	}, binary.BigEndian)
	if err != nil {
		return err
	}
	start := contextAddr + contextOffset
	return c.Upload(ctx, start, start+registerUpload, bytes.NewReader(b))
}
