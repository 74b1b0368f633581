package wire

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPackUnpack(t *testing.T) {
	w := Pack(0x10000000, 0x00000001)
	assert.Equal(t, uint64(0x1000000000000001), w)

	hi, lo := Unpack(w)
	assert.Equal(t, uint32(0x10000000), hi)
	assert.Equal(t, uint32(0x00000001), lo)
}

func TestPutPairIsBigEndian(t *testing.T) {
	b := PutPair(0x10000010, 0xCAFEBABE)
	assert.Equal(t, [8]byte{0x10, 0x00, 0x00, 0x10, 0xCA, 0xFE, 0xBA, 0xBE}, b)

	// Decoding on any host recovers both halves.
	hi, lo := Unpack(binary.BigEndian.Uint64(b[:]))
	assert.Equal(t, uint32(0x10000010), hi)
	assert.Equal(t, uint32(0xCAFEBABE), lo)
}

func TestAlignDown(t *testing.T) {
	assert.Equal(t, uint32(0x10000010), AlignDown(uint32(0x10000013), 4))
	assert.Equal(t, uint32(0x10000012), AlignDown(uint32(0x10000013), 2))
	assert.Equal(t, uint32(0x10000013), AlignDown(uint32(0x10000013), 1))
	assert.Equal(t, uint32(0x10000010), AlignDown(uint32(0x10000017), 8))
}

func TestChunks(t *testing.T) {
	tests := []struct {
		length uint32
		full   uint32
		last   uint32
		total  uint32
	}{
		{0, 0, 0, 0},
		{4, 0, 4, 1},
		{PacketSize, 1, 0, 1},
		{PacketSize + 1, 1, 1, 2},
		{2 * PacketSize, 2, 0, 2},
		{0x1B0, 0, 0x1B0, 1},
	}

	for _, tt := range tests {
		full, last, total := Chunks(tt.length)
		assert.Equal(t, tt.full, full, "full chunks for %d", tt.length)
		assert.Equal(t, tt.last, last, "last chunk for %d", tt.length)
		assert.Equal(t, tt.total, total, "total chunks for %d", tt.length)
		assert.Equal(t, (tt.length+PacketSize-1)/PacketSize, total)
	}
}

func TestValidCheatTerminator(t *testing.T) {
	assert.True(t, ValidCheatTerminator(0xF000000000000000))
	assert.True(t, ValidCheatTerminator(0xF100000000000000))
	assert.True(t, ValidCheatTerminator(0xFE00000000000000))
	assert.True(t, ValidCheatTerminator(0xFF00000012345678))
	assert.False(t, ValidCheatTerminator(0x0000000000000000))
	assert.False(t, ValidCheatTerminator(CheatMarker))
}

func TestEncodeRPC(t *testing.T) {
	b := EncodeRPC(0x02000000, []uint32{1, 2})

	assert.Equal(t, uint32(0x02000000), binary.BigEndian.Uint32(b[0:]))
	assert.Equal(t, uint32(1), binary.BigEndian.Uint32(b[4:]))
	assert.Equal(t, uint32(2), binary.BigEndian.Uint32(b[8:]))
	for i := 2; i < RPCArgs; i++ {
		assert.Equal(t, RPCUnusedArg, binary.BigEndian.Uint32(b[4+i*4:]), "slot %d", i)
	}
	assert.Equal(t, []byte{0xBA, 0xD0, 0xCA, 0xFE}, b[12:16])
}

func TestParseExecState(t *testing.T) {
	assert.Equal(t, ExecRunning, ParseExecState(0))
	assert.Equal(t, ExecPaused, ParseExecState(1))
	assert.Equal(t, ExecBreakpoint, ParseExecState(2))
	assert.Equal(t, ExecLoader, ParseExecState(3))
	assert.Equal(t, ExecUnknown, ParseExecState(4))
	assert.Equal(t, ExecUnknown, ParseExecState(0xFF))
	assert.Equal(t, "UNKNOWN", ExecUnknown.String())
}

func TestServerVersion(t *testing.T) {
	assert.True(t, VersionWiiU.Allowed())
	assert.False(t, VersionWii.Allowed())
	assert.False(t, VersionUnknown.Allowed())
	assert.False(t, VersionNGC.ExactBreakpoints())
	assert.True(t, VersionWiiU.ExactBreakpoints())
}

func TestLanguageByte(t *testing.T) {
	assert.Equal(t, NoLanguageOverride, LanguageNoOverride.Byte())
	assert.Equal(t, byte(0), LanguageJapanese.Byte())
	assert.Equal(t, byte(9), LanguageKorean.Byte())
}

func TestCommandString(t *testing.T) {
	assert.Equal(t, "READMEM", CmdReadMem.String())
	assert.Equal(t, "0x45", Command(0x45).String())
}

func TestParseCommand(t *testing.T) {
	c, err := ParseCommand("status")
	assert.NoError(t, err)
	assert.Equal(t, CmdStatus, c)

	c, err = ParseCommand("0x43")
	assert.NoError(t, err)
	assert.Equal(t, CmdHookPause, c)

	_, err = ParseCommand("bogus")
	assert.Error(t, err)
}
