package memmap

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTable(t *testing.T) {
	tbl := DefaultTable()
	require.Len(t, tbl, 10)
	require.NoError(t, tbl.Validate())

	assert.Equal(t, KindExecutable, tbl[0].Kind)
	assert.Equal(t, uint8(0x01), tbl[0].ID)
	assert.Equal(t, uint8(0x10), tbl[2].ID)
	assert.Equal(t, uint8(0xff), tbl[9].ID)
}

func TestRangeCheck(t *testing.T) {
	v := NewValidator(nil)

	tests := []struct {
		addr uint32
		id   int
		ok   bool
		kind Kind
	}{
		{0x01000000, 0, true, KindExecutable},
		{0x017fffff, 0, true, KindExecutable},
		{0x01800000, -1, false, KindUnknown},
		{0x10000000, 2, true, KindReadWrite},
		{0x4fffffff, 2, true, KindReadWrite},
		{0x50000000, -1, false, KindUnknown},
		{0xe0000000, 3, true, KindReadOnly},
		{0xf6000000, 6, true, KindReadOnly},
		{0xfffffffe, 9, true, KindReadWrite},
		{0xffffffff, -1, false, KindUnknown},
		{0x00000000, -1, false, KindUnknown},
	}

	for _, tt := range tests {
		id, ok := v.RangeCheckID(tt.addr)
		assert.Equal(t, tt.id, id, "id of %08X", tt.addr)
		assert.Equal(t, tt.ok, ok, "ok of %08X", tt.addr)
		assert.Equal(t, tt.kind, v.RangeCheck(tt.addr), "kind of %08X", tt.addr)
		assert.Equal(t, tt.ok, v.ValidAddress(tt.addr), "valid %08X", tt.addr)
	}
}

func TestValidRange(t *testing.T) {
	v := NewValidator(nil)

	assert.True(t, v.ValidRange(0x10000000, 0x10001000))
	assert.True(t, v.ValidRange(0x10000000, 0x50000000))
	assert.False(t, v.ValidRange(0x0e300000, 0x10000010), "spans two ranges")
	assert.False(t, v.ValidRange(0x00000000, 0x00000010), "outside all ranges")
	assert.False(t, v.ValidRange(0x10000010, 0x10000010), "empty")
}

func TestDebugBypassesChecks(t *testing.T) {
	v := NewValidator(nil)
	v.Debug = true

	assert.True(t, v.ValidAddress(0x00000000))
	assert.True(t, v.ValidAddress(0xffffffff))
	assert.True(t, v.ValidRange(0x00000000, 0x20000000))

	end, ok := v.Clamp(0x00000000, 0x20000000)
	assert.True(t, ok)
	assert.Equal(t, uint32(0x20000000), end)
}

func TestClamp(t *testing.T) {
	v := NewValidator(nil)

	end, ok := v.Clamp(0x10000000, 0x10000800)
	assert.True(t, ok)
	assert.Equal(t, uint32(0x10000800), end)

	end, ok = v.Clamp(0x4ffff000, 0x50001000)
	assert.True(t, ok)
	assert.Equal(t, uint32(0x50000000), end, "clamped to region high")

	_, ok = v.Clamp(0x00001000, 0x00002000)
	assert.False(t, ok)
}

func TestClampEndBelowStart(t *testing.T) {
	v := NewValidator(nil)

	end, ok := v.Clamp(0x4FFFFF00, 0x01000000)
	assert.True(t, ok)
	assert.Equal(t, uint32(0x50000000), end, "end in a lower range")

	end, ok = v.Clamp(0xFFFFFFFC, 0x00000000)
	assert.True(t, ok)
	assert.Equal(t, uint32(0xFFFFFFFF), end, "end wrapped past the address space")

	end, ok = v.Clamp(0x10000000, 0x10000000)
	assert.True(t, ok)
	assert.Equal(t, uint32(0x10000000), end, "empty interval")
}

func TestSetTable(t *testing.T) {
	v := NewValidator(nil)

	err := v.SetTable(Table{NewRange(KindReadWrite, 0x10, 0x20), NewRange(KindReadOnly, 0x18, 0x30)})
	assert.ErrorIs(t, err, ErrOverlap)
	assert.Len(t, v.Table(), 10, "table unchanged on error")

	require.NoError(t, v.SetTable(Table{NewRange(KindHardware, 0x0c000000, 0x0d000000)}))
	assert.Equal(t, KindHardware, v.RangeCheck(0x0c000004))
	assert.False(t, v.ValidAddress(0x10000000))
}

func TestTableIsCopied(t *testing.T) {
	src := DefaultTable()
	v := NewValidator(src)
	src[2] = NewRange(KindReadOnly, 0, 1)
	assert.Equal(t, KindReadWrite, v.Range(2).Kind)

	out := v.Table()
	out[2] = NewRange(KindReadOnly, 0, 1)
	assert.Equal(t, KindReadWrite, v.Range(2).Kind)
}

// fakeKernel serves OS version and kernel words from a map.
type fakeKernel struct {
	version uint32
	words   map[uint32]uint32
	failAt  uint32
	reads   []uint32
}

func (f *fakeKernel) OSVersionRequest(context.Context) (uint32, error) {
	return f.version, nil
}

func (f *fakeKernel) PeekKern(_ context.Context, addr uint32) (uint32, error) {
	f.reads = append(f.reads, addr)
	if f.failAt != 0 && addr == f.failAt {
		return 0, errors.New("link down")
	}
	return f.words[addr], nil
}

func kernelWith(version uint32) *fakeKernel {
	const mem, tbl, lst = 0xff000000, 0xff001000, 0xff002000
	return &fakeKernel{
		version: version,
		words: map[uint32]uint32{
			0xffe8619c: mem,
			mem + 4:    tbl,
			tbl + 20:   lst,
			lst + 0x00: 0x01000000, lst + 0x04: 0x00200000,
			lst + 0x10: 0x02000000, lst + 0x14: 0x00800000,
			lst + 0x20: 0x10000000, lst + 0x24: 0x20000000,
		},
	}
}

func TestSetDataUpper(t *testing.T) {
	for _, ver := range []uint32{400, 410} {
		v := NewValidator(nil)
		k := kernelWith(ver)

		updated, err := v.SetDataUpper(context.Background(), k)
		require.NoError(t, err)
		assert.True(t, updated)

		assert.Equal(t, NewRange(KindExecutable, 0x01000000, 0x01200000), v.Range(0))
		assert.Equal(t, NewRange(KindExecutable, 0x02000000, 0x02800000), v.Range(1))
		assert.Equal(t, NewRange(KindReadWrite, 0x10000000, 0x30000000), v.Range(2))
		assert.Equal(t, DefaultTable()[3:], v.Table()[3:])
		assert.Equal(t, uint32(0xffe8619c), k.reads[0])
	}
}

func TestSetDataUpperUnsupportedVersions(t *testing.T) {
	for _, ver := range []uint32{500, 510, 550, 0} {
		v := NewValidator(nil)
		k := kernelWith(ver)

		updated, err := v.SetDataUpper(context.Background(), k)
		require.NoError(t, err)
		assert.False(t, updated, "version %d", ver)
		assert.Empty(t, k.reads, "no kernel reads for version %d", ver)
		assert.Equal(t, DefaultTable(), v.Table())
	}
}

func TestSetDataUpperPeekFailure(t *testing.T) {
	v := NewValidator(nil)
	k := kernelWith(410)
	k.failAt = 0xff001000 + 20

	updated, err := v.SetDataUpper(context.Background(), k)
	require.Error(t, err)
	assert.False(t, updated)
	assert.Equal(t, DefaultTable(), v.Table())
	assert.Len(t, k.reads, 3, "stops reading after the first failure")
}
