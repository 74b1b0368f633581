package interactive

import (
	"bytes"
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tcpgecko/gecko-go/pkg/gecko"
	"github.com/tcpgecko/gecko-go/pkg/transport"
	"github.com/tcpgecko/gecko-go/pkg/transport/mocks"
	"github.com/tcpgecko/gecko-go/pkg/wire"
)

func newTestShell(t *testing.T, conn transport.Conn) (*Shell, *bytes.Buffer) {
	t.Helper()
	client := gecko.NewClient(gecko.Config{
		Host: "10.0.0.1",
		Dial: func(transport.Config) transport.Conn { return conn },
	})
	var out bytes.Buffer
	return NewBatch(client, &out), &out
}

// connectedShell returns a shell whose client is connected through conn.
func connectedShell(t *testing.T, conn *mocks.MockConn) (*Shell, *bytes.Buffer) {
	t.Helper()
	conn.EXPECT().Connect(mock.Anything).Return(nil).Once()
	conn.EXPECT().Close().Return(nil).Maybe()

	s, out := newTestShell(t, conn)
	require.True(t, s.Execute(context.Background(), "connect"))
	require.True(t, s.client.Connected(), out.String())
	out.Reset()
	t.Cleanup(s.client.Disconnect)
	return s, out
}

// fill returns a Read handler that copies data into the caller's buffer.
func fill(data []byte) func([]byte) (int, error) {
	return func(p []byte) (int, error) {
		return copy(p, data), nil
	}
}

func TestParseUint32(t *testing.T) {
	tests := []struct {
		in      string
		want    uint32
		wantErr bool
	}{
		{"0x10000000", 0x10000000, false},
		{"42", 42, false},
		{"0xFFFFFFFF", 0xFFFFFFFF, false},
		{"0x100000000", 0, true},
		{"ten", 0, true},
	}
	for _, tt := range tests {
		got, err := parseUint32(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		assert.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestParseBreakpointKind(t *testing.T) {
	for in, want := range map[string]wire.BreakpointKind{
		"r":       wire.BreakpointRead,
		"W":       wire.BreakpointWrite,
		"rw":      wire.BreakpointReadWrite,
		"execute": wire.BreakpointExecute,
	} {
		got, err := parseBreakpointKind(in)
		assert.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := parseBreakpointKind("z")
	assert.Error(t, err)
}

func TestExecuteGeneral(t *testing.T) {
	s, out := newTestShell(t, mocks.NewMockConn(t))
	ctx := context.Background()

	assert.True(t, s.Execute(ctx, ""))
	assert.True(t, s.Execute(ctx, "# comment"))
	assert.Empty(t, out.String())

	assert.True(t, s.Execute(ctx, "frobnicate"))
	assert.Contains(t, out.String(), "Unknown command: frobnicate")

	out.Reset()
	assert.True(t, s.Execute(ctx, "help"))
	assert.Contains(t, out.String(), "TCP Gecko Commands")

	assert.False(t, s.Execute(ctx, "quit"))
	assert.False(t, s.Execute(ctx, "EXIT"))
}

func TestRunCommandReportsFailure(t *testing.T) {
	s, out := newTestShell(t, mocks.NewMockConn(t))
	ctx := context.Background()

	err := s.RunCommand(ctx, "status")
	assert.ErrorIs(t, err, gecko.ErrNotConnected)
	assert.Contains(t, out.String(), "Error: ")

	out.Reset()
	err = s.RunCommand(ctx, "frobnicate")
	assert.Error(t, err)
	assert.Contains(t, out.String(), "Unknown command: frobnicate")

	err = s.RunCommand(ctx, "peek")
	assert.ErrorIs(t, err, errUsage)

	assert.NoError(t, s.RunCommand(ctx, "ranges"))
}

func TestRunCommandSucceeds(t *testing.T) {
	conn := mocks.NewMockConn(t)
	s, out := connectedShell(t, conn)
	conn.EXPECT().Write([]byte{byte(wire.CmdStatus)}).Return(1, nil).Once()
	conn.EXPECT().Read(mock.Anything).RunAndReturn(fill([]byte{0x00})).Once()

	require.NoError(t, s.RunCommand(context.Background(), "status"))
	assert.Contains(t, out.String(), "RUNNING")
}

func TestExecuteRequiresConnection(t *testing.T) {
	s, out := newTestShell(t, mocks.NewMockConn(t))

	s.Execute(context.Background(), "pause")
	assert.Contains(t, out.String(), "NOT_CONNECTED")
}

func TestExecuteUsageErrors(t *testing.T) {
	s, out := newTestShell(t, mocks.NewMockConn(t))
	ctx := context.Background()

	for _, line := range []string{
		"peek",
		"poke 0x10000000",
		"poke 0x10000000 1 64",
		"dump 0x10000000",
		"upload 0x10000000",
		"bp r",
		"regs",
		"rpc",
		"cheats",
		"reconnect zero",
		"hook pause 11",
	} {
		out.Reset()
		s.Execute(ctx, line)
		assert.Contains(t, out.String(), "Error: usage", line)
	}
}

func TestExecuteValueRange(t *testing.T) {
	s, out := newTestShell(t, mocks.NewMockConn(t))

	s.Execute(context.Background(), "poke 0x10000000 0x1FF 8")
	assert.Contains(t, out.String(), "does not fit in 8 bits")

	out.Reset()
	s.Execute(context.Background(), "peek 0x00000010")
	assert.Contains(t, out.String(), "outside the address table")
}

func TestExecuteRanges(t *testing.T) {
	s, out := newTestShell(t, mocks.NewMockConn(t))

	s.Execute(context.Background(), "ranges")
	assert.Contains(t, out.String(), "10000000-50000000")
}

func TestExecuteInfo(t *testing.T) {
	s, out := newTestShell(t, mocks.NewMockConn(t))

	s.Execute(context.Background(), "info")
	assert.Contains(t, out.String(), "10.0.0.1:7331")
	assert.Contains(t, out.String(), "disconnected")
}

func TestExecuteStatus(t *testing.T) {
	conn := mocks.NewMockConn(t)
	s, out := connectedShell(t, conn)

	conn.EXPECT().Write([]byte{byte(wire.CmdStatus)}).Return(1, nil).Once()
	conn.EXPECT().Read(mock.Anything).RunAndReturn(fill([]byte{1})).Once()

	s.Execute(context.Background(), "status")
	assert.Contains(t, out.String(), "Execution: PAUSED")
}

func TestExecuteOSVersion(t *testing.T) {
	conn := mocks.NewMockConn(t)
	s, out := connectedShell(t, conn)

	conn.EXPECT().Write([]byte{byte(wire.CmdOSVersion)}).Return(1, nil).Once()
	conn.EXPECT().Read(mock.Anything).RunAndReturn(fill([]byte{0x00, 0x00, 0x01, 0x9A})).Once()

	s.Execute(context.Background(), "osversion")
	assert.Contains(t, out.String(), "OS: 410")
}

func TestExecuteRPC(t *testing.T) {
	conn := mocks.NewMockConn(t)
	s, out := connectedShell(t, conn)

	frame := wire.EncodeRPC(0x02000000, []uint32{1, 2})
	conn.EXPECT().Write([]byte{byte(wire.CmdRPC)}).Return(1, nil).Once()
	conn.EXPECT().Write(frame[:]).Return(len(frame), nil).Once()

	var reply [8]byte
	binary.BigEndian.PutUint64(reply[:], 0x0000002A00000007)
	conn.EXPECT().Read(mock.Anything).RunAndReturn(fill(reply[:])).Once()

	s.Execute(context.Background(), "rpc 0x02000000 1 2")
	assert.Contains(t, out.String(), "r3=0x0000002A r4=0x00000007")
}

func TestExecuteCheatsMissingFile(t *testing.T) {
	s, out := newTestShell(t, mocks.NewMockConn(t))

	s.Execute(context.Background(), "cheats "+filepath.Join(t.TempDir(), "missing.gct"))
	assert.Contains(t, out.String(), "Error:")
}

func TestExecuteUploadEmptyFile(t *testing.T) {
	s, out := newTestShell(t, mocks.NewMockConn(t))

	path := filepath.Join(t.TempDir(), "empty.bin")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	s.Execute(context.Background(), "upload 0x10000000 "+path)
	assert.Contains(t, out.String(), "does not fit")
}

func TestPrintProgressOnlyWhenComplete(t *testing.T) {
	s, out := newTestShell(t, mocks.NewMockConn(t))

	s.printProgress(gecko.Progress{Address: 0x10000000, Chunk: 0, Chunks: 2, Transferred: 0, Length: 2048})
	assert.Empty(t, out.String())

	s.printProgress(gecko.Progress{Address: 0x10000800, Chunk: 2, Chunks: 2, Transferred: 2048, Length: 2048, Direction: gecko.DirectionDump})
	assert.Contains(t, out.String(), "2048 bytes in 2 chunk(s)")
}
