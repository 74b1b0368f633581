package gecko

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/tcpgecko/gecko-go/pkg/transport"
)

// step is one scripted Read or Write result. For reads, data is what the
// device returns; fewer bytes than requested make the read short. For
// writes, n < 0 means the whole buffer is accepted.
type step struct {
	data []byte
	n    int
	err  error
}

// reply scripts a complete read.
func reply(b ...byte) step {
	return step{data: b}
}

// short scripts a read or write that is cut short by the I/O deadline.
func short(n int) step {
	return step{data: make([]byte, n), n: n, err: fmt.Errorf("read: %w", transport.ErrTimeout)}
}

// broken scripts a fatal I/O error.
func broken() step {
	return step{err: io.ErrUnexpectedEOF}
}

// fakeDevice is a scripted in-memory target.
type fakeDevice struct {
	t *testing.T

	connectErr error
	connects   int
	closes     int

	reads  []step
	writes map[int]step

	writeCalls int
	written    bytes.Buffer
}

func newFakeDevice(t *testing.T, reads ...step) *fakeDevice {
	return &fakeDevice{t: t, reads: reads, writes: map[int]step{}}
}

func (d *fakeDevice) Connect(ctx context.Context) error {
	d.connects++
	return d.connectErr
}

func (d *fakeDevice) Read(p []byte) (int, error) {
	if len(d.reads) == 0 {
		d.t.Logf("fake device: unscripted read of %d bytes", len(p))
		return 0, io.EOF
	}
	s := d.reads[0]
	d.reads = d.reads[1:]
	n := copy(p, s.data)
	if s.err != nil {
		return n, s.err
	}
	if len(s.data) > len(p) {
		d.t.Errorf("fake device: scripted %d bytes for a read of %d", len(s.data), len(p))
	}
	if n < len(p) {
		return n, fmt.Errorf("read: %w", transport.ErrTimeout)
	}
	return n, nil
}

func (d *fakeDevice) Write(p []byte) (int, error) {
	call := d.writeCalls
	d.writeCalls++
	s, ok := d.writes[call]
	if !ok {
		d.written.Write(p)
		return len(p), nil
	}
	if s.err != nil && !transport.IsShort(s.err) {
		return 0, s.err
	}
	d.written.Write(p[:s.n])
	return s.n, s.err
}

func (d *fakeDevice) Close() error {
	d.closes++
	return nil
}

// remaining reports unconsumed scripted reads.
func (d *fakeDevice) remaining() int {
	return len(d.reads)
}

// connectedClient returns a connected client talking to dev.
func connectedClient(t *testing.T, dev *fakeDevice) *Client {
	t.Helper()
	c := NewClient(Config{
		Host: "127.0.0.1",
		Dial: func(transport.Config) transport.Conn { return dev },
	})
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	return c
}

// payload returns n bytes counting up from seed.
func payload(n int, seed byte) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = seed + byte(i)
	}
	return b
}

// expectWritten fails t unless dev received exactly want.
func expectWritten(t *testing.T, dev *fakeDevice, want ...byte) {
	t.Helper()
	if got := dev.written.Bytes(); !bytes.Equal(got, want) {
		t.Errorf("written = % X, want % X", got, want)
	}
}
