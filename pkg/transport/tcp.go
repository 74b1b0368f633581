package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/tcpgecko/gecko-go/pkg/log"
)

// DefaultPort is the port the Gecko server listens on.
const DefaultPort = 7331

// Default timeouts.
const (
	DefaultConnectTimeout = 5 * time.Second
	DefaultIOTimeout      = 5 * time.Second
)

// State is the connection state of a TCPConn.
type State int

const (
	// StateDisconnected indicates no connection.
	StateDisconnected State = iota

	// StateConnected indicates an open connection.
	StateConnected
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "DISCONNECTED"
	case StateConnected:
		return "CONNECTED"
	default:
		return "UNKNOWN"
	}
}

// Config configures a TCPConn.
type Config struct {
	// Address is the target host:port.
	Address string

	// ConnectTimeout bounds Connect when the context has no deadline.
	ConnectTimeout time.Duration

	// IOTimeout is the deadline applied to each Read and Write.
	// Zero disables deadlines.
	IOTimeout time.Duration

	// Events receives frame events for every read and write. Optional.
	Events *log.Emitter
}

// TCPConn is a Conn over TCP.
type TCPConn struct {
	config Config

	mu    sync.Mutex
	conn  net.Conn
	state State
}

// NewTCPConn returns a disconnected TCPConn. Zero ConnectTimeout is
// replaced with DefaultConnectTimeout.
func NewTCPConn(config Config) *TCPConn {
	if config.ConnectTimeout == 0 {
		config.ConnectTimeout = DefaultConnectTimeout
	}
	return &TCPConn{config: config}
}

// Address returns the configured target address.
func (c *TCPConn) Address() string {
	return c.config.Address
}

// State returns the current connection state.
func (c *TCPConn) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Connect dials the target.
func (c *TCPConn) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateConnected {
		return ErrAlreadyConnected
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.ConnectTimeout)
		defer cancel()
	}

	dialer := &net.Dialer{}
	conn, err := dialer.DialContext(ctx, "tcp", c.config.Address)
	if err != nil {
		return fmt.Errorf("dial %s: %w", c.config.Address, err)
	}
	c.conn = conn
	c.state = StateConnected
	return nil
}

// Read fills p, stopping early only on the I/O deadline or an error.
func (c *TCPConn) Read(p []byte) (int, error) {
	conn, err := c.current()
	if err != nil {
		return 0, err
	}
	if c.config.IOTimeout > 0 {
		_ = conn.SetReadDeadline(time.Now().Add(c.config.IOTimeout))
	}

	n, err := io.ReadFull(conn, p)
	c.config.Events.Frame(log.DirectionIn, p, n)
	return n, classify("read", err)
}

// Write sends p, stopping early only on the I/O deadline or an error.
func (c *TCPConn) Write(p []byte) (int, error) {
	conn, err := c.current()
	if err != nil {
		return 0, err
	}
	if c.config.IOTimeout > 0 {
		_ = conn.SetWriteDeadline(time.Now().Add(c.config.IOTimeout))
	}

	n, err := conn.Write(p)
	c.config.Events.Frame(log.DirectionOut, p, n)
	if err == nil && n < len(p) {
		err = io.ErrShortWrite
	}
	return n, classify("write", err)
}

// Close closes the connection. Calling Close on a closed TCPConn is a no-op.
func (c *TCPConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateDisconnected {
		return nil
	}
	c.state = StateDisconnected
	err := c.conn.Close()
	c.conn = nil
	return err
}

func (c *TCPConn) current() (net.Conn, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateConnected {
		return nil, ErrNotConnected
	}
	return c.conn, nil
}

// classify maps deadline errors to ErrTimeout and leaves others as is.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return fmt.Errorf("%s: %w", op, ErrTimeout)
	}
	return fmt.Errorf("%s: %w", op, err)
}
