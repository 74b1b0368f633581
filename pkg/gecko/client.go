package gecko

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/tcpgecko/gecko-go/pkg/connection"
	"github.com/tcpgecko/gecko-go/pkg/log"
	"github.com/tcpgecko/gecko-go/pkg/memmap"
	"github.com/tcpgecko/gecko-go/pkg/transport"
	"github.com/tcpgecko/gecko-go/pkg/wire"
)

// Default client settings.
const (
	// DefaultSettleDelay is the pause after dialling before the first command.
	DefaultSettleDelay = 150 * time.Millisecond

	// DefaultPauseInterval is the delay between SafePause attempts.
	DefaultPauseInterval = 100 * time.Millisecond

	// DefaultSafePauseAttempts bounds SafePause.
	DefaultSafePauseAttempts = 50
)

// DialFunc creates a transport for a target address.
type DialFunc func(cfg transport.Config) transport.Conn

// Config configures a Client.
type Config struct {
	// Host is the target host name or IP address.
	Host string

	// Port is the target port. Zero selects transport.DefaultPort.
	Port int

	// ConnectTimeout bounds Connect when the context has no deadline.
	ConnectTimeout time.Duration

	// IOTimeout is the deadline for each read and write. A read or write
	// cut short by it counts as a short transfer.
	IOTimeout time.Duration

	// SettleDelay is slept after dialling.
	SettleDelay time.Duration

	// PauseInterval is slept between SafePause attempts.
	PauseInterval time.Duration

	// SafePauseAttempts bounds SafePause. Zero means no bound.
	SafePauseAttempts int

	// Validator checks addresses. Nil selects the default table.
	Validator *memmap.Validator

	// Logger receives protocol events. Optional.
	Logger log.Logger

	// Dial creates the transport. Nil selects transport.NewTCPConn.
	Dial DialFunc
}

// DefaultConfig returns a Config for host with the default timings.
func DefaultConfig(host string) Config {
	return Config{
		Host:              host,
		Port:              transport.DefaultPort,
		ConnectTimeout:    transport.DefaultConnectTimeout,
		IOTimeout:         transport.DefaultIOTimeout,
		SettleDelay:       DefaultSettleDelay,
		PauseInterval:     DefaultPauseInterval,
		SafePauseAttempts: DefaultSafePauseAttempts,
	}
}

// Client is a synchronous connection to a Gecko server. Only one command
// may be in flight at a time; a Client must not be used from several
// goroutines at once.
type Client struct {
	config    Config
	validator *memmap.Validator
	events    *log.Emitter

	conn      transport.Conn
	connected bool

	progress  ProgressFunc
	execState wire.ExecState
}

// NewClient returns a disconnected client.
func NewClient(config Config) *Client {
	if config.Port == 0 {
		config.Port = transport.DefaultPort
	}
	if config.Dial == nil {
		config.Dial = func(cfg transport.Config) transport.Conn {
			return transport.NewTCPConn(cfg)
		}
	}
	v := config.Validator
	if v == nil {
		v = memmap.NewValidator(nil)
	}
	return &Client{
		config:    config,
		validator: v,
		events:    &log.Emitter{Logger: config.Logger},
		execState: wire.ExecUnknown,
	}
}

// Host returns the target host.
func (c *Client) Host() string {
	return c.config.Host
}

// Port returns the target port.
func (c *Client) Port() int {
	return c.config.Port
}

// Address returns the target host:port.
func (c *Client) Address() string {
	return net.JoinHostPort(c.config.Host, strconv.Itoa(c.config.Port))
}

// SetHost changes the target host. It fails while connected.
func (c *Client) SetHost(host string) error {
	if c.connected {
		return newError(KindArgument, nil, "cannot change host while connected")
	}
	c.config.Host = host
	return nil
}

// Validator returns the address validator used by the client.
func (c *Client) Validator() *memmap.Validator {
	return c.validator
}

// Connected reports whether the client holds an open connection.
func (c *Client) Connected() bool {
	return c.connected
}

// ConnectionID returns the identifier of the current or last connection.
func (c *Client) ConnectionID() string {
	return c.events.ConnectionID
}

// Connect dials the target. An open connection is closed first.
func (c *Client) Connect(ctx context.Context) error {
	c.Disconnect()

	c.events.ConnectionID = uuid.NewString()
	c.events.RemoteAddr = c.Address()
	c.conn = c.config.Dial(transport.Config{
		Address:        c.Address(),
		ConnectTimeout: c.config.ConnectTimeout,
		IOTimeout:      c.config.IOTimeout,
		Events:         c.events,
	})

	if err := c.conn.Connect(ctx); err != nil {
		c.Disconnect()
		return c.fail(newError(KindDeviceNotFound, err, "connect %s", c.Address()), "connect")
	}
	if err := sleep(ctx, c.config.SettleDelay); err != nil {
		c.Disconnect()
		return err
	}

	c.connected = true
	c.execState = wire.ExecUnknown
	c.events.State(log.StateEntityConnection, transport.StateDisconnected.String(), transport.StateConnected.String(), "")
	return nil
}

// Disconnect closes the connection. It is idempotent.
func (c *Client) Disconnect() {
	c.disconnect("")
}

func (c *Client) disconnect(reason string) {
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
	if c.connected {
		c.connected = false
		c.events.State(log.StateEntityConnection, transport.StateConnected.String(), transport.StateDisconnected.String(), reason)
	}
}

// Reconnect disconnects and connects again, reporting success.
func (c *Client) Reconnect(ctx context.Context) bool {
	c.Disconnect()
	return c.Connect(ctx) == nil
}

// ReconnectWithBackoff reconnects, retrying up to attempts times with
// exponential backoff between tries.
func (c *Client) ReconnectWithBackoff(ctx context.Context, attempts int, b *connection.Backoff) error {
	err := connection.Retry(ctx, b, attempts, func(ctx context.Context) error {
		return c.Connect(ctx)
	})
	if err != nil {
		return c.fail(newError(KindResetFailed, err, "reconnect %s", c.Address()), "reconnect")
	}
	return nil
}

// RawCommand sends a single opcode byte.
func (c *Client) RawCommand(op wire.Command) error {
	return c.send(op, nil, nil)
}

// SendFail writes the FAIL sentinel. Errors are ignored.
func (c *Client) SendFail() {
	if !c.connected {
		return
	}
	b := [1]byte{byte(wire.ReplyFail)}
	_, _ = c.write(b[:])
}

// send writes op and its fixed payload. addr is logged when non-nil.
func (c *Client) send(op wire.Command, payload []byte, addr *uint32) error {
	if !c.connected {
		return c.fail(newError(KindNotConnected, nil, "%s", op), "command")
	}
	c.events.Command(op, len(payload), addr)
	b := [1]byte{byte(op)}
	if res, err := c.write(b[:]); res != resultOK {
		return c.fail(newError(KindCommandSend, err, "%s", op), "command")
	}
	if len(payload) == 0 {
		return nil
	}
	if res, err := c.write(payload); res != resultOK {
		return c.fail(newError(KindCommandSend, err, "%s payload", op), "command")
	}
	return nil
}

// result classifies a single read or write.
type result uint8

const (
	resultOK result = iota
	// resultShort is a transfer cut short; the caller may retry.
	resultShort
	// resultFatal is an I/O failure; the client has disconnected.
	resultFatal
)

func (c *Client) read(p []byte) (result, error) {
	if c.conn == nil {
		return resultFatal, transport.ErrNotConnected
	}
	n, err := c.conn.Read(p)
	return c.classify(n, len(p), err)
}

func (c *Client) write(p []byte) (result, error) {
	if c.conn == nil {
		return resultFatal, transport.ErrNotConnected
	}
	n, err := c.conn.Write(p)
	return c.classify(n, len(p), err)
}

func (c *Client) classify(n, want int, err error) (result, error) {
	switch {
	case err == nil && n == want:
		return resultOK, nil
	case err == nil:
		return resultShort, fmt.Errorf("short transfer: %d of %d bytes", n, want)
	case transport.IsShort(err):
		return resultShort, err
	default:
		c.disconnect(err.Error())
		return resultFatal, err
	}
}

// fail logs err as a protocol error event and returns it.
func (c *Client) fail(err *Error, op string) error {
	c.events.Error(log.LayerProtocol, err, err.Kind.String(), op)
	return err
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
