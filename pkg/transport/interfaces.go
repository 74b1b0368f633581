package transport

import (
	"context"
	"errors"
)

// Conn is a synchronous byte-stream connection to a target.
// Implemented by TCPConn.
type Conn interface {
	// Connect opens the connection.
	Connect(ctx context.Context) error

	// Read fills p. See the package documentation for short reads.
	Read(p []byte) (int, error)

	// Write sends all of p. See the package documentation for short writes.
	Write(p []byte) (int, error)

	// Close closes the connection. Close is idempotent.
	Close() error
}

// Transport errors.
var (
	// ErrNotConnected indicates an operation on a closed connection.
	ErrNotConnected = errors.New("not connected")

	// ErrAlreadyConnected indicates Connect on an open connection.
	ErrAlreadyConnected = errors.New("already connected")

	// ErrTimeout indicates a transfer was cut short by the I/O deadline.
	ErrTimeout = errors.New("i/o timeout")
)

// IsShort reports whether err describes a recoverable short transfer.
func IsShort(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// Compile-time interface satisfaction check.
var _ Conn = (*TCPConn)(nil)
