package log

import (
	"time"

	"github.com/tcpgecko/gecko-go/pkg/wire"
)

// Event represents a protocol log event captured at any layer.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// ConnectionID uniquely identifies the connection (UUID).
	ConnectionID string `cbor:"2,keyasint"`

	// Direction indicates data flow relative to this client.
	Direction Direction `cbor:"3,keyasint"`

	// Layer where the event was captured.
	Layer Layer `cbor:"4,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"5,keyasint"`

	// RemoteAddr is the target address (host:port).
	RemoteAddr string `cbor:"6,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Frame       *FrameEvent       `cbor:"10,keyasint,omitempty"` // Transport layer
	Command     *CommandEvent     `cbor:"11,keyasint,omitempty"` // Protocol layer
	Transfer    *TransferEvent    `cbor:"12,keyasint,omitempty"` // Protocol layer
	StateChange *StateChangeEvent `cbor:"13,keyasint,omitempty"` // Session layer
	Error       *ErrorEventData   `cbor:"14,keyasint,omitempty"` // Errors at any layer
}

// Direction indicates the direction of data flow.
type Direction uint8

const (
	// DirectionIn indicates data received from the target.
	DirectionIn Direction = 0
	// DirectionOut indicates data sent to the target.
	DirectionOut Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// Layer indicates which layer captured the event.
type Layer uint8

const (
	// LayerTransport is the raw byte stream.
	LayerTransport Layer = 0
	// LayerProtocol is the command/transfer layer.
	LayerProtocol Layer = 1
	// LayerSession is the connection lifecycle layer.
	LayerSession Layer = 2
)

// String returns the layer name.
func (l Layer) String() string {
	switch l {
	case LayerTransport:
		return "TRANSPORT"
	case LayerProtocol:
		return "PROTOCOL"
	case LayerSession:
		return "SESSION"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryFrame indicates raw bytes on the wire.
	CategoryFrame Category = 0
	// CategoryCommand indicates an opcode being sent.
	CategoryCommand Category = 1
	// CategoryTransfer indicates bulk transfer progress.
	CategoryTransfer Category = 2
	// CategoryState indicates a state change.
	CategoryState Category = 3
	// CategoryError indicates an error event.
	CategoryError Category = 4
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryFrame:
		return "FRAME"
	case CategoryCommand:
		return "COMMAND"
	case CategoryTransfer:
		return "TRANSFER"
	case CategoryState:
		return "STATE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// FrameEvent captures raw bytes at the transport layer.
type FrameEvent struct {
	// Size is the number of bytes transferred.
	Size int `cbor:"1,keyasint"`

	// Data is the raw bytes (may be truncated for large transfers).
	Data []byte `cbor:"2,keyasint,omitempty"`

	// Truncated indicates if Data was truncated.
	Truncated bool `cbor:"3,keyasint,omitempty"`

	// Short indicates fewer bytes than requested were transferred.
	Short bool `cbor:"4,keyasint,omitempty"`
}

// CommandEvent captures a command sent to the target.
type CommandEvent struct {
	// Opcode is the command byte.
	Opcode wire.Command `cbor:"1,keyasint"`

	// PayloadSize is the size of the fixed payload following the opcode.
	PayloadSize int `cbor:"2,keyasint,omitempty"`

	// Address is the primary target address, if the command has one.
	Address *uint32 `cbor:"3,keyasint,omitempty"`

	// Reply is the single-byte reply, if the command has one.
	Reply *uint8 `cbor:"4,keyasint,omitempty"`
}

// TransferEvent captures chunk progress of a bulk transfer.
type TransferEvent struct {
	// Address is the remote address of the chunk.
	Address uint32 `cbor:"1,keyasint"`

	// Chunk is the zero-based chunk index.
	Chunk uint32 `cbor:"2,keyasint"`

	// Chunks is the total chunk count.
	Chunks uint32 `cbor:"3,keyasint"`

	// Transferred is the number of bytes moved so far.
	Transferred uint32 `cbor:"4,keyasint"`

	// Length is the total transfer length.
	Length uint32 `cbor:"5,keyasint"`

	// Retries is the number of retries spent on this chunk.
	Retries int `cbor:"6,keyasint,omitempty"`
}

// StateChangeEvent captures connection and execution state changes.
type StateChangeEvent struct {
	// Entity being changed.
	Entity StateEntity `cbor:"1,keyasint"`

	// OldState is the previous state (may be empty).
	OldState string `cbor:"2,keyasint,omitempty"`

	// NewState is the new state.
	NewState string `cbor:"3,keyasint"`

	// Reason for the change (if available).
	Reason string `cbor:"4,keyasint,omitempty"`
}

// StateEntity indicates what entity changed state.
type StateEntity uint8

const (
	// StateEntityConnection indicates a connection state change.
	StateEntityConnection StateEntity = 0
	// StateEntityExecution indicates a target execution state change.
	StateEntityExecution StateEntity = 1
	// StateEntityAddressTable indicates the address table was replaced.
	StateEntityAddressTable StateEntity = 2
)

// String returns the state entity name.
func (s StateEntity) String() string {
	switch s {
	case StateEntityConnection:
		return "CONNECTION"
	case StateEntityExecution:
		return "EXECUTION"
	case StateEntityAddressTable:
		return "ADDRESS_TABLE"
	default:
		return "UNKNOWN"
	}
}

// ErrorEventData captures errors at any layer.
type ErrorEventData struct {
	// Layer where the error occurred.
	Layer Layer `cbor:"1,keyasint"`

	// Message is the error message.
	Message string `cbor:"2,keyasint"`

	// Kind is the error kind name (if applicable).
	Kind string `cbor:"3,keyasint,omitempty"`

	// Context describes what operation was being performed.
	Context string `cbor:"4,keyasint,omitempty"`
}
