package log

import (
	"time"

	"github.com/tcpgecko/gecko-go/pkg/wire"
)

// MaxFrameData is the number of frame bytes kept in a FrameEvent.
const MaxFrameData = 4096

// Emitter stamps events with a timestamp and connection identity before
// handing them to a Logger. The zero value discards everything.
type Emitter struct {
	Logger       Logger
	ConnectionID string
	RemoteAddr   string

	// Now returns the event timestamp. Defaults to time.Now.
	Now func() time.Time
}

func (e *Emitter) emit(event Event) {
	if e == nil || e.Logger == nil {
		return
	}
	now := time.Now
	if e.Now != nil {
		now = e.Now
	}
	event.Timestamp = now()
	event.ConnectionID = e.ConnectionID
	event.RemoteAddr = e.RemoteAddr
	e.Logger.Log(event)
}

// Frame records raw bytes moved by the transport. n is the number of bytes
// actually transferred out of len(data) requested.
func (e *Emitter) Frame(dir Direction, data []byte, n int) {
	if e == nil || e.Logger == nil {
		return
	}
	if n < 0 {
		n = 0
	}
	if n > len(data) {
		n = len(data)
	}
	f := &FrameEvent{Size: n, Short: n < len(data)}
	kept := data[:n]
	if len(kept) > MaxFrameData {
		kept = kept[:MaxFrameData]
		f.Truncated = true
	}
	f.Data = append([]byte(nil), kept...)
	e.emit(Event{Direction: dir, Layer: LayerTransport, Category: CategoryFrame, Frame: f})
}

// Command records an opcode sent to the target.
func (e *Emitter) Command(op wire.Command, payloadSize int, addr *uint32) {
	e.emit(Event{
		Direction: DirectionOut,
		Layer:     LayerProtocol,
		Category:  CategoryCommand,
		Command:   &CommandEvent{Opcode: op, PayloadSize: payloadSize, Address: addr},
	})
}

// Reply records a single-byte reply to op.
func (e *Emitter) Reply(op wire.Command, reply byte) {
	e.emit(Event{
		Direction: DirectionIn,
		Layer:     LayerProtocol,
		Category:  CategoryCommand,
		Command:   &CommandEvent{Opcode: op, Reply: &reply},
	})
}

// Transfer records chunk progress.
func (e *Emitter) Transfer(dir Direction, t TransferEvent) {
	e.emit(Event{Direction: dir, Layer: LayerProtocol, Category: CategoryTransfer, Transfer: &t})
}

// State records a state transition.
func (e *Emitter) State(entity StateEntity, oldState, newState, reason string) {
	e.emit(Event{
		Direction: DirectionOut,
		Layer:     LayerSession,
		Category:  CategoryState,
		StateChange: &StateChangeEvent{
			Entity:   entity,
			OldState: oldState,
			NewState: newState,
			Reason:   reason,
		},
	})
}

// Error records an error. kind is the error kind name, if any.
func (e *Emitter) Error(layer Layer, err error, kind, context string) {
	if err == nil {
		return
	}
	e.emit(Event{
		Direction: DirectionIn,
		Layer:     layer,
		Category:  CategoryError,
		Error:     &ErrorEventData{Layer: layer, Message: err.Error(), Kind: kind, Context: context},
	})
}
