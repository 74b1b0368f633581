package gecko

import (
	"fmt"
)

// ErrorKind classifies a protocol failure.
type ErrorKind uint8

const (
	// KindDeviceNotFound indicates the target could not be reached.
	KindDeviceNotFound ErrorKind = iota + 1

	// KindResetFailed indicates the connection could not be reset.
	KindResetFailed

	// KindCommandSend indicates an opcode or its payload could not be sent.
	KindCommandSend

	// KindReadData indicates a reply could not be read.
	KindReadData

	// KindInvalidReply indicates an unexpected reply byte.
	KindInvalidReply

	// KindTooManyRetries indicates the retry budget was exhausted.
	KindTooManyRetries

	// KindRegisterStreamSize indicates a register stream of the wrong size.
	KindRegisterStreamSize

	// KindCheatStreamSize indicates a cheat blob whose length is not a
	// multiple of 8.
	KindCheatStreamSize

	// KindNotConnected indicates a command on a disconnected client.
	KindNotConnected

	// KindArgument indicates an invalid caller argument.
	KindArgument
)

// String returns the kind name.
func (k ErrorKind) String() string {
	switch k {
	case KindDeviceNotFound:
		return "DEVICE_NOT_FOUND"
	case KindResetFailed:
		return "RESET_FAILED"
	case KindCommandSend:
		return "COMMAND_SEND"
	case KindReadData:
		return "READ_DATA"
	case KindInvalidReply:
		return "INVALID_REPLY"
	case KindTooManyRetries:
		return "TOO_MANY_RETRIES"
	case KindRegisterStreamSize:
		return "REGISTER_STREAM_SIZE"
	case KindCheatStreamSize:
		return "CHEAT_STREAM_SIZE"
	case KindNotConnected:
		return "NOT_CONNECTED"
	case KindArgument:
		return "ARGUMENT"
	default:
		return "UNKNOWN"
	}
}

// Error is returned by every Client operation that fails at the protocol
// level. Errors match each other under errors.Is when their kinds match.
type Error struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	s := "gecko: " + e.Kind.String()
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Sentinels for use with errors.Is.
var (
	ErrDeviceNotFound     = &Error{Kind: KindDeviceNotFound}
	ErrResetFailed        = &Error{Kind: KindResetFailed}
	ErrCommandSend        = &Error{Kind: KindCommandSend}
	ErrReadData           = &Error{Kind: KindReadData}
	ErrInvalidReply       = &Error{Kind: KindInvalidReply}
	ErrTooManyRetries     = &Error{Kind: KindTooManyRetries}
	ErrRegisterStreamSize = &Error{Kind: KindRegisterStreamSize}
	ErrCheatStreamSize    = &Error{Kind: KindCheatStreamSize}
	ErrNotConnected       = &Error{Kind: KindNotConnected}
	ErrArgument           = &Error{Kind: KindArgument}
)

func newError(kind ErrorKind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}
