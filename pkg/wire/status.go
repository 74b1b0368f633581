package wire

// Reply is a single in-band sentinel byte.
type Reply uint8

const (
	// ReplyBreakpointHit signals that a breakpoint fired.
	ReplyBreakpointHit Reply = 0x11
	// ReplyACK acknowledges a command or chunk.
	ReplyACK Reply = 0xAA
	// ReplyRetry asks the peer to resend the last chunk.
	ReplyRetry Reply = 0xBB
	// ReplyFail aborts the current transfer.
	ReplyFail Reply = 0xCC
	// ReplyDone ends a stream.
	ReplyDone Reply = 0xFF

	// ChunkZero prefixes an all-zero dump chunk; no payload follows.
	ChunkZero Reply = 0xB0
	// ChunkNonZero prefixes a dump chunk whose payload follows.
	ChunkNonZero Reply = 0xBD
)

// String returns the sentinel name.
func (r Reply) String() string {
	switch r {
	case ReplyBreakpointHit:
		return "BPHIT"
	case ReplyACK:
		return "ACK"
	case ReplyRetry:
		return "RETRY"
	case ReplyFail:
		return "FAIL"
	case ReplyDone:
		return "DONE"
	case ChunkZero:
		return "ZERO"
	case ChunkNonZero:
		return "NONZERO"
	default:
		return "UNKNOWN"
	}
}

// ExecState is the execution state reported by CmdStatus.
type ExecState uint8

const (
	// ExecRunning indicates the target is running.
	ExecRunning ExecState = iota
	// ExecPaused indicates the target is paused.
	ExecPaused
	// ExecBreakpoint indicates the target stopped on a breakpoint.
	ExecBreakpoint
	// ExecLoader indicates the target is in the loader.
	ExecLoader
	// ExecUnknown is reported for any unmapped status byte.
	ExecUnknown
)

// ParseExecState maps a status reply byte to an ExecState.
// Unmapped codes yield ExecUnknown.
func ParseExecState(b byte) ExecState {
	switch b {
	case 0:
		return ExecRunning
	case 1:
		return ExecPaused
	case 2:
		return ExecBreakpoint
	case 3:
		return ExecLoader
	default:
		return ExecUnknown
	}
}

// String returns the state name.
func (s ExecState) String() string {
	switch s {
	case ExecRunning:
		return "RUNNING"
	case ExecPaused:
		return "PAUSED"
	case ExecBreakpoint:
		return "BREAKPOINT"
	case ExecLoader:
		return "LOADER"
	default:
		return "UNKNOWN"
	}
}
