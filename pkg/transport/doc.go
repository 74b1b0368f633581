// Package transport provides the byte-stream transport used by the Gecko
// protocol engine.
//
// The protocol has no framing of its own: every command is a single opcode
// byte followed by a fixed-size big-endian payload, and replies are either a
// single sentinel byte or a payload of a size known in advance. The
// transport therefore only moves exact byte counts:
//
//	┌────────────────────────────────┐
//	│   opcode + fixed payload       │
//	├────────────────────────────────┤
//	│   exact-count read / write     │
//	├────────────────────────────────┤
//	│           TCP                  │
//	└────────────────────────────────┘
//
// # Short Transfers
//
// Read and Write move all of p or report why they could not. A transfer
// cut short by the I/O deadline returns the bytes moved so far together
// with an error wrapping ErrTimeout; the caller treats this as recoverable
// and may retry. Any other error is an I/O failure and the connection must
// be discarded.
//
// # Timeouts
//
// Deadlines come from Config.IOTimeout and are applied per call. Contexts
// only bound Connect.
package transport
